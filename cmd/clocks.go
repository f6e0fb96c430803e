package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/philtim/cityclock/cities"
	"github.com/philtim/cityclock/clock"
	"github.com/philtim/cityclock/store"
	"github.com/spf13/cobra"
)

var (
	addTimezone string
	addID       string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved clocks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logger := cliLogger(cfg, cmd.ErrOrStderr())
		r, err := loadResolver(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		backend, list, err := openList(cmd.Context(), cfg, r, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		var clocks []*clock.Clock
		if cfg.Display.ShowUTC {
			clocks = append(clocks, clock.NewUTC(wallClock))
		}
		for _, e := range list.Entries() {
			clk, err := clock.New(e.Name(), e.Timezone, wallClock)
			if err != nil {
				clk = clock.NewUnresolved(e.Name(), e.Timezone, wallClock)
			}
			clk.ID = e.ID
			clocks = append(clocks, clk)
		}
		if cfg.Display.SortByOffset {
			clock.SortByUTCOffset(clocks)
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"#", "City", "Time", "Date", "Offset", "ID"})
		table.SetBorder(false)
		table.SetColumnSeparator("  ")
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

		for i, clk := range clocks {
			table.Append([]string{
				strconv.Itoa(i + 1),
				clk.Label,
				clk.FormatTime(),
				clk.FormatDate(),
				clk.FormatUTCOffset(),
				clk.ID,
			})
		}
		table.Render()
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <city>",
	Short: "Add a clock",
	Long: `Add a clock for a city. The input is resolved against the city dataset;
pass --id to pick an exact search result, or --timezone to add a clock for a
bare IANA zone under any name.

Examples:
  cityclock add tokyo
  cityclock add "portland, maine"
  cityclock add Office --timezone Europe/Berlin`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logger := cliLogger(cfg, cmd.ErrOrStderr())
		r, err := loadResolver(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		backend, list, err := openList(cmd.Context(), cfg, r, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		input := strings.Join(args, " ")
		var entry store.Entry
		switch {
		case addTimezone != "":
			if _, err := clock.LoadLocation(addTimezone); err != nil {
				return err
			}
			entry = store.NewZoneEntry(input, addTimezone)
		case addID != "":
			opt, ok := r.ByID(addID)
			if !ok {
				return fmt.Errorf("%q: %w", addID, cities.ErrNoMatch)
			}
			entry = store.NewEntry(opt)
		default:
			opt, ok := r.Resolve(input)
			if !ok {
				return fmt.Errorf("%q: %w", input, cities.ErrNoMatch)
			}
			entry = store.NewEntry(opt)
		}

		if err := list.Add(entry); err != nil {
			return err
		}
		if err := backend.Save(cmd.Context(), list.Entries()); err != nil {
			return err
		}
		logger.Info("clock added", "city", entry.Name(), "timezone", entry.Timezone)
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", entry.Name(), entry.Timezone)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <clock>...",
	Aliases: []string{"rm"},
	Short:   "Remove clocks by id, label or city name",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logger := cliLogger(cfg, cmd.ErrOrStderr())
		r, err := loadResolver(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		backend, list, err := openList(cmd.Context(), cfg, r, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		var ids, removed []string
		for _, arg := range args {
			e, ok := list.Find(arg)
			if !ok {
				return fmt.Errorf("%s: %w", arg, store.ErrNotFound)
			}
			ids = append(ids, e.ID)
			removed = append(removed, e.Name())
		}
		if err := list.Remove(ids...); err != nil {
			return err
		}
		if err := backend.Save(cmd.Context(), list.Entries()); err != nil {
			return err
		}
		logger.Info("clocks removed", "cities", removed)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.Join(removed, ", "))
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <clock> <position>",
	Short: "Move a clock to a position in the list (1 is first)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		position, err := strconv.Atoi(args[1])
		if err != nil || position < 1 {
			return fmt.Errorf("position must be a number from 1, got %q", args[1])
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logger := cliLogger(cfg, cmd.ErrOrStderr())
		r, err := loadResolver(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		backend, list, err := openList(cmd.Context(), cfg, r, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		e, ok := list.Find(args[0])
		if !ok {
			return fmt.Errorf("%s: %w", args[0], store.ErrNotFound)
		}
		current := 0
		for i, x := range list.Entries() {
			if x.ID == e.ID {
				current = i
			}
		}
		if err := list.Move(e.ID, position-1-current); err != nil {
			return err
		}
		if err := backend.Save(cmd.Context(), list.Entries()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", e.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd, addCmd, removeCmd, moveCmd)
	addCmd.Flags().StringVar(&addTimezone, "timezone", "", "add a clock for this IANA zone instead of resolving a city")
	addCmd.Flags().StringVar(&addID, "id", "", "add the city with this id, as printed by search or resolve")
}
