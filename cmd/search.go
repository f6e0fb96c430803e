package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/philtim/cityclock/cities"
	"github.com/philtim/cityclock/clock"
	"github.com/spf13/cobra"
)

var (
	searchLimit         int
	searchMinPopulation int
	popularLimit        int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the city dataset",
	Long: `Search cities by name, optionally narrowed by province or country.
Results are ordered by population, largest first.

Examples:
  cityclock search paris
  cityclock search "portland, maine"
  cityclock search springfield --min-population 150000`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := loadResolver(cmd.Context(), cfg, cliLogger(cfg, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}

		limit := cfg.Search.Limit
		if searchLimit > 0 {
			limit = searchLimit
		}
		minPop := cfg.Search.MinPopulation
		if cmd.Flags().Changed("min-population") {
			minPop = searchMinPopulation
		}

		results := r.Search(strings.Join(args, " "), limit, minPop)
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No cities found")
			return nil
		}
		renderOptions(cmd, results)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <city>",
	Short: "Show the city an input resolves to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := loadResolver(cmd.Context(), cfg, cliLogger(cfg, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}

		input := strings.Join(args, " ")
		opt, ok := r.Resolve(input)
		if !ok {
			return fmt.Errorf("%q: %w", input, cities.ErrNoMatch)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "City:       %s\n", opt.Label)
		fmt.Fprintf(out, "Timezone:   %s\n", opt.Timezone)
		fmt.Fprintf(out, "Offset:     %s\n", clock.DescribeOffset(opt.Timezone, wallClock.Now()))
		fmt.Fprintf(out, "Region:     %s\n", opt.Region())
		fmt.Fprintf(out, "Population: %d\n", opt.Population)
		fmt.Fprintf(out, "ID:         %s\n", opt.ID)
		return nil
	},
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most populous cities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := loadResolver(cmd.Context(), cfg, cliLogger(cfg, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}

		limit := cfg.Search.Suggestions
		if popularLimit > 0 {
			limit = popularLimit
		}
		renderOptions(cmd, r.Popular(limit))
		return nil
	},
}

var regionCmd = &cobra.Command{
	Use:   "region <city|country code>",
	Short: "Show the world region of a city or ISO country code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		r, err := loadResolver(cmd.Context(), cfg, cliLogger(cfg, cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.RegionOf(strings.Join(args, " ")))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, resolveCmd, popularCmd, regionCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results (default: search.limit)")
	searchCmd.Flags().IntVar(&searchMinPopulation, "min-population", 0, "drop smaller cities unless none remain")
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", 0, "number of cities (default: search.suggestions)")
}

func renderOptions(cmd *cobra.Command, opts []cities.Option) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"City", "Timezone", "Region", "Population"})
	table.SetBorder(false)
	table.SetColumnSeparator("  ")
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, o := range opts {
		table.Append([]string{o.Label, o.Timezone, string(o.Region()), strconv.Itoa(o.Population)})
	}
	table.Render()
}
