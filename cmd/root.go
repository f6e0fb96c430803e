package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/philtim/cityclock/observability"
	"github.com/philtim/cityclock/ui"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cityclock",
	Short: "World clocks for the cities you care about",
	Long: `cityclock shows the current time in a list of cities, with each city's
UTC offset and daylight-saving state. Run it without a command to open the
clock grid.

Usage:
  cityclock                   Open the clock grid
  cityclock search <query>    Search the city dataset
  cityclock resolve <city>    Show the city an input resolves to
  cityclock offset <zone>     Describe a timezone's UTC offset
  cityclock list              List saved clocks
  cityclock add <city>        Add a clock
  cityclock init              Write the default configuration`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cityclock/config.yaml)")
}

func runTUI(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// The grid owns the terminal, so logs go to a file.
	logFile, err := observability.OpenLogFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat, logFile)

	bundled, err := bundledResolver(logger)
	if err != nil {
		return err
	}
	geo := geoNamesDatabase(cfg, logger)
	if geo != nil {
		geo.LoadAsync(ctx)
	}

	backend, list, err := openList(ctx, cfg, bundled, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	m := ui.New(ui.Options{
		Context:  ctx,
		Config:   cfg,
		Backend:  backend,
		List:     list,
		Bundled:  bundled,
		GeoNames: geo,
		Clock:    wallClock,
		Logger:   logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run clock grid: %w", err)
	}
	return nil
}
