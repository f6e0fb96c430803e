package cmd

import (
	"fmt"
	"os"

	"github.com/philtim/cityclock/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cityclock configuration",
	Long:  `Creates the configuration file at ~/.config/cityclock/config.yaml, or rewrites an existing one with any new default keys.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}

		_, statErr := os.Stat(path)
		existed := statErr == nil

		// Load creates the file when missing and fills in defaults otherwise.
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load existing config: %w", err)
		}
		if err := cfg.Save(path); err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		out := cmd.OutOrStdout()
		if existed {
			fmt.Fprintf(out, "Configuration updated at %s (merged new defaults)\n", path)
			return nil
		}
		fmt.Fprintf(out, "Configuration initialized at %s\n", path)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Next steps:")
		fmt.Fprintln(out, "  1. Add a city:   cityclock add tokyo")
		fmt.Fprintln(out, "  2. Open the grid: cityclock")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
