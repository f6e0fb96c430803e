package cmd

import (
	"fmt"
	"time"

	"github.com/philtim/cityclock/clock"
	"github.com/spf13/cobra"
)

var offsetAt string

var offsetCmd = &cobra.Command{
	Use:   "offset <timezone>",
	Short: "Describe a timezone's UTC offset",
	Long: `Print the standard UTC offset of an IANA timezone, with the daylight-saving
offset when it is in effect. Unknown zones print "UTC".

Examples:
  cityclock offset Asia/Tokyo
  cityclock offset America/New_York --at 2026-07-01T12:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := wallClock.Now()
		if offsetAt != "" {
			t, err := time.Parse(time.RFC3339, offsetAt)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}
			at = t
		}
		fmt.Fprintln(cmd.OutOrStdout(), clock.DescribeOffset(args[0], at))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(offsetCmd)
	offsetCmd.Flags().StringVar(&offsetAt, "at", "", "instant to describe, RFC 3339 (default: now)")
}
