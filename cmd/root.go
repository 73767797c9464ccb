package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "gigflow",
	Short:         "GigFlow freelance marketplace",
	Long:          "GigFlow serves the marketplace API and live channel, and manages its storage",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// the logger may not be configured yet
		fmt.Fprintln(os.Stderr, "gigflow:", err)
		os.Exit(1)
	}
}
