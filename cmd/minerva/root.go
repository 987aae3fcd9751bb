package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minerva",
	Short: "Minerva - AI-tutoring interaction gateway",
	Long: `Minerva is an interaction gateway for AI-assisted learning.

Every learner prompt is classified, checked against the activity's governance
policy, answered by a pedagogical strategy, and captured as an immutable
cognitive trace. Completed exchanges are analyzed asynchronously for
cognitive, ethical, epistemic, technical, and governance risk.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
