package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taskweave",
	Short: "Task decomposition and execution orchestrator",
	Long: `Taskweave breaks a request into a sequential task list, executes the
tasks one at a time, and verifies each one before moving on.

Simple requests run as a single turn. Multi-step requests are decomposed
into an ordered task list; each task is planned, executed against the
workspace, checked with the project's own scripts (or proposed checks when
none exist), and repaired on failure within a bounded budget.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
