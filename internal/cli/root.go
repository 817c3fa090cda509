// Package cli defines the concord command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. CI gates on these, so they never change meaning.
const (
	ExitSuccess       = 0
	ExitConfigError   = 1
	ExitNoAssessments = 2
	ExitIOError       = 3
)

var rootCmd = &cobra.Command{
	Use:   "concord",
	Short: "Multi-assessor quality assessment reconciliation",
	Long: "Concord merges independent quality assessments of one artifact into a single\n" +
		"consensus report: normalized scores, verified evidence, contested categories,\n" +
		"false-confidence flags, and cost-per-verified-issue rankings.",
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// RunContext executes the root command and returns an exit code. The
// context cancels the run on SIGINT/SIGTERM.
func RunContext(ctx context.Context) int {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		return ExitConfigError
	}

	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print concord version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "concord version %s\n", version)
	},
}
