package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.2.0"

// Exit codes. Confirmed findings are a distinct outcome so CI hooks can
// gate on them.
const (
	ExitSuccess      = 0
	ExitFindings     = 1
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "codereview",
	Short: "Budgeted, concurrent code review orchestration",
	Long: "Codereview turns a diff into prioritized review tasks, runs them against\n" +
		"checkers under strict call budgets, and reports calibrated findings.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print codereview version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "codereview version %s\n", version)
	},
}
