package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wangyue6761/CodeReview/internal/budget"
	"github.com/wangyue6761/CodeReview/internal/cache"
	"github.com/wangyue6761/CodeReview/internal/checker"
	"github.com/wangyue6761/CodeReview/internal/config"
	"github.com/wangyue6761/CodeReview/internal/diffmap"
	"github.com/wangyue6761/CodeReview/internal/expert"
	"github.com/wangyue6761/CodeReview/internal/gitctx"
	"github.com/wangyue6761/CodeReview/internal/logging"
	"github.com/wangyue6761/CodeReview/internal/output"
	"github.com/wangyue6761/CodeReview/internal/plan"
	"github.com/wangyue6761/CodeReview/internal/report"
	"github.com/wangyue6761/CodeReview/internal/task"
	"github.com/wangyue6761/CodeReview/internal/triage"
)

// Shared review flags
var (
	flagCandidates   string
	flagCheckerCmd   string
	flagFormat       string
	flagOut          string
	flagWorkers      int
	flagMaxTasks     int
	flagGlobalBudget int
	flagMergeWindow  int
	flagKeepUnanch   bool
	flagNoCache      bool
	flagNoFail       bool
	flagContextLines int
	flagMaxDiffBytes int
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCandidates, "candidates", "", "JSON file of candidate tasks (default: derive from diff)")
	cmd.Flags().StringVar(&flagCheckerCmd, "checker-cmd", "", "External checker command run per sub-call")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "Concurrent review tasks")
	cmd.Flags().IntVar(&flagMaxTasks, "max-tasks", 0, "Maximum planned tasks per run")
	cmd.Flags().IntVar(&flagGlobalBudget, "global-budget", 0, "Global sub-call budget")
	cmd.Flags().IntVar(&flagMergeWindow, "merge-window", 0, "Line distance for merging duplicate tasks")
	cmd.Flags().BoolVar(&flagKeepUnanch, "keep-unanchored", false, "Keep tasks outside the diff with a confidence ceiling")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the sub-call response cache")
	cmd.Flags().BoolVar(&flagNoFail, "no-fail-on-findings", false, "Exit 0 even when confirmed findings exist")
	cmd.Flags().IntVar(&flagContextLines, "context-lines", 0, "Number of context lines in diff")
	cmd.Flags().IntVar(&flagMaxDiffBytes, "max-diff-bytes", 0, "Maximum diff size in bytes")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagCheckerCmd != "" {
		m["checkerCommand"] = flagCheckerCmd
	}
	if flagWorkers > 0 {
		m["workers"] = fmt.Sprintf("%d", flagWorkers)
	}
	if flagMaxTasks > 0 {
		m["maxTasks"] = fmt.Sprintf("%d", flagMaxTasks)
	}
	if flagGlobalBudget > 0 {
		m["globalCallBudget"] = fmt.Sprintf("%d", flagGlobalBudget)
	}
	if flagMergeWindow > 0 {
		m["mergeWindow"] = fmt.Sprintf("%d", flagMergeWindow)
	}
	if flagKeepUnanch {
		m["keepUnanchored"] = "true"
	}
	return m
}

func buildDiffOpts() gitctx.DiffOptions {
	return gitctx.DiffOptions{
		ContextLines: flagContextLines,
		MaxDiffBytes: flagMaxDiffBytes,
	}
}

func loadCandidates(diff gitctx.DiffResult) ([]task.Candidate, error) {
	if flagCandidates != "" {
		return triage.FromFile(flagCandidates)
	}
	return triage.FromDiff(diff.Diff), nil
}

func runReview(diff gitctx.DiffResult, cfg config.Config) {
	logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	start := time.Now()

	candidates, err := loadCandidates(diff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	ledger, err := budget.NewLedger(budget.Caps{
		GlobalCalls:      cfg.GlobalCallBudget,
		PerFileCalls:     cfg.PerFileCallBudget,
		PerCategoryCalls: cfg.PerCategoryCallBudget,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	windows := diffmap.Parse(diff.Diff)
	pl := plan.Build(candidates, windows, ledger, cfg)
	planMs := time.Since(start).Milliseconds()
	slog.Info("plan built",
		"candidates", len(candidates),
		"tasks", len(pl.Tasks),
		"skipped", len(pl.Skipped))

	reg := checker.NewRegistry()
	if cfg.CheckerCommand != "" {
		chk, err := checker.NewCommand(cfg.CheckerCommand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return
		}
		reg.RegisterAll(chk)
	} else {
		fmt.Fprintln(os.Stderr, "WARNING: no checker configured; tasks will complete without findings")
	}

	store, err := cache.New(cfg.Cache.Enabled && !flagNoCache, cfg.Cache.Dir, cfg.Cache.TTLSeconds, cfg.Cache.MaxEntries)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	pool := expert.New(reg, ledger, store, cfg, diff.FileSection)
	execStart := time.Now()
	findings, _, stats := pool.Run(context.Background(), pl.Tasks)
	execMs := time.Since(execStart).Milliseconds()

	rep := report.Summarize(findings, pl.Skipped, stats, ledger.Snapshot(), cfg)
	rep.Metadata.PlanMs = planMs
	rep.Metadata.ExecMs = execMs
	rep.Metadata.TotalMs = time.Since(start).Milliseconds()

	if err := output.WriteReport(rep, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if len(rep.Confirmed) > 0 && !flagNoFail {
		exitCode = ExitFindings
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes",
	Long:  "Review code changes under call budgets. Use subcommands to specify what to review.",
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		diff, err := gitctx.Unstaged(buildDiffOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(diff, cfg)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		diff, err := gitctx.Staged(buildDiffOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(diff, cfg)
		return nil
	},
}

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		diff, err := gitctx.Range(args[0], buildDiffOpts())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(diff, cfg)
		return nil
	},
}

var reviewDiffCmd = &cobra.Command{
	Use:   "diff <file>",
	Short: "Review a unified diff file ('-' for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var data []byte
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading diff: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runReview(gitctx.FromText(string(data), buildDiffOpts()), cfg)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewUnstagedCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewDiffCmd)

	for _, cmd := range []*cobra.Command{
		reviewUnstagedCmd,
		reviewStagedCmd,
		reviewRangeCmd,
		reviewDiffCmd,
	} {
		addReviewFlags(cmd)
	}
}
