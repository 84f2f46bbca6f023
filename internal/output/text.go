package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/wangyue6761/CodeReview/internal/report"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, rep *report.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Code Review: run %s\n", rep.RunID)
	ew.println(strings.Repeat("─", 60))
	ew.printf("Confirmed: %d   Uncertain: %d\n", len(rep.Confirmed), len(rep.Uncertain))
	ew.printf("Tasks: %d run, %d budget-stopped, %d failed",
		rep.Metadata.Execution.TasksRun,
		rep.Metadata.Execution.TasksBudgetStopped,
		rep.Metadata.Execution.TasksFailed)
	if n := skippedTotal(rep); n > 0 {
		ew.printf(", %d skipped", n)
	}
	ew.println("")
	ew.printf("Budget: %d/%d calls consumed",
		rep.Metadata.Budget.CallsConsumed, rep.Metadata.Budget.GlobalBudget)
	if rep.Metadata.Budget.Exhausted {
		ew.printf(" (exhausted)")
	}
	if rep.Metadata.Execution.RunTimedOut {
		ew.printf(" (run timed out, results are partial)")
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if len(rep.Confirmed) == 0 && len(rep.Uncertain) == 0 {
		ew.println("\nNo issues found. Looks good!")
		return ew.err
	}

	if len(rep.Confirmed) > 0 {
		ew.printf("\n%s\n", color.New(color.FgRed, color.Bold).Sprint("CONFIRMED"))
		ew.println(strings.Repeat("─", 40))
		writeFindings(ew, rep.Confirmed)
	}
	if len(rep.Uncertain) > 0 {
		ew.printf("\n%s\n", color.New(color.FgYellow).Sprint("UNCERTAIN (below threshold, kept for audit)"))
		ew.println(strings.Repeat("─", 40))
		writeFindings(ew, rep.Uncertain)
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (plan: %dms, execution: %dms)\n",
		rep.Metadata.TotalMs, rep.Metadata.PlanMs, rep.Metadata.ExecMs)
	return ew.err
}

func writeFindings(ew *errWriter, findings []task.Finding) {
	for _, f := range findings {
		ew.printf("\n  %s:%d  [%s] %s\n",
			f.FilePath, f.Line, severityLabel(f.Severity), f.Category)
		ew.printf("  Confidence: %.0f%%\n", f.Confidence*100)
		for _, line := range wrapText(f.Description, 70) {
			ew.printf("    %s\n", line)
		}
		if f.Suggestion != "" {
			ew.println("  Suggestion:")
			for _, line := range wrapText(f.Suggestion, 70) {
				ew.printf("    %s\n", line)
			}
		}
	}
}

func severityLabel(s task.Severity) string {
	switch s {
	case task.SeverityError:
		return color.RedString("error")
	case task.SeverityWarning:
		return color.YellowString("warning")
	default:
		return color.CyanString("info")
	}
}

func skippedTotal(rep *report.Report) int {
	n := 0
	for _, c := range rep.Metadata.TasksSkipped {
		n += c
	}
	return n
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
