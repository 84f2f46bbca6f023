package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/wangyue6761/CodeReview/internal/report"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// MarkdownWriter outputs a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, rep *report.Report) error {
	fmt.Fprintf(w, "## Code Review\n\n")

	fmt.Fprintf(w, "| Bucket | Count |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Confirmed | %d |\n", len(rep.Confirmed))
	fmt.Fprintf(w, "| Uncertain | %d |\n", len(rep.Uncertain))
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", rep.TotalFindings())

	if rep.TotalFindings() == 0 {
		fmt.Fprintln(w, "No issues found. :white_check_mark:")
		return nil
	}

	if len(rep.Confirmed) > 0 {
		writeSection(w, "Confirmed", rep.Confirmed, false)
	}
	if len(rep.Uncertain) > 0 {
		writeSection(w, "Uncertain (kept for audit)", rep.Uncertain, true)
	}

	if rep.Metadata.Budget.Exhausted || rep.Metadata.Execution.RunTimedOut {
		fmt.Fprintf(w, "> :warning: Partial run: budget exhausted or timed out; see run metadata.\n\n")
	}
	fmt.Fprintf(w, "*Reviewed in %dms (plan: %dms, execution: %dms)*\n",
		rep.Metadata.TotalMs, rep.Metadata.PlanMs, rep.Metadata.ExecMs)
	return nil
}

func writeSection(w io.Writer, label string, findings []task.Finding, collapsed bool) {
	if collapsed {
		fmt.Fprintf(w, "<details>\n<summary>%s (%d)</summary>\n\n", label, len(findings))
	} else {
		fmt.Fprintf(w, "### %s (%d)\n\n", label, len(findings))
	}

	for _, f := range findings {
		fmt.Fprintf(w, "**`%s:%d`** | %s | %s | Confidence: %.0f%%\n\n",
			f.FilePath, f.Line, f.Category, f.Severity, f.Confidence*100)
		fmt.Fprintf(w, "%s\n\n", f.Description)
		if f.Suggestion != "" {
			fmt.Fprintf(w, "**Suggestion:**\n\n> %s\n\n",
				strings.ReplaceAll(f.Suggestion, "\n", "\n> "))
		}
		fmt.Fprintf(w, "---\n\n")
	}

	if collapsed {
		fmt.Fprintf(w, "</details>\n\n")
	}
}
