package report

import (
	"testing"

	"github.com/wangyue6761/CodeReview/internal/budget"
	"github.com/wangyue6761/CodeReview/internal/config"
	"github.com/wangyue6761/CodeReview/internal/expert"
	"github.com/wangyue6761/CodeReview/internal/task"
)

func mkFinding(path string, cat task.Category, line int, desc string, conf float64) task.Finding {
	f := task.Finding{
		FilePath:    path,
		Category:    cat,
		Line:        line,
		Severity:    task.SeverityWarning,
		Description: desc,
		Confidence:  conf,
	}
	f.ID = task.FindingID(f)
	return f
}

func TestSummarizePartitionsByThreshold(t *testing.T) {
	cfg := config.Default()
	cfg.ConfidenceThreshold = 0.5

	findings := []task.Finding{
		mkFinding("a.go", task.CategorySecurity, 10, "hardcoded credential", 0.9),
		mkFinding("b.go", task.CategoryNullSafety, 20, "possible nil dereference", 0.3),
		mkFinding("c.go", task.CategoryConcurrency, 30, "data race on counter", 0.5),
	}
	r := Summarize(findings, nil, expert.Stats{}, budget.Snapshot{}, cfg)

	if len(r.Confirmed) != 2 {
		t.Errorf("confirmed = %d, want 2 (threshold is inclusive)", len(r.Confirmed))
	}
	if len(r.Uncertain) != 1 {
		t.Errorf("uncertain = %d, want 1", len(r.Uncertain))
	}
	if r.TotalFindings() != 3 {
		t.Errorf("total = %d, want 3", r.TotalFindings())
	}
	if r.Tool != "codereview" || r.RunID == "" {
		t.Errorf("report identity = %q/%q", r.Tool, r.RunID)
	}
}

func TestSummarizeCategoryThresholdOverride(t *testing.T) {
	cfg := config.Default()
	cfg.ConfidenceThreshold = 0.5
	cfg.CategoryThresholds = map[string]float64{"security": 0.3}

	findings := []task.Finding{
		mkFinding("a.go", task.CategorySecurity, 10, "weak cipher", 0.4),
		mkFinding("b.go", task.CategoryNullSafety, 20, "possible nil dereference", 0.4),
	}
	r := Summarize(findings, nil, expert.Stats{}, budget.Snapshot{}, cfg)

	if len(r.Confirmed) != 1 || r.Confirmed[0].Category != task.CategorySecurity {
		t.Errorf("security override should confirm the 0.4 security finding: %+v", r.Confirmed)
	}
	if len(r.Uncertain) != 1 {
		t.Errorf("uncertain = %d, want 1", len(r.Uncertain))
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	cfg := config.Default()
	findings := []task.Finding{
		mkFinding("a.go", task.CategorySecurity, 10, "hardcoded credential", 0.9),
		mkFinding("b.go", task.CategoryNullSafety, 20, "possible nil dereference", 0.7),
		mkFinding("c.go", task.CategoryConcurrency, 30, "data race on counter", 0.2),
	}
	reversed := []task.Finding{findings[2], findings[1], findings[0]}

	r1 := Summarize(findings, nil, expert.Stats{}, budget.Snapshot{}, cfg)
	r2 := Summarize(reversed, nil, expert.Stats{}, budget.Snapshot{}, cfg)

	if len(r1.Confirmed) != len(r2.Confirmed) || len(r1.Uncertain) != len(r2.Uncertain) {
		t.Fatal("input order changed the partition")
	}
	for i := range r1.Confirmed {
		if r1.Confirmed[i].ID != r2.Confirmed[i].ID {
			t.Errorf("confirmed[%d] differs between orders", i)
		}
	}
}

func TestSummarizeMergesDuplicates(t *testing.T) {
	cfg := config.Default()
	a := mkFinding("a.go", task.CategoryNullSafety, 10, "possible nil pointer dereference", 0.6)
	b := mkFinding("a.go", task.CategoryNullSafety, 12, "possible nil pointer dereference", 0.8)

	r := Summarize([]task.Finding{a, b}, nil, expert.Stats{}, budget.Snapshot{}, cfg)
	if r.TotalFindings() != 1 {
		t.Errorf("total = %d, want duplicates merged to 1", r.TotalFindings())
	}
}

func TestSummarizeSortsBySeverity(t *testing.T) {
	cfg := config.Default()
	info := mkFinding("a.go", task.CategorySyntax, 5, "stray print statement", 0.9)
	info.Severity = task.SeverityInfo
	errF := mkFinding("z.go", task.CategorySecurity, 50, "hardcoded credential", 0.9)
	errF.Severity = task.SeverityError

	r := Summarize([]task.Finding{info, errF}, nil, expert.Stats{}, budget.Snapshot{}, cfg)
	if len(r.Confirmed) != 2 {
		t.Fatalf("confirmed = %d, want 2", len(r.Confirmed))
	}
	if r.Confirmed[0].Severity != task.SeverityError {
		t.Error("errors should sort ahead of info findings")
	}
}

func TestSummarizeMetadata(t *testing.T) {
	cfg := config.Default()
	skipped := []task.Skipped{
		{Reason: task.SkipUnanchored},
		{Reason: task.SkipUnanchored},
		{Reason: task.SkipBudgetExhausted},
	}
	stats := expert.Stats{TasksRun: 4, SubCalls: 9}
	snap := budget.Snapshot{GlobalBudget: 60, GlobalRemaining: 48, CallsConsumed: 9}

	r := Summarize(nil, skipped, stats, snap, cfg)
	if r.Metadata.TasksSkipped[task.SkipUnanchored] != 2 {
		t.Errorf("unanchored skips = %d, want 2", r.Metadata.TasksSkipped[task.SkipUnanchored])
	}
	if r.Metadata.Budget.CallsConsumed != 9 {
		t.Errorf("budget snapshot not carried: %+v", r.Metadata.Budget)
	}
	if r.Metadata.Execution.SubCalls != 9 {
		t.Errorf("execution stats not carried: %+v", r.Metadata.Execution)
	}
}
