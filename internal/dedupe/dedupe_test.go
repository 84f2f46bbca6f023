package dedupe

import (
	"testing"

	"github.com/wangyue6761/CodeReview/internal/task"
)

func mkTask(path string, cat task.Category, start, end int) task.Task {
	return task.NewTask(task.Candidate{
		FilePath: path,
		Category: cat,
		Anchor:   task.LineRange{Start: start, End: end},
		Severity: task.SeverityWarning,
	})
}

func TestTasksMergeWithinWindow(t *testing.T) {
	in := []task.Task{
		mkTask("a.go", task.CategoryNullSafety, 10, 12),
		mkTask("a.go", task.CategoryNullSafety, 11, 13),
	}
	out := Tasks(in, 5)
	if len(out) != 1 {
		t.Fatalf("got %d tasks, want 1", len(out))
	}
	if out[0].Anchor != (task.LineRange{Start: 10, End: 13}) {
		t.Errorf("merged anchor = %v, want 10-13", out[0].Anchor)
	}
	want := task.TaskID("a.go", task.CategoryNullSafety, task.LineRange{Start: 10, End: 13})
	if out[0].ID != want {
		t.Errorf("merged ID not re-derived from union anchor")
	}
}

func TestTasksNoMergeAcrossFilesOrCategories(t *testing.T) {
	in := []task.Task{
		mkTask("a.go", task.CategoryNullSafety, 10, 12),
		mkTask("b.go", task.CategoryNullSafety, 10, 12),
		mkTask("a.go", task.CategorySecurity, 10, 12),
	}
	out := Tasks(in, 5)
	if len(out) != 3 {
		t.Errorf("got %d tasks, want 3 (no cross-file or cross-category merge)", len(out))
	}
}

func TestTasksBeyondWindow(t *testing.T) {
	in := []task.Task{
		mkTask("a.go", task.CategoryNullSafety, 10, 12),
		mkTask("a.go", task.CategoryNullSafety, 30, 32),
	}
	if out := Tasks(in, 5); len(out) != 2 {
		t.Errorf("got %d tasks, want 2 (distance 18 exceeds window)", len(out))
	}
}

func TestTasksChainMergesToFixedPoint(t *testing.T) {
	// Each neighbor is within the window; the chain collapses fully.
	in := []task.Task{
		mkTask("a.go", task.CategoryConcurrency, 30, 31),
		mkTask("a.go", task.CategoryConcurrency, 10, 11),
		mkTask("a.go", task.CategoryConcurrency, 20, 21),
	}
	out := Tasks(in, 10)
	if len(out) != 1 {
		t.Fatalf("got %d tasks, want 1", len(out))
	}
	if out[0].Anchor != (task.LineRange{Start: 10, End: 31}) {
		t.Errorf("chain anchor = %v, want 10-31", out[0].Anchor)
	}
}

func TestTasksOrderIndependent(t *testing.T) {
	a := mkTask("a.go", task.CategoryNullSafety, 10, 12)
	b := mkTask("a.go", task.CategoryNullSafety, 11, 13)
	c := mkTask("b.go", task.CategorySecurity, 5, 8)

	out1 := Tasks([]task.Task{a, b, c}, 5)
	out2 := Tasks([]task.Task{c, b, a}, 5)
	if len(out1) != len(out2) {
		t.Fatalf("permutations disagree: %d vs %d tasks", len(out1), len(out2))
	}
	seen := make(map[string]bool)
	for _, x := range out1 {
		seen[x.ID] = true
	}
	for _, x := range out2 {
		if !seen[x.ID] {
			t.Errorf("task %s only present in one permutation", x.ID)
		}
	}
}

func TestTasksMergeKeepsMaxima(t *testing.T) {
	a := mkTask("a.go", task.CategoryNullSafety, 10, 12)
	a.Priority = 0.3
	a.BudgetCost = 2
	b := mkTask("a.go", task.CategoryNullSafety, 11, 13)
	b.Priority = 0.9
	b.BudgetCost = 4
	b.Severity = task.SeverityError

	out := Tasks([]task.Task{a, b}, 5)
	if len(out) != 1 {
		t.Fatal("tasks should merge")
	}
	if out[0].Priority != 0.9 {
		t.Errorf("merged priority = %g, want 0.9", out[0].Priority)
	}
	if out[0].BudgetCost != 4 {
		t.Errorf("merged cost = %d, want 4", out[0].BudgetCost)
	}
	if out[0].Severity != task.SeverityError {
		t.Errorf("merged severity = %q, want error", out[0].Severity)
	}
}

func TestTasksMergeLiftsCeiling(t *testing.T) {
	a := mkTask("a.go", task.CategoryNullSafety, 10, 12)
	a.Ceiling = 0.4
	b := mkTask("a.go", task.CategoryNullSafety, 11, 13)

	out := Tasks([]task.Task{a, b}, 5)
	if len(out) != 1 {
		t.Fatal("tasks should merge")
	}
	if out[0].Ceiling != 0 {
		t.Errorf("merging with an unconstrained task should lift the ceiling, got %g", out[0].Ceiling)
	}
}

func mkFinding(path string, cat task.Category, line int, desc string, conf float64, refs ...string) task.Finding {
	f := task.Finding{
		FilePath:     path,
		Category:     cat,
		Line:         line,
		Severity:     task.SeverityWarning,
		Description:  desc,
		Confidence:   conf,
		EvidenceRefs: refs,
	}
	f.ID = task.FindingID(f)
	return f
}

func TestFindingsMergeSimilar(t *testing.T) {
	in := []task.Finding{
		mkFinding("a.go", task.CategoryNullSafety, 10, "possible nil pointer dereference of user", 0.6, "chk1/aaa"),
		mkFinding("a.go", task.CategoryNullSafety, 12, "possible nil pointer dereference of user", 0.8, "chk2/bbb"),
	}
	out := Findings(in, 5, 0.75)
	if len(out) != 1 {
		t.Fatalf("got %d findings, want 1", len(out))
	}
	if out[0].Confidence != 0.8 {
		t.Errorf("merged confidence = %g, want the higher 0.8", out[0].Confidence)
	}
	if len(out[0].EvidenceRefs) != 2 {
		t.Errorf("merged refs = %v, want union of both", out[0].EvidenceRefs)
	}
}

func TestFindingsKeepDissimilar(t *testing.T) {
	in := []task.Finding{
		mkFinding("a.go", task.CategoryNullSafety, 10, "possible nil pointer dereference of user", 0.6),
		mkFinding("a.go", task.CategoryNullSafety, 11, "request body is never closed", 0.6),
	}
	if out := Findings(in, 5, 0.75); len(out) != 2 {
		t.Errorf("got %d findings, want 2 (descriptions differ)", len(out))
	}
}

func TestFindingsOrderIndependent(t *testing.T) {
	a := mkFinding("a.go", task.CategoryNullSafety, 10, "possible nil pointer dereference", 0.6, "r1")
	b := mkFinding("a.go", task.CategoryNullSafety, 12, "possible nil pointer dereference", 0.8, "r2")
	c := mkFinding("b.go", task.CategorySecurity, 3, "hardcoded credential", 0.9, "r3")

	out1 := Findings([]task.Finding{a, b, c}, 5, 0.75)
	out2 := Findings([]task.Finding{c, a, b}, 5, 0.75)
	if len(out1) != len(out2) {
		t.Fatalf("permutations disagree: %d vs %d findings", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i].ID != out2[i].ID || out1[i].Confidence != out2[i].Confidence {
			t.Errorf("finding %d differs between permutations", i)
		}
	}
}

func TestJaccard(t *testing.T) {
	if j := jaccard(tokenSet(""), tokenSet("")); j != 1 {
		t.Errorf("two empty sets = %g, want 1", j)
	}
	if j := jaccard(tokenSet("nil pointer"), tokenSet("")); j != 0 {
		t.Errorf("one empty set = %g, want 0", j)
	}
	if j := jaccard(tokenSet("Nil pointer deref."), tokenSet("nil pointer deref")); j != 1 {
		t.Errorf("case and punctuation should not matter, got %g", j)
	}
}
