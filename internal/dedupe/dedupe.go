package dedupe

import (
	"sort"
	"strings"

	"github.com/wangyue6761/CodeReview/internal/task"
)

// Tasks merges near-duplicate tasks to a fixed point. Merged tasks cover
// the union of their members' anchors and re-derive their ID from it.
func Tasks(tasks []task.Task, mergeWindow int) []task.Task {
	if len(tasks) == 0 {
		return nil
	}
	out := append([]task.Task(nil), tasks...)

	for {
		sortTasks(out)
		merged, changed := mergeTaskPass(out, mergeWindow)
		out = merged
		if !changed {
			break
		}
	}
	return out
}

func sortTasks(ts []task.Task) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].FilePath != ts[j].FilePath {
			return ts[i].FilePath < ts[j].FilePath
		}
		if ts[i].Category != ts[j].Category {
			return ts[i].Category < ts[j].Category
		}
		if ts[i].Anchor.Start != ts[j].Anchor.Start {
			return ts[i].Anchor.Start < ts[j].Anchor.Start
		}
		return ts[i].ID < ts[j].ID
	})
}

// mergeTaskPass does one sweep over sorted tasks, merging adjacent
// duplicates. Sorting groups same-file same-category tasks together in
// ascending anchor order, so one sweep catches every in-window pair.
func mergeTaskPass(ts []task.Task, window int) ([]task.Task, bool) {
	var out []task.Task
	changed := false
	for _, t := range ts {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.FilePath == t.FilePath && last.Category == t.Category &&
				last.Anchor.Distance(t.Anchor) <= window {
				*last = mergeTasks(*last, t)
				changed = true
				continue
			}
		}
		out = append(out, t)
	}
	return out, changed
}

// mergeTasks unions two duplicate tasks. Descriptive attributes come from
// the lexicographically lowest ID; priority and budget cost keep the
// maximum so merging never demotes work.
func mergeTasks(a, b task.Task) task.Task {
	keep, other := a, b
	if b.ID < a.ID {
		keep, other = b, a
	}
	merged := keep
	merged.Anchor = a.Anchor.Union(b.Anchor)
	merged.ID = task.TaskID(merged.FilePath, merged.Category, merged.Anchor)
	if other.Priority > merged.Priority {
		merged.Priority = other.Priority
	}
	if other.BudgetCost > merged.BudgetCost {
		merged.BudgetCost = other.BudgetCost
	}
	if task.SeverityRank(other.Severity) > task.SeverityRank(merged.Severity) {
		merged.Severity = other.Severity
	}
	// A zero ceiling means unconstrained; merging with an anchored task
	// lifts the constraint.
	if keep.Ceiling == 0 || other.Ceiling == 0 {
		merged.Ceiling = 0
	} else if other.Ceiling > merged.Ceiling {
		merged.Ceiling = other.Ceiling
	}
	return merged
}

// Findings merges near-duplicate findings to a fixed point. The
// higher-confidence member survives; its evidence refs absorb the
// other's.
func Findings(fs []task.Finding, mergeWindow int, similarity float64) []task.Finding {
	if len(fs) == 0 {
		return nil
	}
	out := append([]task.Finding(nil), fs...)

	for {
		sortFindings(out)
		merged, changed := mergeFindingPass(out, mergeWindow, similarity)
		out = merged
		if !changed {
			break
		}
	}
	return out
}

func sortFindings(fs []task.Finding) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].FilePath != fs[j].FilePath {
			return fs[i].FilePath < fs[j].FilePath
		}
		if fs[i].Category != fs[j].Category {
			return fs[i].Category < fs[j].Category
		}
		if fs[i].Line != fs[j].Line {
			return fs[i].Line < fs[j].Line
		}
		return fs[i].ID < fs[j].ID
	})
}

// mergeFindingPass compares each finding against every in-window peer in
// its file/category group. Similarity is not transitive, so unlike the
// task sweep this one checks all candidates, not just the previous one.
func mergeFindingPass(fs []task.Finding, window int, similarity float64) ([]task.Finding, bool) {
	var out []task.Finding
	changed := false

	for _, f := range fs {
		mergedInto := -1
		for i := len(out) - 1; i >= 0; i-- {
			g := out[i]
			if g.FilePath != f.FilePath || g.Category != f.Category {
				break
			}
			dist := f.Line - g.Line
			if dist < 0 {
				dist = -dist
			}
			if dist > window {
				continue
			}
			if jaccard(tokenSet(f.Description), tokenSet(g.Description)) >= similarity {
				mergedInto = i
				break
			}
		}
		if mergedInto >= 0 {
			out[mergedInto] = mergeFindings(out[mergedInto], f)
			changed = true
			continue
		}
		out = append(out, f)
	}
	return out, changed
}

// mergeFindings keeps the higher-confidence finding, breaking ties on the
// lowest ID, and unions evidence refs.
func mergeFindings(a, b task.Finding) task.Finding {
	keep, drop := a, b
	if b.Confidence > a.Confidence || (b.Confidence == a.Confidence && b.ID < a.ID) {
		keep, drop = b, a
	}
	keep.EvidenceRefs = unionRefs(keep.EvidenceRefs, drop.EvidenceRefs)
	return keep
}

func unionRefs(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, ref := range a {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	for _, ref := range b {
		if !seen[ref] {
			seen[ref] = true
			out = append(out, ref)
		}
	}
	sort.Strings(out)
	return out
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?()[]{}\"'`")
		if w != "" {
			set[w] = true
		}
	}
	return set
}

// jaccard computes token-set similarity. Two empty sets are identical.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
