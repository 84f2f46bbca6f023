package plan

import (
	"log/slog"
	"sort"

	"github.com/wangyue6761/CodeReview/internal/budget"
	"github.com/wangyue6761/CodeReview/internal/config"
	"github.com/wangyue6761/CodeReview/internal/dedupe"
	"github.com/wangyue6761/CodeReview/internal/diffmap"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// Plan is the ordered, budgeted task list plus everything that was
// excluded along the way.
type Plan struct {
	Tasks   []task.Task
	Skipped []task.Skipped
}

// Build produces the execution plan. A nil windows map means no diff
// information is available and anchoring is not enforced; an empty map
// means nothing changed and every candidate is unanchored.
func Build(candidates []task.Candidate, windows diffmap.Windows, ledger *budget.Ledger, cfg config.Config) *Plan {
	p := &Plan{}

	// Anchor filter and validation before dedup, so unanchored
	// candidates never influence merging.
	var anchored []task.Task
	for _, c := range candidates {
		t := task.NewTask(c)
		if err := c.Anchor.Validate(); err != nil || !c.Category.Valid() {
			p.skip(t, task.SkipInvalid)
			continue
		}
		if windows != nil && !windows.Anchored(c.FilePath, c.Anchor, cfg.AnchorTolerance) {
			if !cfg.KeepUnanchored {
				p.skip(t, task.SkipUnanchored)
				continue
			}
			t.Ceiling = cfg.UnanchoredCeiling
		}
		anchored = append(anchored, t)
	}

	merged := dedupe.Tasks(anchored, cfg.MergeWindow)
	rank(merged)

	// Greedy admission under three simultaneous caps. A task that would
	// violate any cap is skipped, not deferred.
	perFile := make(map[string]int)
	perCategory := make(map[task.Category]int)
	for _, t := range merged {
		if cfg.MaxTasks > 0 && len(p.Tasks) >= cfg.MaxTasks {
			p.skip(t, task.SkipBudgetCapped)
			continue
		}
		if cfg.MaxTasksPerFile > 0 && perFile[t.FilePath] >= cfg.MaxTasksPerFile {
			p.skip(t, task.SkipBudgetCapped)
			continue
		}
		if cfg.MaxTasksPerCategory > 0 && perCategory[t.Category] >= cfg.MaxTasksPerCategory {
			p.skip(t, task.SkipBudgetCapped)
			continue
		}

		t.BudgetCost = estimateCost(cfg)
		if !ledger.Reserve(t.BudgetCost) {
			p.skip(t, task.SkipBudgetExhausted)
			continue
		}

		perFile[t.FilePath]++
		perCategory[t.Category]++
		p.Tasks = append(p.Tasks, t)
	}

	slog.Debug("plan built",
		"candidates", len(candidates),
		"admitted", len(p.Tasks),
		"skipped", len(p.Skipped),
		"global_remaining", ledger.GlobalRemaining())
	return p
}

func (p *Plan) skip(t task.Task, reason task.SkipReason) {
	t.Status = task.StatusSkipped
	p.Skipped = append(p.Skipped, task.Skipped{Task: t, Reason: reason})
}

// rank orders tasks by priority descending with deterministic
// tie-breaks: file path, anchor start, then task ID.
func rank(ts []task.Task) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Priority != ts[j].Priority {
			return ts[i].Priority > ts[j].Priority
		}
		if ts[i].FilePath != ts[j].FilePath {
			return ts[i].FilePath < ts[j].FilePath
		}
		if ts[i].Anchor.Start != ts[j].Anchor.Start {
			return ts[i].Anchor.Start < ts[j].Anchor.Start
		}
		return ts[i].ID < ts[j].ID
	})
}

// estimateCost is the per-task call estimate reserved up front. The
// per-task ceiling bounds it so a task can never draw more than its
// reservation.
func estimateCost(cfg config.Config) int {
	cost := cfg.TaskCost
	if cfg.PerTaskCallCeiling > 0 && cost > cfg.PerTaskCallCeiling {
		cost = cfg.PerTaskCallCeiling
	}
	return cost
}
