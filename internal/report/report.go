package report

import (
	"sort"

	"github.com/google/uuid"

	"github.com/wangyue6761/CodeReview/internal/budget"
	"github.com/wangyue6761/CodeReview/internal/config"
	"github.com/wangyue6761/CodeReview/internal/dedupe"
	"github.com/wangyue6761/CodeReview/internal/expert"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// CategoryCounts tallies outcomes for one risk category.
type CategoryCounts struct {
	Confirmed int `json:"confirmed"`
	Uncertain int `json:"uncertain"`
}

// Metadata is the run's observability record. Degraded and partial
// conditions land here, never in silence.
type Metadata struct {
	TasksPlanned int                              `json:"tasks_planned"`
	TasksSkipped map[task.SkipReason]int          `json:"tasks_skipped,omitempty"`
	PerCategory  map[task.Category]CategoryCounts `json:"per_category,omitempty"`
	Budget       budget.Snapshot                  `json:"budget"`
	Execution    expert.Stats                     `json:"execution"`
	PlanMs       int64                            `json:"plan_ms"`
	ExecMs       int64                            `json:"exec_ms"`
	TotalMs      int64                            `json:"total_ms"`
}

// Report is the terminal artifact of a run.
type Report struct {
	Tool      string         `json:"tool"`
	Version   string         `json:"version"`
	RunID     string         `json:"run_id"`
	Confirmed []task.Finding `json:"confirmed"`
	Uncertain []task.Finding `json:"uncertain"`
	Metadata  Metadata       `json:"run_metadata"`
}

// Summarize merges findings across tasks and partitions them by the
// confidence threshold. Input order does not affect the result sets.
func Summarize(findings []task.Finding, skipped []task.Skipped, stats expert.Stats, snap budget.Snapshot, cfg config.Config) *Report {
	merged := dedupe.Findings(findings, cfg.MergeWindow, cfg.Similarity)

	r := &Report{
		Tool:    "codereview",
		Version: "0.2.0",
		RunID:   uuid.NewString(),
	}
	perCategory := make(map[task.Category]CategoryCounts)
	for _, f := range merged {
		counts := perCategory[f.Category]
		if f.Confidence >= cfg.ThresholdFor(string(f.Category)) {
			r.Confirmed = append(r.Confirmed, f)
			counts.Confirmed++
		} else {
			r.Uncertain = append(r.Uncertain, f)
			counts.Uncertain++
		}
		perCategory[f.Category] = counts
	}
	sortFindings(r.Confirmed)
	sortFindings(r.Uncertain)

	r.Metadata = Metadata{
		TasksPlanned: stats.TasksRun,
		PerCategory:  perCategory,
		Budget:       snap,
		Execution:    stats,
	}
	if len(skipped) > 0 {
		r.Metadata.TasksSkipped = make(map[task.SkipReason]int)
		for _, s := range skipped {
			r.Metadata.TasksSkipped[s.Reason]++
		}
	}
	if len(perCategory) == 0 {
		r.Metadata.PerCategory = nil
	}
	return r
}

// sortFindings orders findings by severity rank descending, then file,
// line, and ID, mirroring how they are rendered.
func sortFindings(fs []task.Finding) {
	sort.Slice(fs, func(i, j int) bool {
		ri, rj := task.SeverityRank(fs[i].Severity), task.SeverityRank(fs[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if fs[i].FilePath != fs[j].FilePath {
			return fs[i].FilePath < fs[j].FilePath
		}
		if fs[i].Line != fs[j].Line {
			return fs[i].Line < fs[j].Line
		}
		return fs[i].ID < fs[j].ID
	})
}

// TotalFindings returns confirmed plus uncertain counts.
func (r *Report) TotalFindings() int {
	return len(r.Confirmed) + len(r.Uncertain)
}
