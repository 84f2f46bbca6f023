package task

import (
	"crypto/sha256"
	"fmt"
)

// LineRange is an inclusive 1-indexed span of lines within a file.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate checks the range is non-empty and 1-indexed.
func (r LineRange) Validate() error {
	if r.Start < 1 {
		return fmt.Errorf("line range start %d must be >= 1", r.Start)
	}
	if r.End < r.Start {
		return fmt.Errorf("line range start %d must be <= end %d", r.Start, r.End)
	}
	return nil
}

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Start && line <= r.End
}

// Overlaps reports whether the two ranges share at least one line.
func (r LineRange) Overlaps(o LineRange) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Distance returns the gap in lines between two ranges, zero if they
// overlap or touch.
func (r LineRange) Distance(o LineRange) int {
	if r.Overlaps(o) {
		return 0
	}
	if r.End < o.Start {
		return o.Start - r.End
	}
	return r.Start - o.End
}

// Union returns the smallest range covering both.
func (r LineRange) Union(o LineRange) LineRange {
	u := r
	if o.Start < u.Start {
		u.Start = o.Start
	}
	if o.End > u.End {
		u.End = o.End
	}
	return u
}

func (r LineRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Status is the lifecycle state of a task. Transitions are
// Pending → Running → Done/Failed, and Pending → Skipped; anything
// else is a bug in the coordinator.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// CanTransition reports whether moving from s to next is a legal
// state-machine step.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusSkipped
	case StatusRunning:
		return next == StatusDone || next == StatusFailed
	default:
		return false
	}
}

// StopReason records why a task ended early. A task may be Done and still
// carry a stop reason; its findings are kept but confidence-clamped.
type StopReason string

const (
	StopNone         StopReason = ""
	StopBudget       StopReason = "budget_stopped"
	StopCallCeiling  StopReason = "call_ceiling"
	StopRunCancelled StopReason = "run_cancelled"
)

// SkipReason records why the planner excluded a candidate.
type SkipReason string

const (
	SkipUnanchored      SkipReason = "unanchored"
	SkipBudgetCapped    SkipReason = "budget_capped"
	SkipBudgetExhausted SkipReason = "budget_exhausted"
	SkipInvalid         SkipReason = "invalid"
)

// Candidate is the raw unit supplied by the candidate-task source. It may
// arrive duplicated, unanchored, or with no priority hint; the planner is
// responsible for all of that.
type Candidate struct {
	FilePath     string    `json:"file_path"`
	Category     Category  `json:"risk_category"`
	Anchor       LineRange `json:"anchor_lines"`
	Severity     Severity  `json:"severity,omitempty"`
	Description  string    `json:"description,omitempty"`
	PriorityHint float64   `json:"priority_hint,omitempty"`
}

// Task is a planned, budgeted unit of review work. The planner creates
// tasks; the expert pool exclusively owns their mutable runtime state
// while a run is in flight.
type Task struct {
	ID          string    `json:"id"`
	FilePath    string    `json:"file_path"`
	Category    Category  `json:"risk_category"`
	Anchor      LineRange `json:"anchor_lines"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description,omitempty"`
	Priority    float64   `json:"priority"`
	BudgetCost  int       `json:"budget_cost"`

	// Ceiling caps the confidence of every finding this task produces.
	// Zero means no ceiling. Set for unanchored tasks kept by config.
	Ceiling float64 `json:"confidence_ceiling,omitempty"`

	Status     Status     `json:"status"`
	StopReason StopReason `json:"stop_reason,omitempty"`
	Retries    int        `json:"retries,omitempty"`
}

// NewTask builds a task from a candidate, deriving its stable ID and
// priority. The anchor must already be validated.
func NewTask(c Candidate) Task {
	sev := c.Severity
	if sev == "" {
		sev = SeverityWarning
	}
	return Task{
		ID:          TaskID(c.FilePath, c.Category, c.Anchor),
		FilePath:    c.FilePath,
		Category:    c.Category,
		Anchor:      c.Anchor,
		Severity:    sev,
		Description: c.Description,
		Priority:    priorityOf(c.Category, sev, c.PriorityHint),
		Status:      StatusPending,
	}
}

// TaskID derives the stable task identity from path, category, and anchor.
// Candidates that dedupe to the same scope hash identically.
func TaskID(path string, cat Category, anchor LineRange) string {
	data := fmt.Sprintf("%s:%s:%d:%d", path, cat, anchor.Start, anchor.End)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

func priorityOf(cat Category, sev Severity, hint float64) float64 {
	p := cat.Weight() * sev.Weight()
	if hint > 0 {
		p *= hint
	}
	return p
}

// Skipped pairs an excluded candidate with the reason it was excluded, so
// run metadata never silently drops work.
type Skipped struct {
	Task   Task       `json:"task"`
	Reason SkipReason `json:"reason"`
}
