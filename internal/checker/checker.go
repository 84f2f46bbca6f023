package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/wangyue6761/CodeReview/internal/task"
)

// Request scopes a single sub-call to one task's anchor.
type Request struct {
	FilePath string
	Anchor   task.LineRange
	Category task.Category

	// Context carries the diff excerpt or file content the checker
	// should reason over. Its provenance is the caller's concern.
	Context string
}

// Key returns a stable cache/idempotency key for the request.
func (r Request) Key() string {
	return fmt.Sprintf("%s:%s:%s", r.FilePath, r.Category, r.Anchor)
}

// RawFinding is one issue as reported by a checker, before the pool
// attributes it to a task and calibrates its confidence.
type RawFinding struct {
	Line        int     `json:"line"`
	Description string  `json:"description"`
	Suggestion  string  `json:"suggestion,omitempty"`
	Confidence  float64 `json:"confidence"`
	Severity    string  `json:"severity,omitempty"`
}

// Result is a completed sub-call. Success=false with findings means the
// checker answered but considers its own evidence inconclusive.
type Result struct {
	Findings    []RawFinding
	EvidenceRef string
	Success     bool
}

// Checker is the sub-call contract. Check must be idempotent for retry
// safety and must honor ctx cancellation.
type Checker interface {
	Check(ctx context.Context, req Request) (Result, error)
	Name() string
}

// ErrToolUnavailable signals a checker whose backing tool is absent or
// permanently broken; the pool skips the check and continues the task.
var ErrToolUnavailable = errors.New("checker tool unavailable")

// TransientError marks a failure worth retrying (timeouts, rate limits,
// malformed responses that a fresh call may fix).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient checker failure: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
