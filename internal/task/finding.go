package task

import (
	"crypto/sha256"
	"fmt"
)

// Finding is a single confirmed or suspected risk item reported by a
// checker sub-call and attributed to the task that scoped it.
type Finding struct {
	ID           string   `json:"id"`
	TaskID       string   `json:"task_id"`
	FilePath     string   `json:"file_path"`
	Line         int      `json:"line"`
	Category     Category `json:"risk_category"`
	Severity     Severity `json:"severity"`
	Description  string   `json:"description"`
	Suggestion   string   `json:"suggestion,omitempty"`
	Confidence   float64  `json:"confidence"`
	EvidenceRefs []string `json:"evidence_refs,omitempty"`
}

// FindingID derives a stable identity from the finding's location and
// description, mirroring how task IDs are derived.
func FindingID(f Finding) string {
	data := fmt.Sprintf("%s:%s:%d:%s", f.FilePath, f.Category, f.Line, f.Description)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

// ClampConfidence caps the finding's confidence at ceiling. A zero ceiling
// means no cap.
func (f *Finding) ClampConfidence(ceiling float64) {
	if ceiling > 0 && f.Confidence > ceiling {
		f.Confidence = ceiling
	}
}

// AttenuateConfidence multiplies confidence by factor, used when the
// owning task was budget-stopped, retry-exhausted, or under-evidenced.
func (f *Finding) AttenuateConfidence(factor float64) {
	f.Confidence *= factor
	if f.Confidence < 0 {
		f.Confidence = 0
	}
	if f.Confidence > 1 {
		f.Confidence = 1
	}
}

// WeakEvidence reports whether the finding rests on no evidence at all,
// or on a single inconclusive source.
func (f Finding) WeakEvidence(inconclusive map[string]bool) bool {
	if len(f.EvidenceRefs) == 0 {
		return true
	}
	if len(f.EvidenceRefs) == 1 && inconclusive[f.EvidenceRefs[0]] {
		return true
	}
	return false
}
