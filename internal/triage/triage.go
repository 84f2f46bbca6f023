package triage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wangyue6761/CodeReview/internal/diffmap"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// Decode reads a JSON candidate list. Both a bare array and an object
// with a "candidates" key are accepted.
func Decode(r io.Reader) ([]task.Candidate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}

	var list []task.Candidate
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapper struct {
		Candidates []task.Candidate `json:"candidates"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing candidates: %w", err)
	}
	return wrapper.Candidates, nil
}

// FromFile loads candidates from a JSON file.
func FromFile(path string) ([]task.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candidates file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// categoryHints maps lowercase substrings of changed lines to the risk
// category they suggest. Checked in order; first match per category wins.
var categoryHints = []struct {
	needle   string
	category task.Category
	severity task.Severity
}{
	{"password", task.CategorySecurity, task.SeverityError},
	{"secret", task.CategorySecurity, task.SeverityError},
	{"api_key", task.CategorySecurity, task.SeverityError},
	{"token", task.CategorySecurity, task.SeverityWarning},
	{"exec(", task.CategorySecurity, task.SeverityWarning},
	{"eval(", task.CategorySecurity, task.SeverityError},
	{"mutex", task.CategoryConcurrency, task.SeverityWarning},
	{"lock", task.CategoryConcurrency, task.SeverityWarning},
	{"go func", task.CategoryConcurrency, task.SeverityWarning},
	{"goroutine", task.CategoryConcurrency, task.SeverityWarning},
	{"atomic", task.CategoryConcurrency, task.SeverityInfo},
	{"chan ", task.CategoryConcurrency, task.SeverityInfo},
	{"nil", task.CategoryNullSafety, task.SeverityWarning},
	{"null", task.CategoryNullSafety, task.SeverityWarning},
	{"optional", task.CategoryNullSafety, task.SeverityInfo},
	{"close(", task.CategoryLifecycle, task.SeverityWarning},
	{"defer", task.CategoryLifecycle, task.SeverityInfo},
	{"dispose", task.CategoryLifecycle, task.SeverityWarning},
	{"shutdown", task.CategoryLifecycle, task.SeverityInfo},
}

// FromDiff scans changed lines for risk keywords and emits one
// candidate per matched category per hunk window. Every window also
// gets a business-intent candidate so an expert confirms the change
// matches its stated purpose.
func FromDiff(diff string) []task.Candidate {
	var out []task.Candidate
	windows := diffmap.Parse(diff)
	added := addedLines(diff)

	for _, path := range windows.Files() {
		for _, window := range windows[path] {
			seen := make(map[task.Category]bool)
			for _, line := range added[path] {
				lower := strings.ToLower(line)
				for _, hint := range categoryHints {
					if seen[hint.category] || !strings.Contains(lower, hint.needle) {
						continue
					}
					seen[hint.category] = true
					out = append(out, task.Candidate{
						FilePath:    path,
						Category:    hint.category,
						Anchor:      window,
						Severity:    hint.severity,
						Description: fmt.Sprintf("changed lines mention %q; review for %s risk", strings.TrimSpace(hint.needle), hint.category),
					})
				}
			}
			out = append(out, task.Candidate{
				FilePath:    path,
				Category:    task.CategoryBusinessIntent,
				Anchor:      window,
				Severity:    task.SeverityInfo,
				Description: "verify the change matches its stated intent",
			})
		}
	}
	return out
}

// addedLines collects the added (+) lines of a unified diff per file.
func addedLines(diff string) map[string][]string {
	out := make(map[string][]string)
	var current string
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			current = strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			if current != "" {
				out[current] = append(out[current], line[1:])
			}
		}
	}
	return out
}
