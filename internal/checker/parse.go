package checker

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// findingEnvelope matches the object form some backends emit instead of
// a bare array.
type findingEnvelope struct {
	Findings []RawFinding `json:"findings"`
}

// ParseFindings decodes a checker response into raw findings. It accepts
// a bare JSON array or a {"findings": [...]} object, tolerates markdown
// code fences, and attempts a jsonrepair pass before failing. A failed
// parse is transient: the same checker may answer cleanly on retry.
func ParseFindings(content string) ([]RawFinding, error) {
	content = stripFences(strings.TrimSpace(content))

	findings, err := decodeFindings(content)
	if err == nil {
		return findings, nil
	}

	repaired, rerr := jsonrepair.JSONRepair(content)
	if rerr != nil {
		return nil, Transient(fmt.Errorf("invalid findings JSON: %w", err))
	}
	findings, err = decodeFindings(repaired)
	if err != nil {
		return nil, Transient(fmt.Errorf("invalid findings JSON after repair: %w", err))
	}
	return findings, nil
}

func decodeFindings(content string) ([]RawFinding, error) {
	var arr []RawFinding
	if err := json.Unmarshal([]byte(content), &arr); err == nil {
		return arr, nil
	}
	var env findingEnvelope
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return nil, err
	}
	if env.Findings == nil {
		return nil, fmt.Errorf("no findings array in response")
	}
	return env.Findings, nil
}

// stripFences removes a surrounding markdown code fence if present.
func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[1:end], "\n")
}
