package checker

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/wangyue6761/CodeReview/internal/task"
)

// AnalysisRequest is the prompt payload sent to an analysis backend.
type AnalysisRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// AnalysisResponse is the raw backend answer.
type AnalysisResponse struct {
	Content    string
	TokensUsed int
}

// Analyzer is the black-box semantic analysis call. Transport, model
// choice, and authentication live behind this interface.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (AnalysisResponse, error)
	Name() string
}

// Semantic adapts an Analyzer to the Checker contract: it builds a
// category-specific prompt, sends it, and parses the JSON answer.
type Semantic struct {
	analyzer Analyzer
}

// NewSemantic wraps an analysis backend as a checker.
func NewSemantic(a Analyzer) *Semantic {
	return &Semantic{analyzer: a}
}

func (s *Semantic) Name() string {
	return "semantic:" + s.analyzer.Name()
}

// Check runs one analysis call scoped to the request's anchor. Backend
// errors are treated as transient; the anchor scoping makes the call
// idempotent.
func (s *Semantic) Check(ctx context.Context, req Request) (Result, error) {
	resp, err := s.analyzer.Analyze(ctx, AnalysisRequest{
		SystemPrompt: systemPrompt(req.Category),
		UserPrompt:   userPrompt(req),
		MaxTokens:    4096,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, Transient(fmt.Errorf("analysis call: %w", err))
	}

	findings, err := ParseFindings(resp.Content)
	if err != nil {
		return Result{}, err
	}
	for i := range findings {
		if findings[i].Confidence < 0 {
			findings[i].Confidence = 0
		}
		if findings[i].Confidence > 1 {
			findings[i].Confidence = 1
		}
	}
	return Result{
		Findings:    findings,
		EvidenceRef: evidenceRef(s.Name(), req),
		Success:     true,
	}, nil
}

// evidenceRef identifies the producing call stably so merged findings
// can union references without collisions.
func evidenceRef(name string, req Request) string {
	h := sha256.Sum256([]byte(name + "|" + req.Key()))
	return fmt.Sprintf("%s/%x", name, h[:6])
}

func systemPrompt(cat task.Category) string {
	return fmt.Sprintf(
		"You are a code reviewer specializing in %s risks. "+
			"Evaluate only the lines you are given. "+
			"Respond with ONLY a JSON array of findings, each with keys: "+
			`"line" (int), "description" (string), "suggestion" (string), `+
			`"confidence" (0.0-1.0), "severity" ("error"|"warning"|"info"). `+
			"Respond with [] if no issue is confirmed.", cat)
}

func userPrompt(req Request) string {
	return fmt.Sprintf(
		"File: %s\nLines under review: %s\nRisk category: %s\n\nChange context:\n%s\n",
		req.FilePath, req.Anchor, req.Category, req.Context)
}
