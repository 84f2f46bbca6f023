package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// execRequest is the JSON payload handed to an external checker command
// on stdin.
type execRequest struct {
	FilePath  string `json:"file_path"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Category  string `json:"category"`
	Context   string `json:"context,omitempty"`
}

// Command runs an external program as a checker. The request is written
// to the program's stdin as JSON and findings are read from its stdout
// in the same formats ParseFindings accepts.
type Command struct {
	name string
	path string
	args []string
}

// NewCommand builds a checker from a command line. The first token is
// the program, the rest are fixed arguments.
func NewCommand(cmdline string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty checker command")
	}
	return &Command{
		name: "exec:" + fields[0],
		path: fields[0],
		args: fields[1:],
	}, nil
}

func (c *Command) Name() string { return c.name }

// Check invokes the command once. A missing program is reported as
// ErrToolUnavailable; a non-zero exit or unparseable output is
// transient.
func (c *Command) Check(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(execRequest{
		FilePath:  req.FilePath,
		LineStart: req.Anchor.Start,
		LineEnd:   req.Anchor.End,
		Category:  string(req.Category),
		Context:   req.Context,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding checker request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.path, c.args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %s", ErrToolUnavailable, c.path)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Result{}, Transient(fmt.Errorf("checker %s: %s", c.path, msg))
	}

	findings, err := ParseFindings(stdout.String())
	if err != nil {
		return Result{}, err
	}
	return Result{
		Findings:    findings,
		EvidenceRef: evidenceRef(c.name, req),
		Success:     true,
	}, nil
}
