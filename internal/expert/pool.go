package expert

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wangyue6761/CodeReview/internal/budget"
	"github.com/wangyue6761/CodeReview/internal/cache"
	"github.com/wangyue6761/CodeReview/internal/checker"
	"github.com/wangyue6761/CodeReview/internal/config"
	"github.com/wangyue6761/CodeReview/internal/task"
)

// ContextFunc supplies the change context (diff excerpt, file content)
// a checker should see for a given file.
type ContextFunc func(filePath string) string

// Pool runs tasks against the registered checkers.
type Pool struct {
	registry *checker.Registry
	ledger   *budget.Ledger
	cache    *cache.Cache
	cfg      config.Config
	contexts ContextFunc

	// backoffBase is the first retry delay; doubled per attempt.
	backoffBase time.Duration
}

// New creates a pool. cache may be nil; contexts may be nil when no
// change context is available.
func New(reg *checker.Registry, ledger *budget.Ledger, c *cache.Cache, cfg config.Config, contexts ContextFunc) *Pool {
	return &Pool{
		registry:    reg,
		ledger:      ledger,
		cache:       c,
		cfg:         cfg,
		contexts:    contexts,
		backoffBase: time.Second,
	}
}

// Stats summarizes what happened during a run, for the report metadata.
type Stats struct {
	TasksRun           int  `json:"tasks_run"`
	TasksDone          int  `json:"tasks_done"`
	TasksFailed        int  `json:"tasks_failed"`
	TasksBudgetStopped int  `json:"tasks_budget_stopped"`
	TasksCancelled     int  `json:"tasks_cancelled"`
	SubCalls           int  `json:"sub_calls"`
	SubCallFailures    int  `json:"sub_call_failures"`
	ToolsUnavailable   int  `json:"tools_unavailable"`
	FindingsDropped    int  `json:"findings_dropped"`
	CacheHits          int  `json:"cache_hits"`
	RunTimedOut        bool `json:"run_timed_out"`
}

// taskResult is one worker's output slot.
type taskResult struct {
	task     task.Task
	findings []task.Finding
	stats    Stats
}

// Run executes the task list and returns calibrated findings. The run
// never aborts on individual task failure; the returned task slice
// mirrors the input order with final statuses filled in.
func (p *Pool) Run(ctx context.Context, tasks []task.Task) ([]task.Finding, []task.Task, Stats) {
	if p.cfg.RunTimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.RunTimeoutSecs)*time.Second)
		defer cancel()
	}

	results := make([]taskResult, len(tasks))
	g := &errgroup.Group{}
	g.SetLimit(p.cfg.Workers)

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			results[i] = p.runTask(ctx, t)
			return nil
		})
	}
	g.Wait()

	var findings []task.Finding
	var stats Stats
	final := make([]task.Task, len(tasks))
	for i, r := range results {
		final[i] = r.task
		findings = append(findings, r.findings...)
		stats.merge(r.stats)
	}
	stats.RunTimedOut = ctx.Err() != nil

	slog.Info("expert pool finished",
		"tasks", len(tasks),
		"findings", len(findings),
		"sub_calls", stats.SubCalls,
		"budget_stopped", stats.TasksBudgetStopped,
		"failed", stats.TasksFailed,
		"timed_out", stats.RunTimedOut)
	return findings, final, stats
}

func (s *Stats) merge(o Stats) {
	s.TasksRun += o.TasksRun
	s.TasksDone += o.TasksDone
	s.TasksFailed += o.TasksFailed
	s.TasksBudgetStopped += o.TasksBudgetStopped
	s.TasksCancelled += o.TasksCancelled
	s.SubCalls += o.SubCalls
	s.SubCallFailures += o.SubCallFailures
	s.ToolsUnavailable += o.ToolsUnavailable
	s.FindingsDropped += o.FindingsDropped
	s.CacheHits += o.CacheHits
}

// runTask executes one task's sub-calls sequentially. Panics are caught
// and recorded as a failed task; the run continues.
func (p *Pool) runTask(ctx context.Context, t task.Task) (res taskResult) {
	res.task = t
	res.stats.TasksRun = 1

	defer func() {
		if r := recover(); r != nil {
			slog.Error("task crashed", "task", t.ID, "panic", r)
			res.task.Status = task.StatusFailed
			res.findings = nil
			res.stats.TasksFailed++
		}
	}()

	if !t.Status.CanTransition(task.StatusRunning) {
		res.task.Status = task.StatusFailed
		res.stats.TasksFailed++
		return res
	}
	t.Status = task.StatusRunning

	allowance := t.BudgetCost
	if p.cfg.PerTaskCallCeiling > 0 && allowance > p.cfg.PerTaskCallCeiling {
		allowance = p.cfg.PerTaskCallCeiling
	}

	var (
		findings       []task.Finding
		inconclusive   = make(map[string]bool)
		retryExhausted bool
		calls          int
		stop           task.StopReason
	)

	for _, chk := range p.registry.For(t.Category) {
		if ctx.Err() != nil {
			stop = task.StopRunCancelled
			break
		}
		if calls >= allowance {
			stop = task.StopCallCeiling
			break
		}

		req := checker.Request{
			FilePath: t.FilePath,
			Anchor:   t.Anchor,
			Category: t.Category,
		}
		if p.contexts != nil {
			req.Context = p.contexts(t.FilePath)
		}

		result, cached, err := p.invoke(ctx, chk, req)
		switch {
		case isBudgetStop(err):
			stop = task.StopBudget
		case isToolUnavailable(err):
			res.stats.ToolsUnavailable++
			slog.Warn("checker unavailable, degrading", "checker", chk.Name(), "task", t.ID)
		case err != nil:
			calls++
			res.stats.SubCalls++
			res.stats.SubCallFailures++
			retryExhausted = true
			slog.Warn("sub-call failed after retries", "checker", chk.Name(), "task", t.ID, "err", err)
		default:
			if cached {
				// A cache hit spent no budget and counts against nothing.
				res.stats.CacheHits++
			} else {
				calls++
				res.stats.SubCalls++
			}
			if !result.Success {
				inconclusive[result.EvidenceRef] = true
			}
			for _, rf := range result.Findings {
				f, ok := p.buildFinding(t, rf, result.EvidenceRef)
				if !ok {
					res.stats.FindingsDropped++
					continue
				}
				findings = append(findings, f)
			}
		}
		if stop != task.StopNone {
			break
		}
	}

	if ctx.Err() != nil && stop == task.StopNone {
		stop = task.StopRunCancelled
	}

	t.Status = task.StatusDone
	t.StopReason = stop
	switch stop {
	case task.StopBudget, task.StopCallCeiling:
		res.stats.TasksBudgetStopped++
	case task.StopRunCancelled:
		res.stats.TasksCancelled++
	}
	res.stats.TasksDone++

	// Calibration: attenuate once when the task was stopped early, hit
	// its retry ceiling, or a finding rests on weak evidence. Then apply
	// the task's confidence ceiling, if any.
	for i := range findings {
		if stop != task.StopNone || retryExhausted || findings[i].WeakEvidence(inconclusive) {
			findings[i].AttenuateConfidence(p.cfg.ClampFactor)
		}
		findings[i].ClampConfidence(t.Ceiling)
	}

	res.task = t
	res.findings = findings
	return res
}

// buildFinding attributes a raw finding to its task, enforcing the
// anchor range. Findings with no line are re-anchored to the anchor
// start; findings outside anchor ± tolerance are dropped.
func (p *Pool) buildFinding(t task.Task, rf checker.RawFinding, evidenceRef string) (task.Finding, bool) {
	line := rf.Line
	if line == 0 {
		line = t.Anchor.Start
	}
	if !t.Anchor.Contains(line) {
		dist := t.Anchor.Distance(task.LineRange{Start: line, End: line})
		if dist > p.cfg.AnchorTolerance {
			return task.Finding{}, false
		}
	}

	sev := task.Severity(rf.Severity)
	if task.SeverityRank(sev) == 0 {
		sev = t.Severity
	}
	f := task.Finding{
		TaskID:      t.ID,
		FilePath:    t.FilePath,
		Line:        line,
		Category:    t.Category,
		Severity:    sev,
		Description: rf.Description,
		Suggestion:  rf.Suggestion,
		Confidence:  rf.Confidence,
	}
	if evidenceRef != "" {
		f.EvidenceRefs = []string{evidenceRef}
	}
	f.ID = task.FindingID(f)
	return f, true
}
