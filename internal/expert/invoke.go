package expert

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/wangyue6761/CodeReview/internal/checker"
)

// errBudgetStop signals that the ledger refused the sub-call.
var errBudgetStop = errors.New("budget exhausted")

func isBudgetStop(err error) bool {
	return errors.Is(err, errBudgetStop)
}

func isToolUnavailable(err error) bool {
	return errors.Is(err, checker.ErrToolUnavailable)
}

// invoke performs one sub-call: cache lookup, budget consumption, then
// the checker call with bounded retries. A cache hit spends no budget.
func (p *Pool) invoke(ctx context.Context, chk checker.Checker, req checker.Request) (checker.Result, bool, error) {
	key := chk.Name() + "|" + req.Key()
	if p.cache != nil {
		if payload, ok := p.cache.Get(key); ok {
			var result checker.Result
			if err := json.Unmarshal([]byte(payload), &result); err == nil {
				return result, true, nil
			}
		}
	}

	if !p.ledger.Consume(req.FilePath, req.Category) {
		return checker.Result{}, false, errBudgetStop
	}

	var result checker.Result
	err := p.retryWithBackoff(ctx, func() error {
		callCtx := ctx
		if p.cfg.SubCallTimeoutSecs > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.SubCallTimeoutSecs)*time.Second)
			defer cancel()
		}
		r, err := chk.Check(callCtx, req)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return checker.Result{}, false, err
	}

	if p.cache != nil {
		if payload, merr := json.Marshal(result); merr == nil {
			_ = p.cache.Put(key, string(payload))
		}
	}
	return result, false, nil
}

// retryWithBackoff retries transient failures with exponential backoff.
// Unavailable tools and fatal errors return immediately; cancellation
// wins over any pending backoff sleep.
func (p *Pool) retryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if isToolUnavailable(lastErr) {
			return lastErr
		}
		if !checker.IsTransient(lastErr) {
			return lastErr
		}
		if attempt < p.cfg.MaxRetries {
			backoff := time.Duration(1<<uint(attempt)) * p.backoffBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
