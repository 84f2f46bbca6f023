// Codereview orchestrates budgeted, concurrent code review.
//
// It turns a diff into candidate review tasks, merges duplicates, plans
// them under global and per-scope call budgets, runs them concurrently
// against checkers with retries, and reports confidence-calibrated
// findings with deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	codereview review unstaged                # review working tree changes
//	codereview review staged                  # review staged changes
//	codereview review range origin/main..HEAD # review a revision range
//	codereview review diff changes.patch      # review a saved diff ('-' for stdin)
//
// See https://github.com/wangyue6761/CodeReview for full documentation.
package main
