// Package expert executes the planned task list under bounded
// concurrency and calibrates the confidence of what comes back.
//
// Each task runs on one worker and issues its checker sub-calls
// sequentially, so per-task partial results are deterministic. The
// shared budget ledger is the only cross-task state; tasks never see
// each other's in-flight findings.
//
// Failure handling follows a fixed taxonomy: an unavailable tool
// degrades that single check, a transient failure is retried with
// exponential backoff, an exhausted budget stops the task but keeps its
// partial findings, and a panicking task is caught and recorded without
// taking the run down. A run-level timeout cancels in-flight sub-calls;
// interrupted tasks are treated exactly like budget-stopped ones.
//
// Findings from budget-stopped, retry-exhausted, or weakly evidenced
// tasks have their confidence multiplied by a clamp factor below one, so
// speculative conclusions cannot reach confirmed status downstream.
package expert
