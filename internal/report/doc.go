// Package report aggregates calibrated findings into the terminal Report
// artifact.
//
// Findings are deduplicated across tasks, then partitioned into
// confirmed and uncertain by the configured confidence threshold (with
// per-category overrides). Uncertain findings are retained for audit,
// never discarded. Run metadata carries per-category counts, skip and
// exhaustion counters, and the final budget snapshot so degraded or
// partial runs are visible in the output rather than silently absorbed.
//
// Summarize is order-independent: permuting its input findings yields
// the same confirmed and uncertain sets.
package report
