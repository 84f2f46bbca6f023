// Package plan turns raw candidate tasks into a budget-respecting,
// deduplicated, deterministically ordered execution plan.
//
// Planning is a pure function of its inputs: candidates are anchored
// against the diff's changed-line windows, near-duplicates are merged,
// survivors are ranked by priority with stable tie-breaks, and tasks are
// greedily admitted under the total/per-file/per-category caps while
// their estimated call cost is reserved against the global budget
// ledger. Running the same inputs twice yields an identical plan.
//
// Nothing is silently dropped: every excluded candidate lands in the
// skipped list with its reason (unanchored, budget capped, budget
// exhausted, invalid).
package plan
