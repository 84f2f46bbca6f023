// Package dedupe collapses near-duplicate tasks and findings.
//
// Two tasks are duplicates when they share file and category and their
// anchor ranges fall within the merge window of each other; duplicates
// merge into the union of their ranges. Two findings are duplicates when
// they share file and category, sit within the merge window, and their
// descriptions score at or above the configured token-set Jaccard
// similarity; the higher-confidence finding survives and absorbs the
// other's evidence references.
//
// Both merges run repeated passes to a fixed point over canonically
// sorted input, so the result is deterministic and independent of input
// order. Attribute conflicts break ties on the lexicographically lowest
// ID.
package dedupe
