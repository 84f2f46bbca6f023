// Package diffmap extracts per-file changed-line windows from unified
// diff text.
//
// The planner uses the windows to judge whether a candidate task's anchor
// range has direct evidence of relevance to the change: an anchor that
// cannot be mapped into any window within a configured tolerance is
// "unanchored" and is dropped or confidence-capped.
package diffmap
