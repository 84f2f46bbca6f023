// Package gitctx collects diffs and repository metadata by shelling out
// to git.
//
// It supports unstaged, staged, and revision-range diffs, plus wrapping
// externally supplied unified diff text. FileSection slices a per-file
// excerpt out of the collected diff for use as checker context.
package gitctx
