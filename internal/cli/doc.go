// Package cli implements the codereview command-line interface.
//
// Commands: review (unstaged, staged, range, diff), config (init, set,
// show), and version. Review commands exit 0 on a clean run, 1 when
// confirmed findings exist, 2 on usage errors, and 4 on runtime errors.
package cli
