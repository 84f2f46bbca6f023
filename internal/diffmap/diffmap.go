package diffmap

import (
	"strconv"
	"strings"

	"github.com/wangyue6761/CodeReview/internal/task"
)

// Windows maps file paths to the new-side line ranges their diff hunks
// cover.
type Windows map[string][]task.LineRange

// Parse builds changed-line windows from unified diff text. Unparseable
// sections are skipped; an empty diff yields empty windows.
func Parse(diff string) Windows {
	w := make(Windows)
	var current string

	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++ b/"):
			current = strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "+++ "):
			// deleted files show as "+++ /dev/null"
			if strings.TrimPrefix(line, "+++ ") == "/dev/null" {
				current = ""
			}
		case strings.HasPrefix(line, "@@"):
			if current == "" {
				continue
			}
			if r, ok := parseHunkHeader(line); ok {
				w[current] = append(w[current], r)
			}
		}
	}
	return w
}

// parseHunkHeader extracts the new-side range from a "@@ -a,b +c,d @@"
// header. A zero-count hunk (pure deletion) maps to the single line it
// touches so nearby anchors still count as mapped.
func parseHunkHeader(line string) (task.LineRange, bool) {
	fields := strings.Fields(line)
	for _, f := range fields {
		if !strings.HasPrefix(f, "+") {
			continue
		}
		spec := strings.TrimPrefix(f, "+")
		start, count := 0, 1
		if i := strings.IndexByte(spec, ','); i >= 0 {
			var err error
			if start, err = strconv.Atoi(spec[:i]); err != nil {
				return task.LineRange{}, false
			}
			if count, err = strconv.Atoi(spec[i+1:]); err != nil {
				return task.LineRange{}, false
			}
		} else {
			var err error
			if start, err = strconv.Atoi(spec); err != nil {
				return task.LineRange{}, false
			}
		}
		if start < 1 {
			start = 1
		}
		end := start + count - 1
		if end < start {
			end = start
		}
		return task.LineRange{Start: start, End: end}, true
	}
	return task.LineRange{}, false
}

// FromRanges builds windows directly from an externally supplied file →
// ranges map, for callers that do their own diff parsing.
func FromRanges(ranges map[string][]task.LineRange) Windows {
	w := make(Windows, len(ranges))
	for path, rs := range ranges {
		w[path] = append([]task.LineRange(nil), rs...)
	}
	return w
}

// Anchored reports whether the anchor range maps into one of the file's
// changed windows, allowing a gap of up to tolerance lines.
func (w Windows) Anchored(path string, anchor task.LineRange, tolerance int) bool {
	for _, r := range w[path] {
		if anchor.Distance(r) <= tolerance {
			return true
		}
	}
	return false
}

// Files returns the changed file paths in no particular order.
func (w Windows) Files() []string {
	files := make([]string, 0, len(w))
	for path := range w {
		files = append(files, path)
	}
	return files
}
