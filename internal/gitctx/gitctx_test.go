package gitctx

import (
	"strings"
	"testing"
)

const twoFileDiff = `diff --git a/main.go b/main.go
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
+import "fmt"
diff --git a/util.go b/util.go
--- a/util.go
+++ b/util.go
@@ -5,3 +5,4 @@
+func helper() {}
`

func TestExtractFiles(t *testing.T) {
	files := extractFiles(twoFileDiff)
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0] != "main.go" || files[1] != "util.go" {
		t.Errorf("files = %v", files)
	}
}

func TestExtractFilesDedup(t *testing.T) {
	diff := "+++ b/main.go\n+++ b/main.go\n"
	if files := extractFiles(diff); len(files) != 1 {
		t.Errorf("got %d files, want 1 (should dedup)", len(files))
	}
}

func TestFromText(t *testing.T) {
	res := FromText(twoFileDiff, DiffOptions{})
	if res.Mode != "file" {
		t.Errorf("mode = %q, want file", res.Mode)
	}
	if len(res.Files) != 2 {
		t.Errorf("files = %v, want 2 entries", res.Files)
	}
	if res.Diff != twoFileDiff {
		t.Error("diff text should pass through unchanged")
	}
}

func TestFromTextTruncation(t *testing.T) {
	res := FromText(twoFileDiff, DiffOptions{MaxDiffBytes: 30})
	if !strings.Contains(res.Diff, "truncated") {
		t.Error("oversized diff should carry a truncation marker")
	}
	if len(res.Diff) >= len(twoFileDiff) {
		t.Error("diff should have been cut down")
	}
}

func TestFileSection(t *testing.T) {
	res := FromText(twoFileDiff, DiffOptions{})

	section := res.FileSection("util.go")
	if !strings.Contains(section, "func helper()") {
		t.Errorf("util.go section = %q", section)
	}
	if strings.Contains(section, "import \"fmt\"") {
		t.Error("section should not bleed into other files")
	}
	if got := res.FileSection("missing.go"); got != "" {
		t.Errorf("unknown file section = %q, want empty", got)
	}
}

func TestDiffArgs(t *testing.T) {
	if args := diffArgs(DiffOptions{}); len(args) != 0 {
		t.Errorf("default args = %v, want none", args)
	}
	args := diffArgs(DiffOptions{ContextLines: 5})
	if len(args) != 1 || args[0] != "-U5" {
		t.Errorf("args = %v, want [-U5]", args)
	}
}
