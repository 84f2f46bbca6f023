package triage

import (
	"strings"
	"testing"

	"github.com/wangyue6761/CodeReview/internal/task"
)

func TestDecodeBareArray(t *testing.T) {
	in := `[{"file_path": "a.go", "risk_category": "security", "anchor_lines": {"start": 3, "end": 9}}]`
	cands, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
	c := cands[0]
	if c.FilePath != "a.go" || c.Category != task.CategorySecurity {
		t.Errorf("candidate = %+v", c)
	}
	if c.Anchor != (task.LineRange{Start: 3, End: 9}) {
		t.Errorf("anchor = %v, want 3-9", c.Anchor)
	}
}

func TestDecodeEnvelope(t *testing.T) {
	in := `{"candidates": [{"file_path": "a.go", "risk_category": "lifecycle", "anchor_lines": {"start": 1, "end": 2}}]}`
	cands, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 {
		t.Fatalf("got %d candidates, want 1", len(cands))
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Error("garbage input should fail")
	}
}

const riskyDiff = `diff --git a/auth.go b/auth.go
--- a/auth.go
+++ b/auth.go
@@ -10,3 +10,5 @@
 func login(user string) error {
+	password := os.Getenv("ADMIN_PASSWORD")
+	if user == nil {
 	return nil
 }
`

func TestFromDiff(t *testing.T) {
	cands := FromDiff(riskyDiff)
	if len(cands) == 0 {
		t.Fatal("risky diff should yield candidates")
	}

	byCategory := make(map[task.Category]int)
	for _, c := range cands {
		if c.FilePath != "auth.go" {
			t.Errorf("candidate file = %q, want auth.go", c.FilePath)
		}
		if err := c.Anchor.Validate(); err != nil {
			t.Errorf("candidate anchor invalid: %v", err)
		}
		byCategory[c.Category]++
	}
	if byCategory[task.CategorySecurity] == 0 {
		t.Error("password mention should yield a security candidate")
	}
	if byCategory[task.CategoryNullSafety] == 0 {
		t.Error("nil mention should yield a null-safety candidate")
	}
	if byCategory[task.CategoryBusinessIntent] == 0 {
		t.Error("every window should get a business-intent candidate")
	}
	if byCategory[task.CategorySecurity] > 1 {
		t.Errorf("security candidates = %d, want 1 per window", byCategory[task.CategorySecurity])
	}
}

func TestFromDiffEmpty(t *testing.T) {
	if cands := FromDiff(""); len(cands) != 0 {
		t.Errorf("empty diff produced %d candidates", len(cands))
	}
}

func TestAddedLines(t *testing.T) {
	added := addedLines(riskyDiff)
	lines := added["auth.go"]
	if len(lines) != 2 {
		t.Fatalf("got %d added lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "ADMIN_PASSWORD") {
		t.Errorf("first added line = %q", lines[0])
	}
}
