package checker

import "testing"

func TestParseFindingsBareArray(t *testing.T) {
	fs, err := ParseFindings(`[{"line": 12, "description": "nil deref", "confidence": 0.8}]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 1 {
		t.Fatalf("got %d findings, want 1", len(fs))
	}
	if fs[0].Line != 12 || fs[0].Confidence != 0.8 {
		t.Errorf("finding = %+v", fs[0])
	}
}

func TestParseFindingsEnvelope(t *testing.T) {
	fs, err := ParseFindings(`{"findings": [{"line": 3, "description": "x", "confidence": 0.5}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 1 {
		t.Fatalf("got %d findings, want 1", len(fs))
	}
}

func TestParseFindingsFenced(t *testing.T) {
	content := "```json\n[{\"line\": 1, \"description\": \"y\", \"confidence\": 0.9}]\n```"
	fs, err := ParseFindings(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 1 {
		t.Fatalf("got %d findings, want 1", len(fs))
	}
}

func TestParseFindingsRepairsTrailingComma(t *testing.T) {
	fs, err := ParseFindings(`[{"line": 5, "description": "z", "confidence": 0.7},]`)
	if err != nil {
		t.Fatalf("repair pass should recover trailing comma: %v", err)
	}
	if len(fs) != 1 {
		t.Fatalf("got %d findings, want 1", len(fs))
	}
}

func TestParseFindingsGarbageIsTransient(t *testing.T) {
	_, err := ParseFindings("the code looks fine to me")
	if err == nil {
		t.Fatal("prose should not parse")
	}
	if !IsTransient(err) {
		t.Errorf("parse failure should be transient, got %v", err)
	}
}

func TestParseFindingsEmptyArray(t *testing.T) {
	fs, err := ParseFindings("[]")
	if err != nil {
		t.Fatal(err)
	}
	if len(fs) != 0 {
		t.Errorf("got %d findings, want 0", len(fs))
	}
}
