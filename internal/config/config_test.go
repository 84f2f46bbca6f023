package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MergeWindow != 5 {
		t.Errorf("Default mergeWindow = %d, want 5", cfg.MergeWindow)
	}
	if cfg.Similarity != 0.75 {
		t.Errorf("Default similarity = %g, want 0.75", cfg.Similarity)
	}
	if cfg.GlobalCallBudget != 60 {
		t.Errorf("Default globalCallBudget = %d, want 60", cfg.GlobalCallBudget)
	}
	if cfg.Workers != 4 {
		t.Errorf("Default workers = %d, want 4", cfg.Workers)
	}
	if cfg.ClampFactor != 0.6 {
		t.Errorf("Default clampFactor = %g, want 0.6", cfg.ClampFactor)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("Default confidenceThreshold = %g, want 0.5", cfg.ConfidenceThreshold)
	}
	if cfg.KeepUnanchored {
		t.Error("Default keepUnanchored should be false")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateFailsFast(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative global budget", func(c *Config) { c.GlobalCallBudget = -1 }},
		{"negative per-file budget", func(c *Config) { c.PerFileCallBudget = -2 }},
		{"negative merge window", func(c *Config) { c.MergeWindow = -1 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero task cost", func(c *Config) { c.TaskCost = 0 }},
		{"clamp factor one", func(c *Config) { c.ClampFactor = 1 }},
		{"clamp factor zero", func(c *Config) { c.ClampFactor = 0 }},
		{"similarity above one", func(c *Config) { c.Similarity = 1.5 }},
		{"threshold above one", func(c *Config) { c.ConfidenceThreshold = 1.1 }},
		{"bad category threshold", func(c *Config) { c.CategoryThresholds = map[string]float64{"security": 2} }},
	}
	for _, c := range cases {
		cfg := Default()
		c.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted a bad config", c.name)
		}
	}
}

func TestThresholdFor(t *testing.T) {
	cfg := Default()
	cfg.ConfidenceThreshold = 0.5
	cfg.CategoryThresholds = map[string]float64{"security": 0.3}

	if got := cfg.ThresholdFor("security"); got != 0.3 {
		t.Errorf("security threshold = %g, want 0.3", got)
	}
	if got := cfg.ThresholdFor("syntax"); got != 0.5 {
		t.Errorf("syntax threshold = %g, want fallback 0.5", got)
	}
}

func TestSetField(t *testing.T) {
	cfg := Default()
	if err := SetField(&cfg, "workers", "8"); err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d, want 8", cfg.Workers)
	}
	if err := SetField(&cfg, "clampFactor", "0.7"); err != nil {
		t.Fatal(err)
	}
	if cfg.ClampFactor != 0.7 {
		t.Errorf("clampFactor = %g, want 0.7", cfg.ClampFactor)
	}
	if err := SetField(&cfg, "keepUnanchored", "true"); err != nil {
		t.Fatal(err)
	}
	if !cfg.KeepUnanchored {
		t.Error("keepUnanchored should be true")
	}
	if err := SetField(&cfg, "checkerCommand", "mytool --json"); err != nil {
		t.Fatal(err)
	}
	if cfg.CheckerCommand != "mytool --json" {
		t.Errorf("checkerCommand = %q", cfg.CheckerCommand)
	}

	if err := SetField(&cfg, "workers", "lots"); err == nil {
		t.Error("non-integer value should fail")
	}
	if err := SetField(&cfg, "noSuchKey", "1"); err == nil {
		t.Error("unknown key should fail")
	}
}

func TestLoadFileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"mergeWindow": 9, "workers": 2, "format": "json"}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MergeWindow != 9 || cfg.Workers != 2 || cfg.Format != "json" {
		t.Errorf("loaded = %+v", cfg)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "mergeWindow: 7\nclampFactor: 0.5\ncache:\n  enabled: true\n  ttlSeconds: 60\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MergeWindow != 7 || cfg.ClampFactor != 0.5 {
		t.Errorf("loaded = %+v", cfg)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("cache ttl = %d, want 60", cfg.Cache.TTLSeconds)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Errorf("missing file should not error: %v", err)
	}
	if cfg.MergeWindow != 0 {
		t.Errorf("missing file should yield zero config, got %+v", cfg)
	}
}

func TestMerge(t *testing.T) {
	dst := Default()
	Merge(&dst, Config{MergeWindow: 11, Format: "markdown"})
	if dst.MergeWindow != 11 {
		t.Errorf("mergeWindow = %d, want 11", dst.MergeWindow)
	}
	if dst.Format != "markdown" {
		t.Errorf("format = %q, want markdown", dst.Format)
	}
	// Zero values must not clobber defaults.
	if dst.Workers != 4 || dst.ClampFactor != 0.6 {
		t.Errorf("zero fields overwrote defaults: %+v", dst)
	}
}

func TestMergeEnv(t *testing.T) {
	t.Setenv("CODEREVIEW_WORKERS", "7")
	t.Setenv("CODEREVIEW_CLAMP_FACTOR", "0.8")
	t.Setenv("CODEREVIEW_FORMAT", "json")
	t.Setenv("CODEREVIEW_CHECKER_COMMAND", "scanner --stdin")

	cfg := Default()
	mergeEnv(&cfg)
	if cfg.Workers != 7 {
		t.Errorf("workers = %d, want 7", cfg.Workers)
	}
	if cfg.ClampFactor != 0.8 {
		t.Errorf("clampFactor = %g, want 0.8", cfg.ClampFactor)
	}
	if cfg.Format != "json" {
		t.Errorf("format = %q, want json", cfg.Format)
	}
	if cfg.CheckerCommand != "scanner --stdin" {
		t.Errorf("checkerCommand = %q", cfg.CheckerCommand)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := Default()
	cfg.MaxTasks = 12

	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.MaxTasks != 12 {
		t.Errorf("maxTasks = %d, want 12", loaded.MaxTasks)
	}
}
