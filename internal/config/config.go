package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds every orchestration knob. All knobs are numeric (plus two
// booleans); behavior never depends on free-form strings.
type Config struct {
	// Planning
	MergeWindow         int     `json:"mergeWindow" yaml:"mergeWindow"`
	Similarity          float64 `json:"similarity" yaml:"similarity"`
	AnchorTolerance     int     `json:"anchorTolerance" yaml:"anchorTolerance"`
	KeepUnanchored      bool    `json:"keepUnanchored" yaml:"keepUnanchored"`
	UnanchoredCeiling   float64 `json:"unanchoredCeiling" yaml:"unanchoredCeiling"`
	MaxTasks            int     `json:"maxTasks" yaml:"maxTasks"`
	MaxTasksPerFile     int     `json:"maxTasksPerFile" yaml:"maxTasksPerFile"`
	MaxTasksPerCategory int     `json:"maxTasksPerCategory" yaml:"maxTasksPerCategory"`
	TaskCost            int     `json:"taskCost" yaml:"taskCost"`

	// Budget
	GlobalCallBudget      int `json:"globalCallBudget" yaml:"globalCallBudget"`
	PerFileCallBudget     int `json:"perFileCallBudget" yaml:"perFileCallBudget"`
	PerCategoryCallBudget int `json:"perCategoryCallBudget" yaml:"perCategoryCallBudget"`
	PerTaskCallCeiling    int `json:"perTaskCallCeiling" yaml:"perTaskCallCeiling"`

	// Execution
	Workers            int     `json:"workers" yaml:"workers"`
	MaxRetries         int     `json:"maxRetries" yaml:"maxRetries"`
	SubCallTimeoutSecs int     `json:"subCallTimeoutSecs" yaml:"subCallTimeoutSecs"`
	RunTimeoutSecs     int     `json:"runTimeoutSecs" yaml:"runTimeoutSecs"`
	ClampFactor        float64 `json:"clampFactor" yaml:"clampFactor"`

	// CheckerCommand is an external checker program invoked per sub-call.
	// Empty means no exec checker is registered.
	CheckerCommand string `json:"checkerCommand,omitempty" yaml:"checkerCommand,omitempty"`

	// Reporting
	ConfidenceThreshold float64            `json:"confidenceThreshold" yaml:"confidenceThreshold"`
	CategoryThresholds  map[string]float64 `json:"categoryThresholds,omitempty" yaml:"categoryThresholds,omitempty"`
	Format              string             `json:"format" yaml:"format"`

	// Ambient
	LogLevel  string      `json:"logLevel" yaml:"logLevel"`
	LogFormat string      `json:"logFormat" yaml:"logFormat"`
	Cache     CacheConfig `json:"cache" yaml:"cache"`
}

// CacheConfig controls sub-call response caching.
type CacheConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	Dir        string `json:"dir,omitempty" yaml:"dir,omitempty"`
	TTLSeconds int    `json:"ttlSeconds" yaml:"ttlSeconds"`
	MaxEntries int    `json:"maxEntries" yaml:"maxEntries"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		MergeWindow:         5,
		Similarity:          0.75,
		AnchorTolerance:     3,
		KeepUnanchored:      false,
		UnanchoredCeiling:   0.4,
		MaxTasks:            30,
		MaxTasksPerFile:     8,
		MaxTasksPerCategory: 10,
		TaskCost:            3,

		GlobalCallBudget:      60,
		PerFileCallBudget:     20,
		PerCategoryCallBudget: 30,
		PerTaskCallCeiling:    6,

		Workers:            4,
		MaxRetries:         2,
		SubCallTimeoutSecs: 60,
		RunTimeoutSecs:     600,
		ClampFactor:        0.6,

		ConfidenceThreshold: 0.5,
		Format:              "text",

		LogLevel:  "info",
		LogFormat: "text",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
			MaxEntries: 256,
		},
	}
}

// Validate rejects configurations that would corrupt a run. Negative caps
// and budgets fail fast before any execution starts.
func (c Config) Validate() error {
	type check struct {
		name string
		val  int
	}
	for _, ch := range []check{
		{"mergeWindow", c.MergeWindow},
		{"anchorTolerance", c.AnchorTolerance},
		{"maxTasks", c.MaxTasks},
		{"maxTasksPerFile", c.MaxTasksPerFile},
		{"maxTasksPerCategory", c.MaxTasksPerCategory},
		{"globalCallBudget", c.GlobalCallBudget},
		{"perFileCallBudget", c.PerFileCallBudget},
		{"perCategoryCallBudget", c.PerCategoryCallBudget},
		{"perTaskCallCeiling", c.PerTaskCallCeiling},
		{"maxRetries", c.MaxRetries},
	} {
		if ch.val < 0 {
			return fmt.Errorf("%s must not be negative, got %d", ch.name, ch.val)
		}
	}
	if c.TaskCost < 1 {
		return fmt.Errorf("taskCost must be >= 1, got %d", c.TaskCost)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Similarity < 0 || c.Similarity > 1 {
		return fmt.Errorf("similarity must be in [0,1], got %g", c.Similarity)
	}
	if c.ClampFactor <= 0 || c.ClampFactor >= 1 {
		return fmt.Errorf("clampFactor must be in (0,1), got %g", c.ClampFactor)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidenceThreshold must be in [0,1], got %g", c.ConfidenceThreshold)
	}
	for cat, th := range c.CategoryThresholds {
		if th < 0 || th > 1 {
			return fmt.Errorf("categoryThresholds[%s] must be in [0,1], got %g", cat, th)
		}
	}
	if c.UnanchoredCeiling < 0 || c.UnanchoredCeiling > 1 {
		return fmt.Errorf("unanchoredCeiling must be in [0,1], got %g", c.UnanchoredCeiling)
	}
	return nil
}

// ThresholdFor returns the confidence threshold for a category, honoring
// per-category overrides.
func (c Config) ThresholdFor(category string) float64 {
	if th, ok := c.CategoryThresholds[category]; ok {
		return th
	}
	return c.ConfidenceThreshold
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codereview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "codereview"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "codereview"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "codereview"), nil
	default:
		return filepath.Join(home, ".config", "codereview"), nil
	}
}

// ConfigPath returns the first config file that exists in the config
// directory, preferring JSON, or the JSON path if none exists yet.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.json", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads config from path. JSON and YAML are supported, chosen by
// extension. A missing file yields a zero Config and nil error.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing JSON config: %w", err)
		}
	}
	return cfg, nil
}

// Save writes the config to path as JSON.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags; only set keys apply.
func Load(overrides map[string]string) (Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	fileCfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge overlays the set fields of src onto dst. Zero-valued fields in
// src leave dst untouched.
func Merge(dst *Config, src Config) {
	mergeFile(dst, src)
}

func mergeFile(dst *Config, src Config) {
	if src.MergeWindow > 0 {
		dst.MergeWindow = src.MergeWindow
	}
	if src.Similarity > 0 {
		dst.Similarity = src.Similarity
	}
	if src.AnchorTolerance > 0 {
		dst.AnchorTolerance = src.AnchorTolerance
	}
	dst.KeepUnanchored = dst.KeepUnanchored || src.KeepUnanchored
	if src.UnanchoredCeiling > 0 {
		dst.UnanchoredCeiling = src.UnanchoredCeiling
	}
	if src.MaxTasks > 0 {
		dst.MaxTasks = src.MaxTasks
	}
	if src.MaxTasksPerFile > 0 {
		dst.MaxTasksPerFile = src.MaxTasksPerFile
	}
	if src.MaxTasksPerCategory > 0 {
		dst.MaxTasksPerCategory = src.MaxTasksPerCategory
	}
	if src.TaskCost > 0 {
		dst.TaskCost = src.TaskCost
	}
	if src.GlobalCallBudget > 0 {
		dst.GlobalCallBudget = src.GlobalCallBudget
	}
	if src.PerFileCallBudget > 0 {
		dst.PerFileCallBudget = src.PerFileCallBudget
	}
	if src.PerCategoryCallBudget > 0 {
		dst.PerCategoryCallBudget = src.PerCategoryCallBudget
	}
	if src.PerTaskCallCeiling > 0 {
		dst.PerTaskCallCeiling = src.PerTaskCallCeiling
	}
	if src.Workers > 0 {
		dst.Workers = src.Workers
	}
	if src.MaxRetries > 0 {
		dst.MaxRetries = src.MaxRetries
	}
	if src.SubCallTimeoutSecs > 0 {
		dst.SubCallTimeoutSecs = src.SubCallTimeoutSecs
	}
	if src.RunTimeoutSecs > 0 {
		dst.RunTimeoutSecs = src.RunTimeoutSecs
	}
	if src.ClampFactor > 0 {
		dst.ClampFactor = src.ClampFactor
	}
	if src.CheckerCommand != "" {
		dst.CheckerCommand = src.CheckerCommand
	}
	if src.ConfidenceThreshold > 0 {
		dst.ConfidenceThreshold = src.ConfidenceThreshold
	}
	if len(src.CategoryThresholds) > 0 {
		dst.CategoryThresholds = src.CategoryThresholds
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Cache.MaxEntries > 0 {
		dst.Cache.MaxEntries = src.Cache.MaxEntries
	}
	dst.Cache.Enabled = src.Cache.Enabled || dst.Cache.Enabled
}

func mergeEnv(cfg *Config) {
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	envInt("CODEREVIEW_MERGE_WINDOW", &cfg.MergeWindow)
	envFloat("CODEREVIEW_SIMILARITY", &cfg.Similarity)
	envInt("CODEREVIEW_ANCHOR_TOLERANCE", &cfg.AnchorTolerance)
	envInt("CODEREVIEW_MAX_TASKS", &cfg.MaxTasks)
	envInt("CODEREVIEW_GLOBAL_BUDGET", &cfg.GlobalCallBudget)
	envInt("CODEREVIEW_WORKERS", &cfg.Workers)
	envInt("CODEREVIEW_MAX_RETRIES", &cfg.MaxRetries)
	envInt("CODEREVIEW_RUN_TIMEOUT_SECS", &cfg.RunTimeoutSecs)
	envFloat("CODEREVIEW_CONFIDENCE_THRESHOLD", &cfg.ConfidenceThreshold)
	envFloat("CODEREVIEW_CLAMP_FACTOR", &cfg.ClampFactor)
	if v := os.Getenv("CODEREVIEW_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("CODEREVIEW_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CODEREVIEW_CHECKER_COMMAND"); v != "" {
		cfg.CheckerCommand = v
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := SetField(cfg, key, value); err != nil {
			return err
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns an error if
// the key is unknown or the value does not parse.
func SetField(cfg *Config, key, value string) error {
	setInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, err)
		}
		*dst = n
		return nil
	}
	setFloat := func(dst *float64) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		*dst = f
		return nil
	}
	switch key {
	case "mergeWindow":
		return setInt(&cfg.MergeWindow)
	case "similarity":
		return setFloat(&cfg.Similarity)
	case "anchorTolerance":
		return setInt(&cfg.AnchorTolerance)
	case "keepUnanchored":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("keepUnanchored must be a boolean: %w", err)
		}
		cfg.KeepUnanchored = b
		return nil
	case "unanchoredCeiling":
		return setFloat(&cfg.UnanchoredCeiling)
	case "maxTasks":
		return setInt(&cfg.MaxTasks)
	case "maxTasksPerFile":
		return setInt(&cfg.MaxTasksPerFile)
	case "maxTasksPerCategory":
		return setInt(&cfg.MaxTasksPerCategory)
	case "taskCost":
		return setInt(&cfg.TaskCost)
	case "globalCallBudget":
		return setInt(&cfg.GlobalCallBudget)
	case "perFileCallBudget":
		return setInt(&cfg.PerFileCallBudget)
	case "perCategoryCallBudget":
		return setInt(&cfg.PerCategoryCallBudget)
	case "perTaskCallCeiling":
		return setInt(&cfg.PerTaskCallCeiling)
	case "workers":
		return setInt(&cfg.Workers)
	case "maxRetries":
		return setInt(&cfg.MaxRetries)
	case "subCallTimeoutSecs":
		return setInt(&cfg.SubCallTimeoutSecs)
	case "runTimeoutSecs":
		return setInt(&cfg.RunTimeoutSecs)
	case "clampFactor":
		return setFloat(&cfg.ClampFactor)
	case "checkerCommand":
		cfg.CheckerCommand = value
		return nil
	case "confidenceThreshold":
		return setFloat(&cfg.ConfidenceThreshold)
	case "format":
		cfg.Format = value
		return nil
	case "logLevel":
		cfg.LogLevel = value
		return nil
	case "logFormat":
		cfg.LogFormat = value
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
