// Package config loads and merges codereview configuration from multiple
// sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (CODEREVIEW_WORKERS, CODEREVIEW_GLOBAL_BUDGET, ...)
//  3. Config file ($XDG_CONFIG_HOME/codereview/config.json or config.yaml)
//  4. Built-in defaults
//
// Every orchestration knob is numeric and validated before a run starts:
// a negative cap or budget fails fast rather than surfacing mid-run.
package config
