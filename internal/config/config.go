// Package config defines the editor configuration: AI backend
// selection, inline completion tuning, overlay presentation, the
// suggestion filter script, and logging. Files may be TOML or YAML,
// selected by extension, with INKSTORM_-prefixed environment variables
// overriding file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Errors returned by configuration operations.
var (
	// ErrValidationFailed indicates a configuration value is out of
	// range or inconsistent.
	ErrValidationFailed = errors.New("config validation failed")

	// ErrUnsupportedFormat indicates the file extension maps to no
	// known loader.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// AI configures the completion/modification backend.
type AI struct {
	// Provider selects the backend: "anthropic", "openai", or
	// "gemini". Empty disables AI features.
	Provider string `toml:"provider" yaml:"provider"`

	// Model is the provider-specific model identifier. Empty selects
	// the provider's default.
	Model string `toml:"model" yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Keys never appear in config files.
	APIKeyEnv string `toml:"api_key_env" yaml:"api_key_env"`

	// TimeoutMS bounds each modification request.
	TimeoutMS int `toml:"timeout_ms" yaml:"timeout_ms"`
}

// Completion configures the inline completion controller.
type Completion struct {
	// Enabled toggles inline completions.
	Enabled bool `toml:"enabled" yaml:"enabled"`

	// DebounceMS is the caret-inactivity window before a fetch.
	DebounceMS int `toml:"debounce_ms" yaml:"debounce_ms"`

	// Budget is the number of completions shown per session.
	Budget int `toml:"budget" yaml:"budget"`

	// ContextBytes bounds the document context sent with a request.
	ContextBytes int `toml:"context_bytes" yaml:"context_bytes"`
}

// Overlay configures decoration presentation.
type Overlay struct {
	// ShowGhostText toggles the inline completion ghost.
	ShowGhostText bool `toml:"show_ghost_text" yaml:"show_ghost_text"`

	// ShowDiffPreview toggles strike/insert diff decorations.
	ShowDiffPreview bool `toml:"show_diff_preview" yaml:"show_diff_preview"`
}

// Filter configures the Lua suggestion filter.
type Filter struct {
	// Script is the path to the filter script. Empty disables the
	// filter.
	Script string `toml:"script" yaml:"script"`
}

// Log configures diagnostics.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`

	// File is an optional log file path; empty discards diagnostics,
	// since the terminal screen owns stderr.
	File string `toml:"file" yaml:"file"`
}

// Config is the root configuration.
type Config struct {
	AI         AI         `toml:"ai" yaml:"ai"`
	Completion Completion `toml:"completion" yaml:"completion"`
	Overlay    Overlay    `toml:"overlay" yaml:"overlay"`
	Filter     Filter     `toml:"filter" yaml:"filter"`
	Log        Log        `toml:"log" yaml:"log"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		AI: AI{
			Provider:  "anthropic",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			TimeoutMS: 30000,
		},
		Completion: Completion{
			Enabled:      true,
			DebounceMS:   2000,
			Budget:       5,
			ContextBytes: 2048,
		},
		Overlay: Overlay{
			ShowGhostText:   true,
			ShowDiffPreview: true,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Validate checks value ranges and cross-field consistency.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "", "anthropic", "openai", "gemini":
	default:
		return fmt.Errorf("%w: unknown ai.provider %q", ErrValidationFailed, c.AI.Provider)
	}
	if c.AI.TimeoutMS < 0 {
		return fmt.Errorf("%w: ai.timeout_ms must not be negative", ErrValidationFailed)
	}
	if c.Completion.DebounceMS < 0 {
		return fmt.Errorf("%w: completion.debounce_ms must not be negative", ErrValidationFailed)
	}
	if c.Completion.Budget < 0 {
		return fmt.Errorf("%w: completion.budget must not be negative", ErrValidationFailed)
	}
	if c.Completion.ContextBytes < 0 {
		return fmt.Errorf("%w: completion.context_bytes must not be negative", ErrValidationFailed)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrValidationFailed, c.Log.Level)
	}
	return nil
}

// APIKey resolves the backend API key from the configured environment
// variable.
func (c *Config) APIKey() string {
	if c.AI.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.AI.APIKeyEnv)
}

// RequestTimeout returns the modification request timeout as a
// duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.AI.TimeoutMS) * time.Millisecond
}

// Debounce returns the completion debounce window as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Completion.DebounceMS) * time.Millisecond
}

// applyEnv maps INKSTORM_ environment variables onto config fields.
// Values that fail to parse are ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("INKSTORM_AI_PROVIDER"); ok {
		c.AI.Provider = v
	}
	if v, ok := lookup("INKSTORM_AI_MODEL"); ok {
		c.AI.Model = v
	}
	if v, ok := lookup("INKSTORM_AI_KEY_ENV"); ok {
		c.AI.APIKeyEnv = v
	}
	if v, ok := lookup("INKSTORM_COMPLETION_ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Completion.Enabled = b
		}
	}
	if v, ok := lookup("INKSTORM_COMPLETION_DEBOUNCE_MS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Completion.DebounceMS = n
		}
	}
	if v, ok := lookup("INKSTORM_COMPLETION_BUDGET"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Completion.Budget = n
		}
	}
	if v, ok := lookup("INKSTORM_FILTER_SCRIPT"); ok {
		c.Filter.Script = v
	}
	if v, ok := lookup("INKSTORM_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
}
