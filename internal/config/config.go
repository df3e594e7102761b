// Package config loads course-adder settings from an optional YAML file.
//
// Values are layered: built-in defaults, then the file, then CLI flags (applied
// by the cli package). Defaults mirror the registration widget the tool was
// written for.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ErrCodeNotFound means an explicitly requested config file does not exist.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid means the file could not be read or parsed.
	ErrCodeInvalid = "config_invalid"
	// ErrCodeValue means a field holds an unusable value.
	ErrCodeValue = "config_value"
)

const (
	DefaultFileName   = "course-adder.yaml"
	DefaultDataDir    = "~/.local/share/course-adder"
	DefaultUserAgent  = "course-adder/1.0 (github.com/pfrederiksen/course-adder)"
	DefaultLogLevel   = "INFO"
	DefaultSearchRows = ".dual-listbox__available .dual-listbox__item, .dual-listbox__item"
)

// Selectors locate the parts of the dual listbox widget.
type Selectors struct {
	SearchInput    string `yaml:"search_input"`
	ResultRows     string `yaml:"result_rows"`
	CentralButtons string `yaml:"central_buttons"`
}

// Config holds every tunable of a run.
type Config struct {
	URL       string `yaml:"url"`
	PageFile  string `yaml:"page_file"`
	UserAgent string `yaml:"user_agent"`
	DataDir   string `yaml:"data_dir"`
	LogLevel  string `yaml:"log_level"`

	// SearchParam, when set, is added to URL as ?<param>=<course> on every search.
	SearchParam string `yaml:"search_param"`

	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	WaitTimeout  time.Duration `yaml:"wait_timeout"`  // how long to wait for rows to appear
	PollInterval time.Duration `yaml:"poll_interval"` // how often to look while waiting
	Settle       time.Duration `yaml:"settle"`        // pause after rows appear
	ActionDelay  time.Duration `yaml:"action_delay"`  // pause after clicking add
	LineDelay    time.Duration `yaml:"line_delay"`    // pause between lines

	Selectors Selectors `yaml:"selectors"`
}

// Error is a configuration error with a stable code.
type Error struct {
	Code  string
	Path  string
	Field string
	Err   error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q not found", e.Code, e.Path)
	case ErrCodeValue:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Field, e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q", e.Code, e.Path)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code from err, or "" if err is not a *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		UserAgent:    DefaultUserAgent,
		DataDir:      DefaultDataDir,
		LogLevel:     DefaultLogLevel,
		HTTPTimeout:  30 * time.Second,
		WaitTimeout:  12 * time.Second,
		PollInterval: 50 * time.Millisecond,
		Settle:       150 * time.Millisecond,
		ActionDelay:  400 * time.Millisecond,
		LineDelay:    300 * time.Millisecond,
		Selectors: Selectors{
			SearchInput:    `input[placeholder*="Search Course Code"]`,
			ResultRows:     DefaultSearchRows,
			CentralButtons: ".dual-listbox__buttons .dual-listbox__button",
		},
	}
}

// Load reads path over the defaults. A missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: ErrCodeNotFound, Path: path, Err: err}
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return Parse(data, path)
}

// LoadOptional is like Load but falls back to the defaults when path is empty
// or does not exist.
func LoadOptional(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if Code(err) == ErrCodeNotFound {
		return Default(), nil
	}
	return cfg, err
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte, path string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks durations, selectors and the log level.
func (c *Config) Validate() error {
	durations := []struct {
		field string
		value time.Duration
	}{
		{"http_timeout", c.HTTPTimeout},
		{"wait_timeout", c.WaitTimeout},
		{"poll_interval", c.PollInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return &Error{Code: ErrCodeValue, Field: d.field, Err: fmt.Errorf("must be positive, got %s", d.value)}
		}
	}

	for _, d := range []struct {
		field string
		value time.Duration
	}{
		{"settle", c.Settle},
		{"action_delay", c.ActionDelay},
		{"line_delay", c.LineDelay},
	} {
		if d.value < 0 {
			return &Error{Code: ErrCodeValue, Field: d.field, Err: fmt.Errorf("must not be negative, got %s", d.value)}
		}
	}

	if strings.TrimSpace(c.Selectors.ResultRows) == "" {
		return &Error{Code: ErrCodeValue, Field: "selectors.result_rows", Err: errors.New("must not be empty")}
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return &Error{Code: ErrCodeValue, Field: "log_level", Err: fmt.Errorf("unknown level %q", c.LogLevel)}
	}

	return nil
}
