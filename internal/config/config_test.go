package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.WaitTimeout != 12*time.Second {
		t.Errorf("WaitTimeout = %v, want 12s", cfg.WaitTimeout)
	}
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("PollInterval = %v, want 50ms", cfg.PollInterval)
	}
	if cfg.Selectors.ResultRows != DefaultSearchRows {
		t.Errorf("ResultRows = %q, want %q", cfg.Selectors.ResultRows, DefaultSearchRows)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
url: https://prereg.example.edu/
wait_timeout: 5s
line_delay: 1s
log_level: debug
selectors:
  result_rows: ".course-row"
`)

	cfg, err := Parse(data, "inline.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.URL != "https://prereg.example.edu/" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.WaitTimeout != 5*time.Second {
		t.Errorf("WaitTimeout = %v, want 5s", cfg.WaitTimeout)
	}
	if cfg.LineDelay != time.Second {
		t.Errorf("LineDelay = %v, want 1s", cfg.LineDelay)
	}
	if cfg.Selectors.ResultRows != ".course-row" {
		t.Errorf("ResultRows = %q, want .course-row", cfg.Selectors.ResultRows)
	}
	// Untouched fields keep their defaults.
	if cfg.PollInterval != 50*time.Millisecond {
		t.Errorf("PollInterval = %v, want default 50ms", cfg.PollInterval)
	}
	if cfg.Selectors.CentralButtons == "" {
		t.Error("CentralButtons lost its default")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantCode string
	}{
		{"bad yaml", "url: [unclosed", ErrCodeInvalid},
		{"bad duration", "wait_timeout: soon", ErrCodeInvalid},
		{"zero poll", "poll_interval: 0s", ErrCodeValue},
		{"negative delay", "line_delay: -1s", ErrCodeValue},
		{"empty rows selector", "selectors:\n  result_rows: \"\"", ErrCodeValue},
		{"unknown level", "log_level: chatty", ErrCodeValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test.yaml")
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if got := Code(err); got != tt.wantCode {
				t.Errorf("Code(err) = %q, want %q (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	if _, err := Load(path); Code(err) != ErrCodeNotFound {
		t.Errorf("Load(missing) code = %q, want %q", Code(err), ErrCodeNotFound)
	}

	cfg, err := LoadOptional(path)
	if err != nil {
		t.Fatalf("LoadOptional(missing) error = %v", err)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}

	if err := os.WriteFile(path, []byte("page_file: page.html\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PageFile != "page.html" {
		t.Errorf("PageFile = %q, want page.html", cfg.PageFile)
	}
}
