package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/course-adder/internal/runner"
	"github.com/pfrederiksen/course-adder/internal/target"
)

const (
	linesFile  = "lines.json"
	reportFile = "last_run.json"
)

// ErrNoReport means no run has been saved yet.
var ErrNoReport = errors.New("no saved run report")

// SavedLines is the on-disk form of the saved request list.
type SavedLines struct {
	Lines     []string `json:"lines"`
	UpdatedAt string   `json:"updated_at"` // RFC3339 timestamp
}

// Storage handles persistence under a data directory
type Storage struct {
	dataDir string
}

// New creates a new Storage instance, creating dataDir if needed.
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the resolved data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// SaveLines stores lines after trimming them and dropping blanks.
func (s *Storage) SaveLines(lines []string) error {
	clean := target.SplitLines(strings.Join(lines, "\n"))
	saved := SavedLines{
		Lines:     clean,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return s.writeJSON(linesFile, saved)
}

// LoadLines returns the saved lines, or an empty list when none were saved.
func (s *Storage) LoadLines() ([]string, error) {
	var saved SavedLines
	found, err := s.readJSON(linesFile, &saved)
	if err != nil {
		return nil, fmt.Errorf("loading lines: %w", err)
	}
	if !found || saved.Lines == nil {
		return []string{}, nil
	}
	return saved.Lines, nil
}

// SaveReport stores report as the last run.
func (s *Storage) SaveReport(report *runner.Report) error {
	return s.writeJSON(reportFile, report)
}

// LoadLastReport returns the most recently saved report, or ErrNoReport.
func (s *Storage) LoadLastReport() (*runner.Report, error) {
	var report runner.Report
	found, err := s.readJSON(reportFile, &report)
	if err != nil {
		return nil, fmt.Errorf("loading report: %w", err)
	}
	if !found {
		return nil, ErrNoReport
	}
	return &report, nil
}

func (s *Storage) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	// Write to a temp file and rename so a crash never leaves half a file.
	path := filepath.Join(s.dataDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (s *Storage) readJSON(name string, v interface{}) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing %s: %w", name, err)
	}
	return true, nil
}
