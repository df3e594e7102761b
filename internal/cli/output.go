package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/course-adder/internal/logger"
	"github.com/pfrederiksen/course-adder/internal/runner"
	"github.com/pfrederiksen/course-adder/internal/target"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParsedLine is one input line and its target, if any.
type ParsedLine struct {
	Line   string         `json:"line"`
	Target *target.Target `json:"target"`
}

// ParseResult is the output of the parse command.
type ParseResult struct {
	Lines   []ParsedLine `json:"lines"`
	Skipped int          `json:"skipped"`
}

// RunResult is the output of the run and report commands.
type RunResult struct {
	Report     *runner.Report     `json:"report"`
	Selections []runner.Selection `json:"selections,omitempty"`
	Metrics    *logger.Snapshot   `json:"metrics,omitempty"`
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteParseResult writes parsed lines in the given format.
func WriteParseResult(w io.Writer, result *ParseResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		width := 0
		for _, p := range result.Lines {
			if len(p.Line) > width {
				width = len(p.Line)
			}
		}
		for _, p := range result.Lines {
			if p.Target == nil {
				fmt.Fprintf(w, "%-*s  ->  skipped (no course code)\n", width, p.Line)
				continue
			}
			section := "any section"
			if p.Target.HasSection() {
				section = "section " + p.Target.Section
			}
			fmt.Fprintf(w, "%-*s  ->  %s, %s\n", width, p.Line, p.Target.Course, section)
		}
		fmt.Fprintf(w, "\nTotal: %s, %d skipped\n", target.CountLabel(len(result.Lines)), result.Skipped)
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteRunResult writes a run report in the given format.
func WriteRunResult(w io.Writer, result *RunResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeRunText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeRunText(w io.Writer, result *RunResult, verbose bool) error {
	report := result.Report
	if len(report.Outcomes) == 0 {
		fmt.Fprintln(w, "No lines processed.")
		return nil
	}

	for _, o := range report.Outcomes {
		status := strings.ToUpper(strings.ReplaceAll(string(o.Status), "_", " "))
		switch o.Status {
		case runner.StatusAdded:
			fmt.Fprintf(w, "%-9s %s  <-  %s\n", status, o.Target, o.Label)
		case runner.StatusSkipped:
			fmt.Fprintf(w, "%-9s %q (no course code)\n", status, o.Line)
		case runner.StatusError:
			fmt.Fprintf(w, "%-9s %s: %s\n", status, o.Line, o.Error)
		default:
			fmt.Fprintf(w, "%-9s %s\n", status, o.Target)
		}
		if verbose && o.Target != nil {
			fmt.Fprintf(w, "          Line: %s\n", o.Line)
			fmt.Fprintf(w, "          Candidates: %d\n", o.Candidates)
			if o.Handle != "" {
				fmt.Fprintf(w, "          Handle: %s\n", o.Handle)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d added, %d not found, %d skipped, %d errors\n",
		report.Added, report.NotFound, report.Skipped, report.Errors)

	if verbose {
		fmt.Fprintf(w, "Run: %s (%s)\n", report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
		if result.Metrics != nil {
			for _, name := range result.Metrics.CounterNames() {
				fmt.Fprintf(w, "  %s: %d\n", name, result.Metrics.Counters[name])
			}
		}
	}
	return nil
}

// WriteLines writes saved lines in the given format.
func WriteLines(w io.Writer, lines []string, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, map[string]interface{}{"lines": lines, "count": len(lines)})
	case FormatText:
		if len(lines) == 0 {
			fmt.Fprintln(w, "No saved lines.")
			return nil
		}
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "\n%s\n", target.CountLabel(len(lines)))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
