package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pfrederiksen/course-adder/internal/logger"
	"github.com/pfrederiksen/course-adder/internal/match"
	"github.com/pfrederiksen/course-adder/internal/target"
)

// ErrNoAddControl is reported for a line when the page has no usable
// "move to selected" control.
var ErrNoAddControl = errors.New("add control not found")

// Results is one batch of visible rows returned by a search.
type Results struct {
	Rows []match.Candidate[string]
	// Control is the label of the control that moves the selected row,
	// e.g. ">>". Empty when the page has none.
	Control string
}

// LabelSource searches the widget for a course and returns the visible rows.
type LabelSource interface {
	Search(ctx context.Context, course string) (Results, error)
}

// Selection is one row chosen for a target.
type Selection struct {
	Line    string                  `json:"line"`
	Target  target.Target           `json:"target"`
	Row     match.Candidate[string] `json:"row"`
	Control string                  `json:"control"`
}

// ActionSink performs (or records) the select-and-add action for a row.
type ActionSink interface {
	Select(ctx context.Context, sel Selection) error
}

// Status is the outcome of one line.
type Status string

const (
	StatusAdded    Status = "added"
	StatusNotFound Status = "not_found"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
)

// Outcome records what happened to one input line.
type Outcome struct {
	Line       string         `json:"line"`
	Target     *target.Target `json:"target,omitempty"`
	Status     Status         `json:"status"`
	Handle     string         `json:"handle,omitempty"`
	Label      string         `json:"label,omitempty"`
	Error      string         `json:"error,omitempty"`
	Candidates int            `json:"candidates"`
}

// Report summarizes a run.
type Report struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
	Added      int       `json:"added"`
	NotFound   int       `json:"not_found"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
}

// Complete reports whether every line was added.
func (r *Report) Complete() bool {
	return r.Added == len(r.Outcomes)
}

func (r *Report) add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusAdded:
		r.Added++
	case StatusNotFound:
		r.NotFound++
	case StatusSkipped:
		r.Skipped++
	case StatusError:
		r.Errors++
	}
}

// Options tunes the pauses of a run.
type Options struct {
	// ActionDelay is the pause after an add action.
	ActionDelay time.Duration
	// LineDelay is the pause between lines.
	LineDelay time.Duration
}

// Runner processes request lines serially.
type Runner struct {
	source  LabelSource
	sink    ActionSink
	opts    Options
	log     *logger.Logger
	metrics *logger.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// New creates a Runner. A nil log discards log output.
func New(source LabelSource, sink ActionSink, opts Options, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		source:  source,
		sink:    sink,
		opts:    opts,
		log:     log,
		metrics: logger.NewMetrics(),
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// Metrics returns the counters and timings collected by this runner.
func (r *Runner) Metrics() *logger.Metrics {
	return r.metrics
}

// Run handles every line in order and returns the report. Per-line failures
// are recorded in the report; only context cancellation stops the run early,
// in which case the partial report is returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, lines []string) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: r.now().UTC(),
		Outcomes:  make([]Outcome, 0, len(lines)),
	}
	log := r.log.With(logger.Fields{"run_id": report.RunID})
	log.Info("Starting run", logger.Fields{"lines": len(lines)})

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = r.now().UTC()
			return report, err
		}

		outcome := r.processLine(ctx, log, line)
		report.add(outcome)

		if outcome.Status == StatusSkipped || i == len(lines)-1 {
			continue
		}
		if err := r.sleep(ctx, r.opts.LineDelay); err != nil {
			report.FinishedAt = r.now().UTC()
			return report, err
		}
	}

	report.FinishedAt = r.now().UTC()
	log.Info("Run finished", logger.Fields{
		"added":     report.Added,
		"not_found": report.NotFound,
		"skipped":   report.Skipped,
		"errors":    report.Errors,
	})
	return report, nil
}

func (r *Runner) processLine(ctx context.Context, log *logger.Logger, line string) Outcome {
	t, ok := target.Parse(line)
	if !ok {
		log.Warn("Skipped invalid line", logger.Fields{"line": line})
		r.metrics.IncrCounter("lines.skipped")
		return Outcome{Line: line, Status: StatusSkipped}
	}

	out := Outcome{Line: line, Target: &t}
	log.Info("Searching", logger.Fields{"course": t.Course, "section": t.Section})

	start := r.now()
	results, err := r.source.Search(ctx, t.Course)
	r.metrics.RecordTiming("search.duration", r.now().Sub(start))
	if err != nil {
		return r.fail(log, out, fmt.Errorf("searching %s: %w", t.Course, err))
	}
	out.Candidates = len(results.Rows)

	if results.Control == "" {
		return r.fail(log, out, ErrNoAddControl)
	}

	best, found := match.SelectBest(t, results.Rows)
	if !found {
		log.Info("Not found", logger.Fields{"target": t.String(), "candidates": len(results.Rows)})
		r.metrics.IncrCounter("match.not_found")
		out.Status = StatusNotFound
		return out
	}

	sel := Selection{Line: line, Target: t, Row: best, Control: results.Control}
	if err := r.sink.Select(ctx, sel); err != nil {
		return r.fail(log, out, fmt.Errorf("selecting %s: %w", best.Handle, err))
	}
	if err := r.sleep(ctx, r.opts.ActionDelay); err != nil {
		return r.fail(log, out, err)
	}

	log.Info("Added", logger.Fields{"target": t.String(), "row": best.Label, "handle": best.Handle})
	r.metrics.IncrCounter("match.added")
	out.Status = StatusAdded
	out.Handle = best.Handle
	out.Label = best.Label
	return out
}

func (r *Runner) fail(log *logger.Logger, out Outcome, err error) Outcome {
	log.Error("Line failed", logger.Fields{"line": out.Line}, err)
	r.metrics.IncrCounter("lines.error")
	out.Status = StatusError
	out.Error = err.Error()
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
