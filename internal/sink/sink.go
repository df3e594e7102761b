package sink

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pfrederiksen/course-adder/internal/runner"
)

// DryRun prints the clicks that would be made without making them.
type DryRun struct {
	w     io.Writer
	count int
}

var _ runner.ActionSink = (*DryRun)(nil)

// NewDryRun creates a dry-run sink writing to w.
func NewDryRun(w io.Writer) *DryRun {
	return &DryRun{w: w}
}

// Select prints the row and control for sel.
func (d *DryRun) Select(_ context.Context, sel runner.Selection) error {
	d.count++
	_, err := fmt.Fprintf(d.w, "--- Selection %d ---\nTarget: %s\nRow:    %s [%s]\nPress:  %s\n\n",
		d.count, sel.Target, sel.Row.Label, sel.Row.Handle, sel.Control)
	return err
}

// Recorder keeps every selection in order.
type Recorder struct {
	mu         sync.Mutex
	selections []runner.Selection
}

var _ runner.ActionSink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Select records sel.
func (r *Recorder) Select(_ context.Context, sel runner.Selection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selections = append(r.selections, sel)
	return nil
}

// Selections returns a copy of the recorded selections.
func (r *Recorder) Selections() []runner.Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]runner.Selection, len(r.selections))
	copy(out, r.selections)
	return out
}

// Multi fans a selection out to several sinks in order, stopping at the first
// error.
type Multi []runner.ActionSink

// Select calls every sink in m.
func (m Multi) Select(ctx context.Context, sel runner.Selection) error {
	for _, s := range m {
		if err := s.Select(ctx, sel); err != nil {
			return err
		}
	}
	return nil
}
