package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/course-adder/internal/match"
)

// fakeSource serves fixed rows per course and records search order.
type fakeSource struct {
	rows     map[string][]match.Candidate[string]
	control  string
	errs     map[string]error
	searched []string
}

func (f *fakeSource) Search(ctx context.Context, course string) (Results, error) {
	f.searched = append(f.searched, course)
	if err := f.errs[course]; err != nil {
		return Results{}, err
	}
	return Results{Rows: f.rows[course], Control: f.control}, nil
}

type fakeSink struct {
	selected []Selection
	err      error
}

func (f *fakeSink) Select(ctx context.Context, sel Selection) error {
	if f.err != nil {
		return f.err
	}
	f.selected = append(f.selected, sel)
	return nil
}

func newTestRunner(source LabelSource, sink ActionSink) (*Runner, *[]time.Duration) {
	r := New(source, sink, Options{ActionDelay: 400 * time.Millisecond, LineDelay: 300 * time.Millisecond}, nil)
	var pauses []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return ctx.Err()
	}
	return r, &pauses
}

func widgetRows() map[string][]match.Candidate[string] {
	return map[string][]match.Candidate[string]{
		"CSE221": {
			{Label: "CSE221 Algorithms Sec-08B", Handle: "cse221-08b"},
			{Label: "CSE221 Algorithms Sec-09", Handle: "cse221-09"},
			{Label: "CSE221 Algorithms Sec-09B", Handle: "cse221-09b"},
		},
		"MATH101": {
			{Label: "MATH101 Calculus I Sec-03", Handle: "math101-03"},
			{Label: "MATH101 Calculus I Sec-01", Handle: "math101-01"},
		},
	}
}

func TestRun(t *testing.T) {
	source := &fakeSource{rows: widgetRows(), control: ">>"}
	sink := &fakeSink{}
	r, pauses := newTestRunner(source, sink)

	lines := []string{"CSE221: Sec-09B", "???", "cse221 sec-09", "MATH101", "CSE221 sec 07"}
	report, err := r.Run(context.Background(), lines)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStatus := []Status{StatusAdded, StatusSkipped, StatusAdded, StatusAdded, StatusNotFound}
	if len(report.Outcomes) != len(wantStatus) {
		t.Fatalf("got %d outcomes, want %d", len(report.Outcomes), len(wantStatus))
	}
	for i, want := range wantStatus {
		if got := report.Outcomes[i].Status; got != want {
			t.Errorf("outcome[%d] (%q) status = %q, want %q", i, lines[i], got, want)
		}
	}

	wantHandles := []string{"cse221-09b", "cse221-09", "math101-03"}
	if len(sink.selected) != len(wantHandles) {
		t.Fatalf("sink got %d selections, want %d", len(sink.selected), len(wantHandles))
	}
	for i, want := range wantHandles {
		if got := sink.selected[i].Row.Handle; got != want {
			t.Errorf("selection[%d] = %q, want %q", i, got, want)
		}
		if sink.selected[i].Control != ">>" {
			t.Errorf("selection[%d] control = %q, want >>", i, sink.selected[i].Control)
		}
	}

	// Searches happen in input order, and never for the unparsable line.
	if got := strings.Join(source.searched, ","); got != "CSE221,CSE221,MATH101,CSE221" {
		t.Errorf("search order = %s", got)
	}

	if report.Added != 3 || report.NotFound != 1 || report.Skipped != 1 || report.Errors != 0 {
		t.Errorf("counts = added %d, not_found %d, skipped %d, errors %d",
			report.Added, report.NotFound, report.Skipped, report.Errors)
	}
	if report.Complete() {
		t.Error("Complete() = true, want false")
	}
	if report.RunID == "" {
		t.Error("RunID is empty")
	}

	// 3 action pauses, and line pauses after every non-skipped, non-final line.
	var actions, between int
	for _, d := range *pauses {
		switch d {
		case 400 * time.Millisecond:
			actions++
		case 300 * time.Millisecond:
			between++
		}
	}
	if actions != 3 || between != 3 {
		t.Errorf("pauses = %d action, %d between lines; want 3 and 3", actions, between)
	}

	snap := r.Metrics().Snapshot()
	if snap.Counters["match.added"] != 3 || snap.Counters["lines.skipped"] != 1 {
		t.Errorf("counters = %v", snap.Counters)
	}
}

func TestRun_ErrorsDoNotStopBatch(t *testing.T) {
	source := &fakeSource{
		rows:    widgetRows(),
		control: ">",
		errs:    map[string]error{"CSE221": errors.New("timeout")},
	}
	sink := &fakeSink{}
	r, _ := newTestRunner(source, sink)

	report, err := r.Run(context.Background(), []string{"CSE221 9", "MATH101"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Outcomes[0].Status != StatusError {
		t.Errorf("first status = %q, want error", report.Outcomes[0].Status)
	}
	if !strings.Contains(report.Outcomes[0].Error, "timeout") {
		t.Errorf("first error = %q, should mention timeout", report.Outcomes[0].Error)
	}
	if report.Outcomes[1].Status != StatusAdded {
		t.Errorf("second status = %q, want added", report.Outcomes[1].Status)
	}
}

func TestRun_NoAddControl(t *testing.T) {
	source := &fakeSource{rows: widgetRows()}
	r, _ := newTestRunner(source, &fakeSink{})

	report, err := r.Run(context.Background(), []string{"MATH101"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Outcomes[0].Status != StatusError || report.Outcomes[0].Error != ErrNoAddControl.Error() {
		t.Errorf("outcome = %+v, want add control error", report.Outcomes[0])
	}
}

func TestRun_SinkError(t *testing.T) {
	source := &fakeSource{rows: widgetRows(), control: ">>"}
	r, _ := newTestRunner(source, &fakeSink{err: errors.New("click failed")})

	report, _ := r.Run(context.Background(), []string{"MATH101"})
	if report.Errors != 1 {
		t.Errorf("Errors = %d, want 1", report.Errors)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &fakeSource{rows: widgetRows(), control: ">>"}
	sink := &fakeSink{}
	r, _ := newTestRunner(source, sink)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if d == 300*time.Millisecond {
			cancel()
		}
		return ctx.Err()
	}

	report, err := r.Run(ctx, []string{"MATH101", "CSE221 9", "CSE221 9B"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(report.Outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1 before cancellation", len(report.Outcomes))
	}
}

func TestRun_AllAdded(t *testing.T) {
	r, _ := newTestRunner(&fakeSource{rows: widgetRows(), control: ">>"}, &fakeSink{})

	report, err := r.Run(context.Background(), []string{"MATH101", "CSE221 9B"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Complete() {
		t.Errorf("Complete() = false, outcomes %+v", report.Outcomes)
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("sleepContext(0) = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext(cancelled) = %v, want context.Canceled", err)
	}
}
