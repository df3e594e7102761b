package sink

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pfrederiksen/course-adder/internal/match"
	"github.com/pfrederiksen/course-adder/internal/runner"
	"github.com/pfrederiksen/course-adder/internal/target"
)

func testSelection(handle string) runner.Selection {
	return runner.Selection{
		Line:    "CSE221: Sec-09B",
		Target:  target.Target{Course: "CSE221", Section: "09B"},
		Row:     match.Candidate[string]{Label: "CSE221 - Algorithms - Sec: 09B", Handle: handle},
		Control: ">>",
	}
}

func TestDryRun(t *testing.T) {
	var buf bytes.Buffer
	d := NewDryRun(&buf)

	if err := d.Select(context.Background(), testSelection("102")); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if err := d.Select(context.Background(), testSelection("103")); err != nil {
		t.Fatalf("Select() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Selection 1", "Selection 2", "CSE221 sec 09B", "[102]", "Press:  >>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_ = r.Select(context.Background(), testSelection("a"))
	_ = r.Select(context.Background(), testSelection("b"))

	got := r.Selections()
	if len(got) != 2 || got[0].Row.Handle != "a" || got[1].Row.Handle != "b" {
		t.Errorf("Selections() = %+v", got)
	}

	got[0].Row.Handle = "changed"
	if r.Selections()[0].Row.Handle != "a" {
		t.Error("Selections() should return a copy")
	}
}

type failingSink struct{}

func (failingSink) Select(context.Context, runner.Selection) error {
	return errors.New("boom")
}

func TestMulti(t *testing.T) {
	first, last := NewRecorder(), NewRecorder()

	if err := (Multi{first, last}).Select(context.Background(), testSelection("a")); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(first.Selections()) != 1 || len(last.Selections()) != 1 {
		t.Error("Multi did not reach every sink")
	}

	stopped := NewRecorder()
	err := (Multi{failingSink{}, stopped}).Select(context.Background(), testSelection("a"))
	if err == nil {
		t.Error("Multi should return the first error")
	}
	if len(stopped.Selections()) != 0 {
		t.Error("Multi should stop at the first error")
	}
}
