package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/course-adder/internal/config"
	"github.com/pfrederiksen/course-adder/internal/runner"
)

// Loader produces the current page for a course search.
type Loader func(ctx context.Context, course string) (*Page, error)

// Source is a runner.LabelSource backed by a Loader.
type Source struct {
	load   Loader
	wait   time.Duration
	poll   time.Duration
	settle time.Duration
}

var _ runner.LabelSource = (*Source)(nil)

// NewSource creates a Source. A zero wait timeout makes every search a single
// look at the page, which is what a saved page needs.
func NewSource(load Loader, wait, poll, settle time.Duration) *Source {
	if poll <= 0 {
		poll = config.Default().PollInterval
	}
	return &Source{load: load, wait: wait, poll: poll, settle: settle}
}

// Search loads the page until visible rows for course show up, then waits
// for the list to settle. Load failures and a missing search box end the
// search immediately. An empty search input selector skips the search box
// check.
func (s *Source) Search(ctx context.Context, course string) (runner.Results, error) {
	var results runner.Results

	attempts := uint64(s.wait / s.poll)
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.poll), attempts), ctx)

	err := backoff.Retry(func() error {
		page, err := s.load(ctx, course)
		if err != nil {
			return backoff.Permanent(err)
		}
		if page.selectors.SearchInput != "" && !page.HasSearchInput() {
			return backoff.Permanent(ErrNoSearchInput)
		}
		rows := page.Rows(course)
		if len(rows) == 0 {
			return ErrNoRows
		}
		results = runner.Results{Rows: rows, Control: page.AddButton()}
		return nil
	}, b)
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return runner.Results{}, fmt.Errorf("%w for %s after %s", ErrNoRows, course, s.wait)
		}
		return runner.Results{}, err
	}

	if s.settle > 0 {
		timer := time.NewTimer(s.settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return runner.Results{}, ctx.Err()
		case <-timer.C:
		}
	}

	return results, nil
}
