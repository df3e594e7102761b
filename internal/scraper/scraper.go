package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/course-adder/internal/config"
	"github.com/pfrederiksen/course-adder/internal/match"
	"github.com/pfrederiksen/course-adder/internal/normalize"
)

// ErrNoRows means no visible row matched the searched course before the wait
// timeout.
var ErrNoRows = errors.New("no visible rows")

// ErrNoSearchInput means the page has no search box, so it is not the
// registration widget (or the selector is stale).
var ErrNoSearchInput = errors.New("search input not found")

// handleAttrs are tried in order to identify a row.
var handleAttrs = []string{"data-value", "data-id", "id"}

// Page is a parsed registration page.
type Page struct {
	doc       *goquery.Document
	selectors config.Selectors
}

// ParsePage parses HTML from r.
func ParsePage(r io.Reader, selectors config.Selectors) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Page{doc: doc, selectors: selectors}, nil
}

// HasSearchInput reports whether the widget's search box is present.
func (p *Page) HasSearchInput() bool {
	if p.selectors.SearchInput == "" {
		return false
	}
	return p.doc.Find(p.selectors.SearchInput).Length() > 0
}

// Rows returns the visible rows whose text contains query once both are
// stripped of case, spacing and punctuation. An empty query returns every
// visible row. Rows are in document order and unique by handle.
func (p *Page) Rows(query string) []match.Candidate[string] {
	needle := normalize.StripNonWord(query)
	rows := make([]match.Candidate[string], 0)
	seen := make(map[string]bool)

	p.doc.Find(p.selectors.ResultRows).Each(func(i int, sel *goquery.Selection) {
		if !isVisible(sel) {
			return
		}

		label := strings.Join(strings.Fields(sel.Text()), " ")
		if label == "" {
			return
		}
		if needle != "" && !strings.Contains(normalize.StripNonWord(label), needle) {
			return
		}

		handle := rowHandle(sel, i)
		if seen[handle] {
			return
		}
		seen[handle] = true

		rows = append(rows, match.Candidate[string]{Label: label, Handle: handle})
	})

	return rows
}

// AddButton returns the label of the control that moves the selected row
// across: a visible ">>" first, then ">", then the first visible button.
// It returns "" when the page has no visible button.
func (p *Page) AddButton() string {
	labels := make([]string, 0)
	p.doc.Find(p.selectors.CentralButtons).Each(func(_ int, sel *goquery.Selection) {
		if isVisible(sel) {
			labels = append(labels, strings.TrimSpace(sel.Text()))
		}
	})

	for _, preferred := range []string{">>", ">"} {
		for _, l := range labels {
			if l == preferred {
				return l
			}
		}
	}
	if len(labels) > 0 {
		if labels[0] == "" {
			return "button"
		}
		return labels[0]
	}
	return ""
}

func rowHandle(sel *goquery.Selection, index int) string {
	for _, attr := range handleAttrs {
		if v, ok := sel.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return "row-" + strconv.Itoa(index)
}

// isVisible approximates computed visibility from markup: the element and
// its ancestors must not be hidden by attribute or inline style.
func isVisible(sel *goquery.Selection) bool {
	hidden := false
	sel.AddSelection(sel.Parents()).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if _, ok := s.Attr("hidden"); ok {
			hidden = true
		} else if v, _ := s.Attr("aria-hidden"); v == "true" {
			hidden = true
		} else if style, ok := s.Attr("style"); ok {
			compact := strings.ToLower(strings.Join(strings.Fields(style), ""))
			hidden = strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden")
		}
		return !hidden
	})
	return !hidden
}

// FileLoader returns a Loader that parses a saved page once and serves it for
// every search.
func FileLoader(path string, selectors config.Selectors) (Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}
	defer f.Close()

	page, err := ParsePage(f, selectors)
	if err != nil {
		return nil, err
	}
	return func(context.Context, string) (*Page, error) { return page, nil }, nil
}

// Scraper fetches the registration page over HTTP.
type Scraper struct {
	client      *http.Client
	url         string
	userAgent   string
	searchParam string
	selectors   config.Selectors
}

// New creates a Scraper from cfg.
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		url:         cfg.URL,
		userAgent:   cfg.UserAgent,
		searchParam: cfg.SearchParam,
		selectors:   cfg.Selectors,
	}
}

// Fetch downloads and parses the page. When a search parameter is configured
// the course is passed to the server as that query parameter.
func (s *Scraper) Fetch(ctx context.Context, course string) (*Page, error) {
	pageURL, err := s.searchURL(course)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return ParsePage(resp.Body, s.selectors)
}

func (s *Scraper) searchURL(course string) (string, error) {
	if s.searchParam == "" || course == "" {
		return s.url, nil
	}
	u, err := url.Parse(s.url)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	q := u.Query()
	q.Set(s.searchParam, course)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
