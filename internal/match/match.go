package match

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/course-adder/internal/normalize"
	"github.com/pfrederiksen/course-adder/internal/target"
)

// Score weights.
const (
	CourseScore  = 10
	KeywordScore = 5
	BareScore    = 3
)

// Candidate pairs a visible row label with the handle the caller needs to act
// on that row.
type Candidate[H any] struct {
	Label  string `json:"label"`
	Handle H      `json:"handle"`
}

// Matcher evaluates row labels against a single target. The section patterns
// are compiled once per target.
type Matcher struct {
	target target.Target
	rules  *sectionRules
}

// New creates a Matcher for t.
func New(t target.Target) *Matcher {
	m := &Matcher{target: t}
	if t.HasSection() {
		rules := compileRules(t.Section)
		m.rules = &rules
	}
	return m
}

func (m *Matcher) hasCourse(label string) bool {
	return strings.Contains(normalize.StripNonWord(label), m.target.Course)
}

// Acceptable reports whether label contains the course code and, when a
// section was requested, the section in keyword, separator or bare form.
func (m *Matcher) Acceptable(label string) bool {
	if m.target.Course == "" || !m.hasCourse(label) {
		return false
	}
	if m.rules == nil {
		return true
	}
	return m.rules.any(normalize.NormalizeToken(label))
}

// Score ranks a label: +10 for the course, then +5 for a keyword section or
// +3 for a bare section.
func (m *Matcher) Score(label string) int {
	score := 0
	if m.target.Course != "" && m.hasCourse(label) {
		score += CourseScore
	}
	if m.rules != nil {
		text := normalize.NormalizeToken(label)
		switch {
		case m.rules.keyword.MatchString(text):
			score += KeywordScore
		case m.rules.bare.MatchString(text):
			score += BareScore
		}
	}
	return score
}

// IsAcceptable is a one-shot form of Matcher.Acceptable.
func IsAcceptable(label string, t target.Target) bool {
	return New(t).Acceptable(label)
}

// Score is a one-shot form of Matcher.Score.
func Score(label string, t target.Target) int {
	return New(t).Score(label)
}

// Rank returns a copy of candidates ordered by descending score. Rows with
// equal scores keep their original (visible) order.
func Rank[H any](t target.Target, candidates []Candidate[H]) []Candidate[H] {
	m := New(t)

	scores := make([]int, len(candidates))
	idx := make([]int, len(candidates))
	for i, c := range candidates {
		scores[i] = m.Score(c.Label)
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranked := make([]Candidate[H], len(candidates))
	for i, j := range idx {
		ranked[i] = candidates[j]
	}
	return ranked
}

// SelectBest returns the first acceptable candidate in ranked order. The
// boolean is false when no row satisfies the target, which callers report
// as "not found".
func SelectBest[H any](t target.Target, candidates []Candidate[H]) (Candidate[H], bool) {
	m := New(t)
	for _, c := range Rank(t, candidates) {
		if m.Acceptable(c.Label) {
			return c, true
		}
	}
	var zero Candidate[H]
	return zero, false
}
