// Package ahocorasick implements ports.PatternMatcher on the
// petar-dambovaliev/aho-corasick automaton, so a descriptor line is checked
// against every forbidden keyword in a single pass.
package ahocorasick

import (
	"errors"
	"fmt"

	"github.com/corey/moebuild/internal/ports"
	aho "github.com/petar-dambovaliev/aho-corasick"
)

var _ ports.PatternMatcher = (*Matcher)(nil)

// ErrNoKeywords is returned when a keyword set is empty.
var ErrNoKeywords = errors.New("empty keyword set")

// Matcher finds forbidden keywords. The zero value matches nothing; use
// NewMatcher.
type Matcher struct {
	automaton aho.AhoCorasick
	keywords  []string
}

// NewMatcher compiles a case-sensitive matcher for keywords.
func NewMatcher(keywords ...string) (*Matcher, error) {
	m := &Matcher{}
	if err := m.Rebuild(keywords); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebuild swaps in a new keyword set. On error the previous set stays.
func (m *Matcher) Rebuild(keywords []string) error {
	if len(keywords) == 0 {
		return ErrNoKeywords
	}
	for i, kw := range keywords {
		if kw == "" {
			return fmt.Errorf("keyword %d is empty", i)
		}
	}

	kws := append([]string(nil), keywords...)
	// Where keywords overlap, the longest one at a position is reported.
	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		MatchKind: aho.LeftMostLongestMatch,
		DFA:       true,
	})
	m.automaton = builder.Build(kws)
	m.keywords = kws
	return nil
}

// Match returns the keywords present in content in keyword-set order, or
// nil when none is.
func (m *Matcher) Match(content string) []string {
	if len(m.keywords) == 0 || content == "" {
		return nil
	}
	found := m.automaton.FindAll(content)
	if len(found) == 0 {
		return nil
	}

	hit := make([]bool, len(m.keywords))
	for _, f := range found {
		hit[f.Pattern()] = true
	}
	var out []string
	for i, ok := range hit {
		if ok {
			out = append(out, m.keywords[i])
		}
	}
	return out
}

// Keywords returns a copy of the compiled keyword set.
func (m *Matcher) Keywords() []string {
	return append([]string(nil), m.keywords...)
}
