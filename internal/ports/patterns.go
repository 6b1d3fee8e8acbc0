package ports

// PatternMatcher finds keywords in content using multi-pattern matching (Aho-Corasick).
// A single pass over the content finds all matching keywords simultaneously,
// regardless of how many keywords are in the set.
//
// The sanitizer uses it to look for forbidden keywords in a project descriptor,
// one line at a time.
type PatternMatcher interface {
	// Match returns the distinct keywords found in content, or nil if none
	// match. Matching is case-sensitive.
	Match(content string) []string

	// Rebuild replaces the entire keyword set and reconstructs the automaton.
	// Returns an error if the set is empty or contains an empty keyword.
	Rebuild(keywords []string) error
}
