// Package sanitizer removes automation sections from a native project
// descriptor and checks that no forbidden keyword survives.
//
// It works on lines only. The descriptor syntax is never parsed: a section is
// whatever lies between a line containing the start marker and a line
// containing the end marker, markers included.
package sanitizer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/corey/moebuild/internal/ports"
)

// Markers and keyword for Xcode shell-script build phases.
const (
	DefaultSectionStart = "Begin PBXShellScriptBuildPhase section"
	DefaultSectionEnd   = "End PBXShellScriptBuildPhase section"
	DefaultKeyword      = "ShellScript"
)

// maxLineSize bounds a single descriptor line. Generated descriptors can
// carry whole scripts on one line.
const maxLineSize = 16 << 20

// Scope selects which content the forbidden-keyword scan guards.
type Scope string

const (
	// ScopeRemainder scans the descriptor after stripping, so only content
	// outside the named section is guarded.
	ScopeRemainder Scope = "remainder"

	// ScopeOriginal scans the descriptor before stripping. A match aborts
	// without modifying the file.
	ScopeOriginal Scope = "original"
)

// ParseScope validates a scope name. Empty means ScopeRemainder.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeRemainder:
		return ScopeRemainder, nil
	case ScopeOriginal:
		return ScopeOriginal, nil
	}
	return "", fmt.Errorf("unknown scan scope %q (want %s or %s)", s, ScopeRemainder, ScopeOriginal)
}

// ErrForbidden is returned by Sanitize when a forbidden keyword is found.
var ErrForbidden = errors.New("forbidden keyword in project descriptor")

// Finding locates the first line that matched a forbidden keyword.
type Finding struct {
	Line    int // 1-based
	Keyword string
	Text    string
}

// Strip deletes every line from a line containing start through the next
// line containing end, both included, and rewrites the file with "\n" line
// terminators. A start marker with no end marker drops the rest of the file.
// Returns the number of lines removed.
func Strip(path, start, end string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	lines, err := readLines(path)
	if err != nil {
		return 0, err
	}

	kept := make([]string, 0, len(lines))
	inside := false
	for _, line := range lines {
		switch {
		case strings.Contains(line, start):
			inside = true
		case strings.Contains(line, end):
			inside = false
		case inside:
		default:
			kept = append(kept, line)
		}
	}

	var buf bytes.Buffer
	for _, line := range kept {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return 0, err
	}
	return len(lines) - len(kept), nil
}

// Detect reports whether any line of the file contains a keyword known to m.
// Scanning stops at the first matching line.
func Detect(path string, m ports.PatternMatcher) (bool, error) {
	f, err := Find(path, m)
	return f != nil, err
}

// Find returns the first line containing a keyword known to m, or nil.
func Find(path string, m ports.PatternMatcher) (*Finding, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sc := newScanner(file)
	n := 0
	for sc.Scan() {
		n++
		if kws := m.Match(sc.Text()); len(kws) > 0 {
			return &Finding{Line: n, Keyword: kws[0], Text: strings.TrimSpace(sc.Text())}, nil
		}
	}
	return nil, sc.Err()
}

// Sanitizer strips the automation section from a descriptor and enforces
// the forbidden-keyword check according to its scope.
type Sanitizer struct {
	Start   string
	End     string
	Matcher ports.PatternMatcher
	Scope   Scope
}

// Result describes a successful sanitize.
type Result struct {
	Removed int // lines removed by Strip
}

// Sanitize strips the section and scans the descriptor. A surviving keyword
// yields an error wrapping ErrForbidden that names the offending line.
func (s *Sanitizer) Sanitize(path string) (*Result, error) {
	if s.Scope == ScopeOriginal {
		if err := s.check(path); err != nil {
			return nil, err
		}
	}

	removed, err := Strip(path, s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("strip %s: %w", path, err)
	}

	if s.Scope != ScopeOriginal {
		if err := s.check(path); err != nil {
			return nil, err
		}
	}
	return &Result{Removed: removed}, nil
}

func (s *Sanitizer) check(path string) error {
	f, err := Find(path, s.Matcher)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	if f != nil {
		return fmt.Errorf("%w: %q at %s:%d: %s", ErrForbidden, f.Keyword, path, f.Line, f.Text)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	sc := newScanner(file)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func newScanner(f *os.File) *bufio.Scanner {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}
