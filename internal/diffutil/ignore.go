package diffutil

import (
	"regexp"
	"strings"
	"sync"
)

// IgnoreMatcher tests whether a dotted path should be excluded from a diff
// pass. Patterns use "*" as a single path-segment wildcard and "**" as a
// descendant wildcard, per the configured ignore-path glob semantics — not
// shell globbing and not gitignore semantics, so this is hand-rolled rather
// than pulled from a path-matching library (doublestar and similar packages
// define "*" differently across path separators than this format needs).
type IgnoreMatcher struct {
	mu       sync.Mutex
	patterns []string
	compiled map[string]*regexp.Regexp
}

// NewIgnoreMatcher builds a matcher from a set of dotted glob patterns.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	return &IgnoreMatcher{patterns: patterns, compiled: make(map[string]*regexp.Regexp, len(patterns))}
}

// Matches reports whether path (dotted, e.g. "headers.x-request-id" or
// "body.items.0.id") is covered by any configured ignore pattern. A pattern
// also covers every descendant of an exact prefix match, so "headers"
// ignores "headers.date" too.
func (m *IgnoreMatcher) Matches(path string) bool {
	for _, p := range m.patterns {
		if m.matchesOne(p, path) {
			return true
		}
	}
	return false
}

func (m *IgnoreMatcher) matchesOne(pattern, path string) bool {
	re := m.compile(pattern)
	if re.MatchString(path) {
		return true
	}
	// Prefix-descendant coverage: "headers" also ignores "headers.x".
	if strings.HasPrefix(path, pattern+".") && !strings.ContainsAny(pattern, "*") {
		return true
	}
	return false
}

func (m *IgnoreMatcher) compile(pattern string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()
	if re, ok := m.compiled[pattern]; ok {
		return re
	}
	re := regexp.MustCompile("^" + globToRegex(pattern) + "$")
	m.compiled[pattern] = re
	return re
}

// globToRegex converts a dotted glob ("headers.x-*", "body.**.id") into a
// full-match regular expression: "**" matches one or more path segments
// (between two dots it does not match zero segments, so "body.**.id" does
// not match "body.id"), a bare "*" matches exactly one segment's worth of
// non-dot characters.
func globToRegex(pattern string) string {
	var b strings.Builder
	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch {
		case c == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			b.WriteString(".*")
			i += 2
		case c == '*':
			b.WriteString("[^.]*")
			i++
		case strings.ContainsRune(`.+?()|[]{}^$\`, rune(c)):
			b.WriteByte('\\')
			b.WriteByte(c)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
