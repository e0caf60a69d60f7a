package schema

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// trimNamePart drops surrounding punctuation from one part of a person's name.
// Hyphens, apostrophes and inner periods survive; a trailing period does not.
func trimNamePart(part string) string {
	keep := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '\'' || r == '.'
	}
	trimmed := strings.TrimFunc(part, func(r rune) bool { return !keep(r) })
	return strings.TrimSuffix(trimmed, ".")
}

// AbbreviateName formats "Samuel Huang" to "Samuel H".
// Single-word names and bot accounts like "dependabot[bot]" are returned unchanged.
func AbbreviateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if strings.Contains(trimmed, "[bot]") {
		return strings.Join(strings.Fields(trimmed), " ")
	}

	var parts []string
	for _, p := range strings.Fields(strings.Trim(trimmed, "()\"'`")) {
		if cp := trimNamePart(p); cp != "" {
			parts = append(parts, cp)
		}
	}

	switch len(parts) {
	case 0:
		return trimmed
	case 1:
		return parts[0]
	}
	last := []rune(parts[len(parts)-1])
	return parts[0] + " " + string(last[0])
}

// UniqueAuthors returns the distinct commit authors, sorted.
func UniqueAuthors(commits []Commit) []string {
	authors := make([]string, 0, len(commits))
	for _, c := range commits {
		if c.Author != "" {
			authors = append(authors, c.Author)
		}
	}
	slices.Sort(authors)
	return slices.Compact(authors)
}

// FormatAuthors renders authors as "Samuel H, Jane D". When there are more
// than max authors, the rest are collapsed into a "+N" suffix. A max of zero
// or less shows every author.
func FormatAuthors(authors []string, max int) string {
	shown := authors
	if max > 0 && len(authors) > max {
		shown = authors[:max]
	}
	abbreviated := make([]string, len(shown))
	for i, a := range shown {
		abbreviated[i] = AbbreviateName(a)
	}
	out := strings.Join(abbreviated, ", ")
	if extra := len(authors) - len(shown); extra > 0 {
		out += fmt.Sprintf(" +%d", extra)
	}
	return out
}

// WithoutCommits returns a copy of the result whose sessions carry no commit lists.
// The receiver is left untouched.
func (r *SessionDetectionResult) WithoutCommits() *SessionDetectionResult {
	if r == nil {
		return nil
	}
	trimmed := *r
	trimmed.Sessions = make([]Session, len(r.Sessions))
	for i, s := range r.Sessions {
		s.Commits = nil
		trimmed.Sessions[i] = s
	}
	return &trimmed
}
