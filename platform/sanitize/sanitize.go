// Package sanitize cleans free text typed into the chat widget and lead forms
// before it is forwarded to the remote API.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	// Only a letter, '/' or '!' after '<' opens a tag, so "entre <200 y 300>" is text.
	tagPattern   = regexp.MustCompile(`<!--[\s\S]*?-->|<[!/]?[A-Za-z][A-Za-z0-9:-]*(?:\s[^<>]*)?/?>`)
	spacePattern = regexp.MustCompile(`[ \t\f\v]+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
)

// StripHTML drops tags, decodes entities and drops any tags the decoding
// revealed. Text without markup or entities is returned untouched.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	out := tagPattern.ReplaceAllString(s, "")
	out = html.UnescapeString(out)
	return tagPattern.ReplaceAllString(out, "")
}

// Text strips markup and collapses runs of spaces. Single line breaks survive
// so multi-line notes keep their shape.
func Text(s string) string {
	out := StripHTML(strings.ReplaceAll(s, "\r\n", "\n"))
	out = spacePattern.ReplaceAllString(out, " ")
	out = blankLines.ReplaceAllString(out, "\n\n")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := Text(*s)
	return &out
}
