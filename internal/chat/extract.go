package chat

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// BoolMatcher decides whether a free-text answer means "yes".
type BoolMatcher interface {
	Match(text string) bool
}

// Boolean matcher modes.
const (
	MatchPrefix = "prefix"
	MatchToken  = "token"
)

// PrefixMatcher is true when the trimmed, lower-cased answer starts with any
// prefix. With the default "s" it accepts "sí" and "si" but also "sin".
type PrefixMatcher struct {
	Prefixes []string
}

// NewPrefixMatcher returns a matcher for prefixes, defaulting to "s".
func NewPrefixMatcher(prefixes ...string) PrefixMatcher {
	cleaned := normalizeList(prefixes, strings.ToLower)
	if len(cleaned) == 0 {
		cleaned = []string{"s"}
	}
	return PrefixMatcher{Prefixes: cleaned}
}

func (m PrefixMatcher) Match(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, p := range m.Prefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// TokenMatcher compares the first word, accent-folded, against a token set.
type TokenMatcher struct {
	tokens map[string]struct{}
}

var defaultAffirmatives = []string{"si", "s", "yes", "y", "claro", "ok", "dale", "afirmativo", "correcto", "obvio", "sip"}

// NewTokenMatcher returns a matcher for tokens, defaulting to common Spanish
// and English affirmatives.
func NewTokenMatcher(tokens ...string) TokenMatcher {
	cleaned := normalizeList(tokens, foldWord)
	if len(cleaned) == 0 {
		cleaned = normalizeList(defaultAffirmatives, foldWord)
	}
	set := make(map[string]struct{}, len(cleaned))
	for _, t := range cleaned {
		set[t] = struct{}{}
	}
	return TokenMatcher{tokens: set}
}

func (m TokenMatcher) Match(text string) bool {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return false
	}
	_, ok := m.tokens[foldWord(words[0])]
	return ok
}

// NewBoolMatcher builds the matcher for mode. Unknown modes use prefix matching.
func NewBoolMatcher(mode string, affirmatives []string) BoolMatcher {
	if strings.EqualFold(mode, MatchToken) {
		return NewTokenMatcher(affirmatives...)
	}
	return NewPrefixMatcher(affirmatives...)
}

// foldWord lower-cases and strips combining marks ("Sí" -> "si").
func foldWord(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return strings.ToLower(folded)
}

func normalizeList(values []string, fn func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := fn(strings.TrimSpace(v)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// extractInteger keeps only ASCII digits and parses them.
// ok is false when nothing usable remains.
func extractInteger(text string) (int64, bool) {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// extract applies the step's extractor to text. ok=false leaves the
// preference untouched.
func extract(step Step, text string, matcher BoolMatcher) (any, bool) {
	switch step.Kind {
	case KindInteger:
		return extractInteger(text)
	case KindBoolean:
		return matcher.Match(text), true
	default:
		return strings.TrimSpace(text), true
	}
}
