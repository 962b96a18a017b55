// Package normalize canonicalizes statement row labels for matching. Every
// comparison in the engine happens on normalized text: registry loading
// normalizes patterns once, scoring normalizes labels once, so an ampersand
// or slash in vendor output can never silently break a pattern.
package normalize

import (
	"regexp"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9]+`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// stopWords are generic filler tokens carrying no metric identity. They are
// ignored by token-set scoring and define what "generic" means for
// single-token source protection.
var stopWords = map[string]struct{}{
	"total": {}, "reported": {}, "unit": {}, "curr": {}, "current": {},
	"non": {}, "noncurrent": {}, "other": {}, "others": {},
	"and": {}, "for": {}, "of": {}, "the": {},
}

// Label canonicalizes a raw label for comparison:
//  1. Lowercase and trim
//  2. Replace every run of non-alphanumeric characters (currency symbols,
//     punctuation, '&', ',', '(', ')', '-', '/') with a single space
//  3. Collapse repeated spaces and trim again
//
// The mapping is irreversible, so patterns must be written against their
// post-normalization form; the registry loader enforces that by normalizing
// pattern text with this same function.
func Label(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens splits an already-normalized label into its tokens.
func Tokens(norm string) []string {
	if norm == "" {
		return nil
	}
	return strings.Fields(norm)
}

// MeaningfulTokens returns the token set of a normalized label with stop
// words and 1-2 character fragments removed. Used by token-set scoring.
func MeaningfulTokens(norm string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tok := range Tokens(norm) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

// IsStopWord reports whether a token is a generic filler word.
func IsStopWord(tok string) bool {
	_, ok := stopWords[tok]
	return ok
}

// SingleToken reports whether a normalized label consists of at most one
// token. Combined with IsStopWord it identifies labels like a bare "total"
// that the mapper holds to a stricter confidence floor.
func SingleToken(norm string) bool {
	return len(Tokens(norm)) <= 1
}
