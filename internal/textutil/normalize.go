// Package textutil normalizes titles and anchor texts for fuzzy comparison
// and derives filesystem-safe names from them.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthesizedYear = regexp.MustCompile(`\(\s*(?:19|20)\d{2}\s*\)`)
	nonAlphanumeric   = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// StripDiacritics removes combining marks, turning "Stáhnout" into "Stahnout".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize lowercases s, drops a parenthesized release year, strips
// diacritics and punctuation and collapses whitespace.
func Normalize(s string) string {
	s = parenthesizedYear.ReplaceAllString(s, " ")
	s = strings.ToLower(StripDiacritics(s))
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Slug turns s into a lowercase dash-separated name usable as a filename stem.
func Slug(s string) string {
	n := Normalize(s)
	if n == "" {
		return "subtitle"
	}
	return strings.ReplaceAll(n, " ", "-")
}
