// Package normalize canonicalizes free-text participant names into a
// comparable form shared by every matching component.
//
// Conventions:
// - Functions here are total and pure: no I/O, no errors, any input accepted.
// - Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Annotations carried by scraped names: seed brackets "[3]", odds
	// suffixes glued onto brackets "[3]1.85", and parentheticals "(Q)".
	parenthetical  = regexp.MustCompile(`\([^)]*\)`)
	bracketed      = regexp.MustCompile(`\[[^\]]*\]`)
	disallowed     = regexp.MustCompile(`[^a-z0-9\s.]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)

	seedWithOdds  = regexp.MustCompile(`\[\d+\]\d+\.\d+`)
	seedOnly      = regexp.MustCompile(`\[\d+\]`)
	trailingFloat = regexp.MustCompile(`\d+\.\d+$`)
)

// stripMarks drops Unicode combining marks after canonical decomposition,
// turning "Dolgopolová" into "Dolgopolova".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes a raw participant name. Steps, in order:
// annotation stripping, diacritic stripping, lower-casing, reduction to
// [a-z0-9 .], whitespace collapsing, trimming. An empty or all-punctuation
// input normalizes to the empty string, which never matches anything.
func Normalize(raw string) string {
	s := parenthetical.ReplaceAllString(raw, "")
	s = bracketed.ReplaceAllString(s, "")

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = strings.ToLower(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Light is the looser normalization used for result resolution: it drops
// seed brackets, glued odds suffixes and parentheticals, then lower-cases
// and trims, but keeps diacritics and punctuation so that two observations
// of the same scrape source compare equal without fuzzy scoring.
func Light(raw string) string {
	s := seedWithOdds.ReplaceAllString(raw, "")
	s = seedOnly.ReplaceAllString(s, "")
	s = trailingFloat.ReplaceAllString(s, "")
	s = parenthetical.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}

// Tokens splits a normalized name into its whitespace-separated tokens.
func Tokens(s string) []string {
	return strings.Fields(s)
}
