// Package title implements canonicalization and matching of free-text work titles.
//
// Matching is deliberately strict: two titles denote the same work only when
// their normalized forms are equal or one contains the other. Catalog titles
// are often subtitled ("Title: Subtitle") while page-scraped titles are
// truncated, so substring containment catches both directions. Edit-distance
// tolerance is not used for the final verdict; in this domain a false
// positive (wrong film) costs far more than a false negative (safe no-op).
package title

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize returns the canonical comparison form of a title:
// lowercased, with "ё" folded to "е", internal whitespace collapsed and trimmed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Match reports whether two titles denote the same work.
// True iff the normalized forms are equal or one is a substring of the other.
func Match(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// Patterns stripped from display titles before they are used as search keywords.
// Search endpoints match on the base work title, not on display variants.
var (
	yearSuffix      = regexp.MustCompile(`\s*\((19|20)\d{2}\)\s*$`)
	subtitleTail    = regexp.MustCompile(`\s+[—–-]\s+.*$`)
	partQualifier   = regexp.MustCompile(`(?i)\s*\((?:part|часть)\s+\d+\)\s*$`)
	seasonQualifier = regexp.MustCompile(`(?i)\s*\((?:season\s+\d+|\d+\s+сезон)\)\s*$`)
)

// SearchBase strips year-in-parentheses suffixes, trailing dash-separated
// subtitles, and part/season qualifiers from a display title, producing the
// base work title suitable as a search keyword.
func SearchBase(s string) string {
	s = strings.TrimSpace(s)
	s = yearSuffix.ReplaceAllString(s, "")
	s = partQualifier.ReplaceAllString(s, "")
	s = seasonQualifier.ReplaceAllString(s, "")
	s = subtitleTail.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
