// Package sites implements the per-site extraction rule table.
//
// A Rule bundles the pure extraction functions for one streaming or catalog
// site. Rules are matched by hostname, first registration wins, and are
// side-effect-free with respect to the page snapshot they read.
package sites

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/samber/mo"
)

// SeasonEpisode is a bound pair of 1-based season and episode numbers.
type SeasonEpisode struct {
	Season  int
	Episode int
}

// Rule describes how to read content information off one site's pages.
// Only Title is mandatory for a successful extraction; every other
// function may be nil, in which case generic heuristics apply.
type Rule struct {
	// ID is the stable site identifier used in cache entries.
	ID string
	// Name is the human-readable site name.
	Name string
	// Domains lists the hostnames this rule claims. A rule matches a host
	// equal to a domain or any of its subdomains.
	Domains []string

	// ValidPage rejects catalog, home and profile pages. A nil predicate
	// accepts every page.
	ValidPage func(*page.Snapshot) bool
	// Series reports the page's series/movie classification.
	Series func(*page.Snapshot) bool
	// Title extracts the display title.
	Title func(*page.Snapshot) mo.Option[string]
	// Year extracts the release year as printed on the page.
	Year func(*page.Snapshot) mo.Option[string]
	// SeasonEpisode extracts the structured season/episode pair from the
	// page body. URL-derived values take precedence over this.
	SeasonEpisode func(*page.Snapshot) mo.Option[SeasonEpisode]
	// SearchTitle overrides the generic search-keyword stripper.
	SearchTitle func(title string) string
	// URLStem extracts the site-specific stable URL fragment used as a
	// secondary cache key.
	URLStem func(*page.Snapshot) mo.Option[string]

	// Custom marks rules loaded from user Lua scripts.
	Custom bool
}

var rules []*Rule

// Register appends a rule to the table. Registration order is match order.
func Register(r *Rule) {
	rules = append(rules, r)
}

// All returns the rule table in match order.
func All() []*Rule {
	return rules
}

// ForHost returns the first rule claiming the given hostname.
func ForHost(host string) mo.Option[*Rule] {
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	for _, r := range rules {
		for _, d := range r.Domains {
			if host == d || strings.HasSuffix(host, "."+d) {
				return mo.Some(r)
			}
		}
	}
	return mo.None[*Rule]()
}

// Selector helpers shared by the builtin rules.

// text returns the trimmed text of the first node matching the selector.
func text(s *page.Snapshot, selector string) string {
	return strings.TrimSpace(s.Doc.Find(selector).First().Text())
}

// attr returns the named attribute of the first node matching the selector.
func attr(s *page.Snapshot, selector, name string) string {
	v, _ := s.Doc.Find(selector).First().Attr(name)
	return strings.TrimSpace(v)
}

// meta returns the content of a meta tag by property or name.
func meta(s *page.Snapshot, property string) string {
	var content string
	s.Doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		p, _ := sel.Attr("property")
		n, _ := sel.Attr("name")
		if p == property || n == property {
			content, _ = sel.Attr("content")
			return false
		}
		return true
	})
	return strings.TrimSpace(content)
}

// optional wraps a possibly empty string into an Option.
func optional(v string) mo.Option[string] {
	if v == "" {
		return mo.None[string]()
	}
	return mo.Some(v)
}
