// Package page defines the page snapshot model and the content information extracted from it.
package page

import (
	"fmt"
	"strings"

	"github.com/kinotag-cli/kinotag/title"
	"github.com/samber/mo"
)

// ContentInfo describes the work a page is currently displaying.
// Values are created fresh on every extraction pass and never mutated in
// place; a new pass always produces a wholesale replacement.
type ContentInfo struct {
	// Title is the display title scraped from the page. Always non-empty.
	Title string `json:"title" jsonschema:"description=Display title scraped from the page."`
	// SearchTitle is the base work title used as a search keyword,
	// produced by the site rule's override or the generic stripper.
	SearchTitle string `json:"searchTitle" jsonschema:"description=Base work title used as a search keyword."`
	// Year is the release year as printed on the page, when present.
	Year mo.Option[string] `json:"year" jsonschema:"description=Release year as printed on the page."`
	// Season and Episode are 1-based when present.
	Season  mo.Option[int] `json:"season" jsonschema:"description=Season number (1-based)."`
	Episode mo.Option[int] `json:"episode" jsonschema:"description=Episode number (1-based)."`
	// IsSeries reports the page's series/movie classification.
	IsSeries bool `json:"isSeries" jsonschema:"description=Whether the page classifies the work as a series."`
	// NoEpisodeDetected is set when the page is classified as a series but
	// no season/episode could be extracted. Degraded information is still
	// actionable; the result is kept rather than discarded.
	NoEpisodeDetected bool `json:"noEpisodeDetected" jsonschema:"description=Series page without a detectable season/episode."`

	// SourceURL is the full URL the snapshot was taken from.
	SourceURL string `json:"sourceUrl" jsonschema:"description=URL the snapshot was taken from."`
	// SiteID identifies the matched site rule.
	SiteID string `json:"siteId" jsonschema:"description=Identifier of the matched site rule."`
	// URLStem is a site-specific stable fragment of the URL, used as a
	// secondary cache key when title/year are unreliable.
	URLStem mo.Option[string] `json:"urlStem" jsonschema:"description=Stable URL fragment used as a secondary cache key."`
}

// Fingerprint returns the change-detection signature of the content:
// the concatenation of normalized title, year, season and episode.
// Two infos with equal fingerprints denote the same displayed content
// even if captured at different times.
func (c ContentInfo) Fingerprint() string {
	return strings.Join([]string{
		title.Normalize(c.Title),
		c.Year.OrElse(""),
		optInt(c.Season),
		optInt(c.Episode),
	}, "|")
}

// CooldownKey returns the rate-limiting key for the content. It is keyed by
// the same (title, year, season, episode) tuple as the fingerprint but
// excludes everything else the fingerprint may pick up, so a genuine episode
// change never collides with the previous episode's cooldown window.
func (c ContentInfo) CooldownKey() string {
	return strings.Join([]string{
		title.Normalize(title.SearchBase(c.Title)),
		c.Year.OrElse(""),
		optInt(c.Season),
		optInt(c.Episode),
	}, "#")
}

func optInt(o mo.Option[int]) string {
	if v, ok := o.Get(); ok {
		return fmt.Sprint(v)
	}
	return ""
}

// String renders a short human-readable description, e.g. `Проект Х (2022) S1E3`.
func (c ContentInfo) String() string {
	var b strings.Builder
	b.WriteString(c.Title)
	if year, ok := c.Year.Get(); ok {
		fmt.Fprintf(&b, " (%s)", year)
	}
	season, sok := c.Season.Get()
	episode, eok := c.Episode.Get()
	if sok && eok {
		fmt.Fprintf(&b, " S%dE%d", season, episode)
	}
	return b.String()
}
