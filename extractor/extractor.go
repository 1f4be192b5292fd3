// Package extractor applies the active site rule against a page snapshot
// to produce the content information the page is currently displaying.
//
// Extraction is stateless per call and read-only with respect to the
// snapshot. It returns None when no rule matches the hostname, when the
// rule rejects the page (catalog, home, profile pages), or when no title
// can be recovered even through the generic fallback. Title is mandatory;
// year, season and episode are optional.
package extractor

import (
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/kinotag-cli/kinotag/title"
	"github.com/samber/mo"
)

// Extract produces the content information for a snapshot, or None.
func Extract(snap *page.Snapshot) mo.Option[page.ContentInfo] {
	rule, ok := sites.ForHost(snap.Hostname()).Get()
	if !ok {
		return mo.None[page.ContentInfo]()
	}
	return ExtractWith(rule, snap)
}

// ExtractWith applies a specific rule to a snapshot.
func ExtractWith(rule *sites.Rule, snap *page.Snapshot) mo.Option[page.ContentInfo] {
	if rule.ValidPage != nil && !rule.ValidPage(snap) {
		log.Debugf("%s: page %s rejected by rule", rule.ID, snap.URL.Path)
		return mo.None[page.ContentInfo]()
	}

	displayTitle, ok := extractTitle(rule, snap).Get()
	if !ok {
		log.Debugf("%s: no title on %s", rule.ID, snap.URL)
		return mo.None[page.ContentInfo]()
	}

	info := page.ContentInfo{
		Title:       displayTitle,
		SearchTitle: searchTitle(rule, displayTitle),
		SourceURL:   snap.URL.String(),
		SiteID:      rule.ID,
		URLStem:     extractStem(rule, snap),
	}

	if rule.Year != nil {
		info.Year = rule.Year(snap)
	}

	if rule.Series != nil {
		info.IsSeries = rule.Series(snap)
	}

	if se, ok := extractSeasonEpisode(rule, snap).Get(); ok {
		info.Season = mo.Some(se.Season)
		info.Episode = mo.Some(se.Episode)
		// A season/episode pair implies a series even when the site never says so.
		info.IsSeries = true
	} else if info.IsSeries {
		// Classified as a series but no episode found. Degraded information
		// is still actionable, so keep the result and flag it.
		info.NoEpisodeDetected = true
	}

	return mo.Some(info)
}

// extractTitle runs the rule's title function and falls back to the generic
// document-title heuristic when it yields empty or whitespace.
func extractTitle(rule *sites.Rule, snap *page.Snapshot) mo.Option[string] {
	if rule.Title != nil {
		if t, ok := rule.Title(snap).Get(); ok && t != "" {
			return mo.Some(t)
		}
	}
	return sites.TitleFromDocTitle(snap)
}

// extractSeasonEpisode consults sources in fixed precedence: URL path and
// query parameters, then the rule's structured selector, then generic DOM
// heuristics. The first successful source wins.
func extractSeasonEpisode(rule *sites.Rule, snap *page.Snapshot) mo.Option[sites.SeasonEpisode] {
	if se := sites.SeasonEpisodeFromURL(snap.URL); se.IsPresent() {
		return se
	}

	if rule.SeasonEpisode != nil {
		if se := rule.SeasonEpisode(snap); se.IsPresent() {
			return se
		}
	}

	return sites.SeasonEpisodeFromDoc(snap)
}

// searchTitle applies the rule's search-title override when present,
// then the generic stripper.
func searchTitle(rule *sites.Rule, displayTitle string) string {
	if rule.SearchTitle != nil {
		return rule.SearchTitle(displayTitle)
	}
	return title.SearchBase(displayTitle)
}

func extractStem(rule *sites.Rule, snap *page.Snapshot) mo.Option[string] {
	if rule.URLStem != nil {
		if stem := rule.URLStem(snap); stem.IsPresent() {
			return stem
		}
	}
	return sites.GenericStem(snap.URL)
}
