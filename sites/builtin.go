// Package sites implements the per-site extraction rule table.
package sites

import (
	"regexp"
	"strings"

	"github.com/kinotag-cli/kinotag/page"
	"github.com/samber/mo"
)

// pathHasAny reports whether the snapshot path contains one of the fragments.
func pathHasAny(s *page.Snapshot, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s.URL.Path, f) {
			return true
		}
	}
	return false
}

func init() {
	Register(&Rule{
		ID:      "kinopoisk",
		Name:    "Кинопоиск HD",
		Domains: []string{"hd.kinopoisk.ru"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/film/", "/episode/")
		},
		Series: func(s *page.Snapshot) bool {
			return meta(s, "og:type") == "video.tv_show" || text(s, "[class*=seasons]") != ""
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			if t := text(s, "[class*=contentTitle]"); t != "" {
				return mo.Some(t)
			}
			return optional(meta(s, "og:title"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, "[class*=contentMeta]"))
		},
		SeasonEpisode: func(s *page.Snapshot) mo.Option[SeasonEpisode] {
			return SeasonEpisodeFromText(text(s, "[class*=episodeTitle]"))
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			// /film/<uuid> stays stable across seasons and player reloads.
			return stemByPattern(s, regexp.MustCompile(`^/film/[0-9a-f-]+`))
		},
	})

	Register(&Rule{
		ID:      "ivi",
		Name:    "Иви",
		Domains: []string{"ivi.ru", "ivi.tv"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/watch/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/season") || strings.Contains(meta(s, "og:url"), "/watch/") &&
				text(s, "[data-test=seasons_tabs]") != ""
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			if t := text(s, "h1 [itemprop=name]"); t != "" {
				return mo.Some(t)
			}
			return optional(meta(s, "og:title"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, "[data-test=content_meta]"))
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			return stemByPattern(s, regexp.MustCompile(`^/watch/[^/]+`))
		},
	})

	Register(&Rule{
		ID:      "okko",
		Name:    "Okko",
		Domains: []string{"okko.tv"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/movie/", "/serial/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/serial/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, "[class*=metaInfo]"))
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			return stemByPattern(s, regexp.MustCompile(`^/(?:movie|serial)/[^/]+`))
		},
	})

	Register(&Rule{
		ID:      "wink",
		Name:    "Wink",
		Domains: []string{"wink.ru", "wink.rt.ru"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/movies/", "/series/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/series/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1[class*=title]"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, "[class*=details]"))
		},
	})

	Register(&Rule{
		ID:      "premier",
		Name:    "Premier",
		Domains: []string{"premier.one"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/show/", "/watch/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/show/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, "[class*=about]"))
		},
	})

	Register(&Rule{
		ID:      "kion",
		Name:    "KION",
		Domains: []string{"kion.ru"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/video/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/video/serial")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
	})

	Register(&Rule{
		ID:      "moretv",
		Name:    "more.tv",
		Domains: []string{"more.tv"},
		Series: func(s *page.Snapshot) bool {
			// more.tv hosts series almost exclusively; movies live under /films.
			return !pathHasAny(s, "/films/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
	})

	Register(&Rule{
		ID:      "start",
		Name:    "START",
		Domains: []string{"start.ru"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/watch/")
		},
		Series: func(s *page.Snapshot) bool {
			return text(s, "[class*=seasons]") != ""
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			return stemByPattern(s, regexp.MustCompile(`^/watch/[^/]+`))
		},
	})

	Register(&Rule{
		ID:      "amediateka",
		Name:    "Амедиатека",
		Domains: []string{"amediateka.ru"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/watch/", "/serial/", "/film/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/serial/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
	})

	Register(&Rule{
		ID:      "hdrezka",
		Name:    "HDRezka",
		Domains: []string{"rezka.ag", "hdrezka.ag", "hdrezka.me", "rezka.cc"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/films/", "/series/", "/cartoons/", "/animation/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/series/") || text(s, "#simple-episodes-tabs") != ""
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, ".b-post__title h1"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, ".b-post__info"))
		},
		SeasonEpisode: func(s *page.Snapshot) mo.Option[SeasonEpisode] {
			return SeasonEpisodeFromText(text(s, ".b-simple_episode__item.active"))
		},
		SearchTitle: func(t string) string {
			// Rezka appends the original title after a slash.
			if idx := strings.Index(t, " / "); idx > 0 {
				t = t[:idx]
			}
			return t
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			return stemByPattern(s, regexp.MustCompile(`^/(?:films|series|cartoons|animation)/[^/]+/[^/]+`))
		},
	})

	Register(&Rule{
		ID:      "lordfilm",
		Name:    "LordFilm",
		Domains: []string{"lordfilm.ws", "lordfilm.pw"},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, ".short-info"))
		},
	})

	Register(&Rule{
		ID:      "zona",
		Name:    "Zona",
		Domains: []string{"zona.plus", "w140.zona.plus"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/movies/", "/tvseries/")
		},
		Series: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/tvseries/")
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1.entity-name"))
		},
		Year: func(s *page.Snapshot) mo.Option[string] {
			return yearFromText(text(s, ".entity-year"))
		},
	})

	Register(&Rule{
		ID:      "netflix",
		Name:    "Netflix",
		Domains: []string{"netflix.com"},
		ValidPage: func(s *page.Snapshot) bool {
			return pathHasAny(s, "/watch/", "/title/")
		},
		Series: func(s *page.Snapshot) bool {
			return text(s, "[data-uia=episode-title]") != ""
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			if t := text(s, "[data-uia=video-title] h4"); t != "" {
				return mo.Some(t)
			}
			return optional(text(s, "[data-uia=video-title]"))
		},
		SeasonEpisode: func(s *page.Snapshot) mo.Option[SeasonEpisode] {
			return SeasonEpisodeFromText(text(s, "[data-uia=episode-title]"))
		},
		URLStem: func(s *page.Snapshot) mo.Option[string] {
			return stemByPattern(s, regexp.MustCompile(`^/(?:watch|title)/\d+`))
		},
	})

	Register(&Rule{
		ID:      "kinogo",
		Name:    "Kinogo",
		Domains: []string{"kinogo.inc", "kinogo.fm"},
		Title: func(s *page.Snapshot) mo.Option[string] {
			return optional(text(s, "h1"))
		},
	})
}

// stemByPattern returns the leading path fragment matching the pattern.
func stemByPattern(s *page.Snapshot, re *regexp.Regexp) mo.Option[string] {
	return optional(re.FindString(s.URL.Path))
}
