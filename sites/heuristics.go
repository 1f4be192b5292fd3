// Package sites implements the per-site extraction rule table.
package sites

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/util"
	"github.com/samber/mo"
)

// Label-bound season/episode patterns. Pages phrase the pair in either order
// ("сезон 1 серия 3" as well as "Серия 3 сезон 1"), so each number is bound
// to its captured label, never to its position in the match.
var (
	seasonLabelled = regexp.MustCompile(
		`(?i)(?:сезон|season)[\s:№#]*(?P<num>\d+)|(?P<pre>\d+)(?:-?й)?\s*(?:сезон|season)`)
	episodeLabelled = regexp.MustCompile(
		`(?i)(?:серия|эпизод|episode)[\s:№#]*(?P<num>\d+)|(?P<pre>\d+)(?:-?я)?\s*(?:серия|эпизод|episode)`)
)

func labelledNumber(re *regexp.Regexp, s string) mo.Option[int] {
	groups := util.ReGroups(re, s)
	for _, g := range []string{"num", "pre"} {
		if v, ok := groups[g]; ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 1 {
				return mo.Some(n)
			}
		}
	}
	return mo.None[int]()
}

// SeasonEpisodeFromText extracts a label-bound season/episode pair from free
// text. An episode without an explicit season is reported as season 1.
func SeasonEpisodeFromText(s string) mo.Option[SeasonEpisode] {
	episode, ok := labelledNumber(episodeLabelled, s).Get()
	if !ok {
		return mo.None[SeasonEpisode]()
	}

	season := labelledNumber(seasonLabelled, s).OrElse(1)
	return mo.Some(SeasonEpisode{Season: season, Episode: episode})
}

// URL path shapes observed across the supported sites.
var (
	sxxeyyPath = regexp.MustCompile(`(?i)s(?P<season>\d{1,3})[._-]?e(?P<episode>\d{1,3})`)
	wordsPath  = regexp.MustCompile(`(?i)season[/-](?P<season>\d+)(?:[/-]episode[/-](?P<episode>\d+))?`)
	sezonPath  = regexp.MustCompile(`(?i)(?P<season>\d+)-sezon(?:[/-](?P<episode>\d+)-seriya)?`)
)

// SeasonEpisodeFromURL extracts the season/episode pair from query
// parameters or well-known path shapes. Query parameters win.
func SeasonEpisodeFromURL(u *url.URL) mo.Option[SeasonEpisode] {
	q := u.Query()
	for _, pair := range [][2]string{{"season", "episode"}, {"s", "e"}} {
		season, serr := strconv.Atoi(q.Get(pair[0]))
		episode, eerr := strconv.Atoi(q.Get(pair[1]))
		if serr == nil && eerr == nil && season >= 1 && episode >= 1 {
			return mo.Some(SeasonEpisode{Season: season, Episode: episode})
		}
	}

	for _, re := range []*regexp.Regexp{sxxeyyPath, wordsPath, sezonPath} {
		groups := util.ReGroups(re, u.Path)
		season, serr := strconv.Atoi(groups["season"])
		episode, eerr := strconv.Atoi(groups["episode"])
		if serr == nil && eerr == nil && season >= 1 && episode >= 1 {
			return mo.Some(SeasonEpisode{Season: season, Episode: episode})
		}
	}

	return mo.None[SeasonEpisode]()
}

// SeasonEpisodeFromDoc is the last-resort DOM heuristic: it scans the nodes
// that usually carry the episode caption on player pages.
func SeasonEpisodeFromDoc(s *page.Snapshot) mo.Option[SeasonEpisode] {
	for _, selector := range []string{"h1", "h2", "title", ".breadcrumbs", "[class*=episode]", "[class*=series]"} {
		if se, ok := SeasonEpisodeFromText(text(s, selector)).Get(); ok {
			return mo.Some(se)
		}
	}
	return mo.None[SeasonEpisode]()
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// yearFromText returns the first plausible release year in the string.
func yearFromText(s string) mo.Option[string] {
	return optional(yearPattern.FindString(s))
}

// titleSeparators split a document title into its content and site-branding parts.
var titleSeparators = []string{" — ", " – ", " | ", " :: ", " - "}

// TitleFromDocTitle is the generic fallback: the part of the document title
// before the first common separator.
func TitleFromDocTitle(s *page.Snapshot) mo.Option[string] {
	t := text(s, "title")
	if t == "" {
		return mo.None[string]()
	}

	for _, sep := range titleSeparators {
		if idx := strings.Index(t, sep); idx > 0 {
			t = t[:idx]
			break
		}
	}
	return optional(strings.TrimSpace(t))
}

// GenericStem returns the first two path segments, which on most sites
// address the work (e.g. /watch/<slug>) while deeper segments address
// episodes or player state.
func GenericStem(u *url.URL) mo.Option[string] {
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return mo.None[string]()
	}
	if len(segments) > 2 {
		segments = segments[:2]
	}
	return mo.Some("/" + strings.Join(segments, "/"))
}
