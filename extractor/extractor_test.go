package extractor

import (
	"fmt"
	"testing"

	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	sites.Register(&sites.Rule{
		ID:      "streamtest",
		Name:    "streamtest",
		Domains: []string{"stream.test"},
		ValidPage: func(s *page.Snapshot) bool {
			return s.URL.Path != "/"
		},
		Series: func(s *page.Snapshot) bool {
			return s.Doc.Find(".seasons").Length() > 0
		},
		Title: func(s *page.Snapshot) mo.Option[string] {
			t := s.Doc.Find("h1").First().Text()
			if t == "" {
				return mo.None[string]()
			}
			return mo.Some(t)
		},
		SeasonEpisode: func(s *page.Snapshot) mo.Option[sites.SeasonEpisode] {
			return sites.SeasonEpisodeFromText(s.Doc.Find(".caption").First().Text())
		},
	})
}

func snapshot(rawURL, body string) *page.Snapshot {
	html := fmt.Sprintf("<html><head><title>стрим тест — смотреть онлайн</title></head><body>%s</body></html>", body)
	snap, err := page.FromHTML(rawURL, html)
	if err != nil {
		panic(err)
	}
	return snap
}

func TestExtract(t *testing.T) {
	Convey("Extract", t, func() {
		Convey("Should return None for an unclaimed host", func() {
			snap := snapshot("https://unknown.example/watch/1", "<h1>Фильм</h1>")
			So(Extract(snap).IsPresent(), ShouldBeFalse)
		})

		Convey("Should reject pages the rule declares invalid", func() {
			snap := snapshot("https://stream.test/", "<h1>Главная</h1>")
			So(Extract(snap).IsPresent(), ShouldBeFalse)
		})

		Convey("Should extract a film title", func() {
			snap := snapshot("https://stream.test/watch/1", "<h1>Морской бой</h1>")
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.Title, ShouldEqual, "Морской бой")
			So(info.SiteID, ShouldEqual, "streamtest")
			So(info.IsSeries, ShouldBeFalse)
			So(info.Season.IsAbsent(), ShouldBeTrue)
		})

		Convey("Should bind season and episode to their labels regardless of order", func() {
			snap := snapshot(
				"https://stream.test/watch/2",
				`<h1>Кухня</h1><div class="caption">Серия 3 сезон 1</div>`,
			)
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.Season.OrElse(0), ShouldEqual, 1)
			So(info.Episode.OrElse(0), ShouldEqual, 3)

			Convey("And the pair implies a series classification", func() {
				So(info.IsSeries, ShouldBeTrue)
				So(info.NoEpisodeDetected, ShouldBeFalse)
			})
		})

		Convey("Should prefer the URL over the rule's structured selector", func() {
			snap := snapshot(
				"https://stream.test/watch/3?season=2&episode=8",
				`<h1>Кухня</h1><div class="caption">сезон 1 серия 1</div>`,
			)
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.Season.OrElse(0), ShouldEqual, 2)
			So(info.Episode.OrElse(0), ShouldEqual, 8)
		})

		Convey("Should flag a series page without a detectable episode", func() {
			snap := snapshot(
				"https://stream.test/watch/4",
				`<h1>Кухня</h1><div class="seasons"></div>`,
			)
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.IsSeries, ShouldBeTrue)
			So(info.NoEpisodeDetected, ShouldBeTrue)
			So(info.Episode.IsAbsent(), ShouldBeTrue)
		})

		Convey("Should fall back to the document title when the rule finds none", func() {
			snap := snapshot("https://stream.test/watch/5", "<p>нет заголовка</p>")
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.Title, ShouldEqual, "стрим тест")
		})

		Convey("Should derive a search title via the generic stripper", func() {
			snap := snapshot("https://stream.test/watch/6", "<h1>Морской бой (2012)</h1>")
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.SearchTitle, ShouldEqual, "Морской бой")
		})

		Convey("Should record the generic URL stem", func() {
			snap := snapshot("https://stream.test/watch/7/player", "<h1>Морской бой</h1>")
			info, ok := Extract(snap).Get()
			So(ok, ShouldBeTrue)
			So(info.URLStem.OrElse(""), ShouldEqual, "/watch/7")
		})
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Fingerprint and cooldown keys", t, func() {
		a := page.ContentInfo{Title: "Кухня", Season: mo.Some(1), Episode: mo.Some(3)}
		b := page.ContentInfo{Title: "кухня", Season: mo.Some(1), Episode: mo.Some(3)}
		c := page.ContentInfo{Title: "Кухня", Season: mo.Some(1), Episode: mo.Some(4)}

		Convey("Equal content yields equal fingerprints", func() {
			So(a.Fingerprint(), ShouldEqual, b.Fingerprint())
		})

		Convey("An episode change yields a different fingerprint and cooldown key", func() {
			So(a.Fingerprint(), ShouldNotEqual, c.Fingerprint())
			So(a.CooldownKey(), ShouldNotEqual, c.CooldownKey())
		})

		Convey("Display-title noise collapses in the cooldown key", func() {
			noisy := page.ContentInfo{Title: "Кухня — смотреть онлайн", Season: mo.Some(1), Episode: mo.Some(3)}
			So(noisy.CooldownKey(), ShouldEqual, a.CooldownKey())
			So(noisy.Fingerprint(), ShouldNotEqual, a.Fingerprint())
		})
	})
}
