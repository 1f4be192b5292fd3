package sites

import (
	"net/url"
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func mustURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func TestForHost(t *testing.T) {
	Convey("ForHost", t, func() {
		Convey("Should match a claimed hostname", func() {
			rule, ok := ForHost("www.ivi.ru").Get()
			So(ok, ShouldBeTrue)
			So(rule.ID, ShouldEqual, "ivi")
		})

		Convey("Should match subdomains of a claimed hostname", func() {
			rule, ok := ForHost("hd.kinopoisk.ru").Get()
			So(ok, ShouldBeTrue)
			So(rule.ID, ShouldEqual, "kinopoisk")
		})

		Convey("Should not match an unrelated host sharing a suffix string", func() {
			So(ForHost("notivi.ru").IsPresent(), ShouldBeFalse)
		})

		Convey("Should return None for unknown hosts", func() {
			So(ForHost("example.com").IsPresent(), ShouldBeFalse)
		})

		Convey("First registration wins for a contested host", func() {
			contested := &Rule{ID: "late", Name: "late", Domains: []string{"ivi.ru"}}
			Register(contested)
			defer func() { rules = rules[:len(rules)-1] }()

			rule, ok := ForHost("ivi.ru").Get()
			So(ok, ShouldBeTrue)
			So(rule.ID, ShouldEqual, "ivi")
		})
	})
}

func TestSeasonEpisodeFromText(t *testing.T) {
	Convey("SeasonEpisodeFromText", t, func() {
		Convey("Should bind numbers to labels regardless of order", func() {
			se, ok := SeasonEpisodeFromText("Серия 3 сезон 1").Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 1, Episode: 3})

			se, ok = SeasonEpisodeFromText("сезон 1 серия 3").Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 1, Episode: 3})
		})

		Convey("Should handle number-first phrasing", func() {
			se, ok := SeasonEpisodeFromText("Кухня 2 сезон 5 серия").Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 2, Episode: 5})
		})

		Convey("Should default the season to 1 when only the episode is labelled", func() {
			se, ok := SeasonEpisodeFromText("Эпизод 7").Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 1, Episode: 7})
		})

		Convey("Should require an episode label", func() {
			So(SeasonEpisodeFromText("сезон 2").IsPresent(), ShouldBeFalse)
			So(SeasonEpisodeFromText("обычный текст 2012").IsPresent(), ShouldBeFalse)
		})

		Convey("Should work with english labels", func() {
			se, ok := SeasonEpisodeFromText("Season 3 Episode 12").Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 3, Episode: 12})
		})
	})
}

func TestSeasonEpisodeFromURL(t *testing.T) {
	Convey("SeasonEpisodeFromURL", t, func() {
		Convey("Should read explicit query parameters", func() {
			se, ok := SeasonEpisodeFromURL(mustURL("https://x.ru/watch/1?season=2&episode=5")).Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 2, Episode: 5})
		})

		Convey("Should read short query parameters", func() {
			se, ok := SeasonEpisodeFromURL(mustURL("https://x.ru/watch/1?s=1&e=9")).Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 1, Episode: 9})
		})

		Convey("Should read sXXeYY path segments", func() {
			se, ok := SeasonEpisodeFromURL(mustURL("https://x.ru/series/name/s02e05")).Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 2, Episode: 5})
		})

		Convey("Should read season/episode path words", func() {
			se, ok := SeasonEpisodeFromURL(mustURL("https://x.ru/show/season/3/episode/4")).Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 3, Episode: 4})
		})

		Convey("Should read transliterated path words", func() {
			se, ok := SeasonEpisodeFromURL(mustURL("https://x.ru/kuhnya/2-sezon/5-seriya")).Get()
			So(ok, ShouldBeTrue)
			So(se, ShouldResemble, SeasonEpisode{Season: 2, Episode: 5})
		})

		Convey("Should return None for plain film URLs", func() {
			So(SeasonEpisodeFromURL(mustURL("https://x.ru/film/12345")).IsPresent(), ShouldBeFalse)
		})
	})
}

func TestGenericStem(t *testing.T) {
	Convey("GenericStem", t, func() {
		Convey("Should keep the first two segments", func() {
			So(GenericStem(mustURL("https://x.ru/watch/slug/season/2")).OrElse(""), ShouldEqual, "/watch/slug")
		})
		Convey("Should keep a short path intact", func() {
			So(GenericStem(mustURL("https://x.ru/watch")).OrElse(""), ShouldEqual, "/watch")
		})
		Convey("Should return None for the root", func() {
			So(GenericStem(mustURL("https://x.ru/")), ShouldResemble, mo.None[string]())
		})
	})
}
