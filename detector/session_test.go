package detector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/resolver"
	"github.com/kinotag-cli/kinotag/sites"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()

	sites.Register(&sites.Rule{
		ID:      "detecttest",
		Name:    "detecttest",
		Domains: []string{"detect.test"},
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

func episodeSnapshot(season, episode int) *page.Snapshot {
	html := fmt.Sprintf(
		`<html><head><title>Кухня</title></head><body><h1>Кухня</h1><div class="caption">сезон %d серия %d</div></body></html>`,
		season, episode,
	)
	snap, err := page.FromHTML("https://detect.test/watch/100", html)
	if err != nil {
		panic(err)
	}
	return snap
}

func testSession() (*Session, *time.Time) {
	now := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	s := &Session{
		debounce:       5 * time.Second,
		cooldown:       3 * time.Minute,
		now:            func() time.Time { return now },
		cooldowns:      make(map[string]time.Time),
		progressMarked: make(map[string]bool),
	}
	return s, &now
}

func TestEvaluate(t *testing.T) {
	Convey("Evaluate", t, func() {
		s, now := testSession()

		Convey("Should miss on a page no rule claims", func() {
			snap, err := page.FromHTML("https://unknown.example/watch/1", "<h1>Кухня</h1>")
			So(err, ShouldBeNil)
			So(s.Evaluate(snap).Kind, ShouldEqual, DecisionMiss)
		})

		Convey("Should trigger on first sight of an episode", func() {
			decision := s.Evaluate(episodeSnapshot(1, 3))
			So(decision.Kind, ShouldEqual, DecisionTrigger)
			So(decision.Info.Title, ShouldEqual, "Кухня")
			So(decision.Info.Episode.OrElse(0), ShouldEqual, 3)
		})

		Convey("Should suppress an unchanged fingerprint", func() {
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionTrigger)
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionSuppressUnchanged)
		})

		Convey("Should trigger for a new episode while the old cooldown runs", func() {
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionTrigger)

			*now = now.Add(40 * time.Second)
			So(s.Evaluate(episodeSnapshot(1, 4)).Kind, ShouldEqual, DecisionTrigger)
		})

		Convey("Should suppress a return to recent content within its window", func() {
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionTrigger)

			*now = now.Add(time.Minute)
			So(s.Evaluate(episodeSnapshot(1, 4)).Kind, ShouldEqual, DecisionTrigger)

			*now = now.Add(time.Minute)
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionSuppressCooldown)
		})

		Convey("Should trigger again once the window has passed", func() {
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionTrigger)

			*now = now.Add(time.Minute)
			So(s.Evaluate(episodeSnapshot(1, 4)).Kind, ShouldEqual, DecisionTrigger)

			*now = now.Add(5 * time.Minute)
			So(s.Evaluate(episodeSnapshot(1, 3)).Kind, ShouldEqual, DecisionTrigger)
		})
	})
}

func TestCommit(t *testing.T) {
	Convey("Commit", t, func() {
		s, _ := testSession()

		decision := s.Evaluate(episodeSnapshot(2, 1))
		So(decision.Kind, ShouldEqual, DecisionTrigger)

		Convey("Should install a result matching the current fingerprint", func() {
			var updated *resolver.Resolved
			s.OnUpdate = func(res *resolver.Resolved) { updated = res }

			res := &resolver.Resolved{Info: decision.Info, CanonicalID: "888"}
			So(s.Commit(res), ShouldBeTrue)
			So(s.Current(), ShouldEqual, res)
			So(updated, ShouldEqual, res)
		})

		Convey("Should discard a result for content the page left behind", func() {
			So(s.Evaluate(episodeSnapshot(2, 2)).Kind, ShouldEqual, DecisionTrigger)

			res := &resolver.Resolved{Info: decision.Info, CanonicalID: "888"}
			So(s.Commit(res), ShouldBeFalse)
			So(s.Current(), ShouldBeNil)
		})
	})
}

func TestDeliver(t *testing.T) {
	Convey("deliver", t, func() {
		Convey("Should abandon the outcome when the loop has exited", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			results := make(chan outcome) // nobody reads
			done := make(chan struct{})
			go func() {
				deliver(ctx, results, outcome{})
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("deliver blocked on an abandoned results channel")
			}
		})

		Convey("Should hand the outcome over while the loop is running", func() {
			results := make(chan outcome, 1)
			deliver(context.Background(), results, outcome{info: page.ContentInfo{Title: "Кухня"}})

			out := <-results
			So(out.info.Title, ShouldEqual, "Кухня")
		})
	})
}

func TestFinish(t *testing.T) {
	Convey("finish", t, func() {
		s, _ := testSession()

		info := page.ContentInfo{Title: "Кухня"}

		Convey("Should surface terminal failures through OnMiss", func() {
			var missed error
			s.OnMiss = func(_ page.ContentInfo, err error) { missed = err }

			s.finish(outcome{info: info, err: resolver.ErrNotFound})
			So(errors.Is(missed, resolver.ErrNotFound), ShouldBeTrue)
		})

		Convey("Should drop the attempt silently when the service is gone", func() {
			called := false
			s.OnMiss = func(page.ContentInfo, error) { called = true }

			s.finish(outcome{info: info, err: lookup.ErrUnavailable})
			So(called, ShouldBeFalse)
		})
	})
}
