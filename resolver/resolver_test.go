package resolver

import (
	"errors"
	"testing"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/history"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

// fakeService scripts catalog responses per canonical id and keyword.
type fakeService struct {
	records map[string]*lookup.Record
	search  map[string]string // keyword -> canonical id

	byIDErrs   []error // consumed first, one per ByID call
	searchErrs []error

	byIDCalls   int
	searchCalls int
	searchYears []mo.Option[string]
}

func (f *fakeService) ByID(id string, _ lookup.Hints) (*lookup.Record, error) {
	f.byIDCalls++
	if len(f.byIDErrs) > 0 {
		err := f.byIDErrs[0]
		f.byIDErrs = f.byIDErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	record, ok := f.records[id]
	if !ok {
		return nil, lookup.ErrNotFound
	}
	return record, nil
}

func (f *fakeService) Search(keyword string, year mo.Option[string], _ lookup.Kind) (string, *lookup.Record, error) {
	f.searchCalls++
	f.searchYears = append(f.searchYears, year)
	if len(f.searchErrs) > 0 {
		err := f.searchErrs[0]
		f.searchErrs = f.searchErrs[1:]
		if err != nil {
			return "", nil, err
		}
	}

	id, ok := f.search[keyword]
	if !ok {
		return "", nil, lookup.ErrNotFound
	}
	return id, f.records[id], nil
}

func (f *fakeService) SetWatched(string, lookup.Hints, bool) error { return nil }
func (f *fakeService) SetRating(string, int) error                 { return nil }

func seriesInfo() page.ContentInfo {
	return page.ContentInfo{
		Title:       "Проект Х",
		SearchTitle: "Проект Х",
		Year:        mo.Some("2022"),
		Season:      mo.Some(1),
		Episode:     mo.Some(3),
		IsSeries:    true,
		SiteID:      "ivi",
		URLStem:     mo.Some("/watch/231991"),
	}
}

func TestResolveViaSearch(t *testing.T) {
	Convey("Given an uncached series page", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"777": {
					Title:                 "Проект Х",
					IsSeries:              true,
					RecordID:              mo.Some("rec-1"),
					Catalogued:            mo.Some(true),
					CurrentEpisodeWatched: false,
				},
			},
			search: map[string]string{"Проект Х": "777"},
		}

		Convey("When the page is resolved", func() {
			res, err := New(service).Resolve(seriesInfo())
			So(err, ShouldBeNil)

			Convey("Then the search fallback finds the canonical id", func() {
				So(res.CanonicalID, ShouldEqual, "777")
				So(res.Catalogued, ShouldResemble, mo.Some(true))
				So(res.Degraded, ShouldBeFalse)
			})

			Convey("And the unwatched current episode is the next to watch", func() {
				So(res.NextUnwatchedSeason, ShouldResemble, mo.Some(1))
				So(res.NextUnwatchedEpisode, ShouldResemble, mo.Some(3))
			})

			Convey("And the resolution is cached for the next attempt", func() {
				So(history.Lookup(seriesInfo()).OrElse(""), ShouldEqual, "777")

				service.searchCalls = 0
				res2, err := New(service).Resolve(seriesInfo())
				So(err, ShouldBeNil)
				So(res2.CanonicalID, ShouldEqual, "777")
				So(service.searchCalls, ShouldEqual, 0)
			})
		})
	})
}

func TestNextUnwatchedInference(t *testing.T) {
	Convey("Given a watched current episode and no explicit pointer", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"888": {
					Title:                 "Кухня",
					IsSeries:              true,
					CurrentEpisodeWatched: true,
				},
			},
			search: map[string]string{"Кухня": "888"},
		}

		info := page.ContentInfo{
			Title:       "Кухня",
			SearchTitle: "Кухня",
			Season:      mo.Some(2),
			Episode:     mo.Some(5),
			IsSeries:    true,
			SiteID:      "moretv",
		}

		res, err := New(service).Resolve(info)
		So(err, ShouldBeNil)

		Convey("The next unwatched episode is the following one", func() {
			So(res.NextUnwatchedSeason, ShouldResemble, mo.Some(2))
			So(res.NextUnwatchedEpisode, ShouldResemble, mo.Some(6))
		})
	})

	Convey("Given an explicit service pointer", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"888": {
					Title:                 "Кухня",
					IsSeries:              true,
					CurrentEpisodeWatched: true,
					NextUnwatchedSeason:   mo.Some(3),
					NextUnwatchedEpisode:  mo.Some(1),
				},
			},
			search: map[string]string{"Кухня": "888"},
		}

		info := page.ContentInfo{
			Title:       "Кухня",
			SearchTitle: "Кухня",
			Season:      mo.Some(2),
			Episode:     mo.Some(5),
			IsSeries:    true,
			SiteID:      "moretv",
		}

		res, err := New(service).Resolve(info)
		So(err, ShouldBeNil)

		Convey("The service pointer is trusted over local inference", func() {
			So(res.NextUnwatchedSeason, ShouldResemble, mo.Some(3))
			So(res.NextUnwatchedEpisode, ShouldResemble, mo.Some(1))
		})
	})
}

func TestStaleCacheEntry(t *testing.T) {
	Convey("Given a cached candidate whose record now names another work", t, func() {
		So(history.Clear(), ShouldBeNil)

		info := seriesInfo()
		So(history.Save(info, "666"), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"666": {Title: "Совсем другой сериал", IsSeries: true},
				"777": {Title: "Проект Х", IsSeries: true},
			},
			search: map[string]string{"Проект Х": "777"},
		}

		Convey("When the page is resolved", func() {
			res, err := New(service).Resolve(info)
			So(err, ShouldBeNil)

			Convey("Then the stale candidate is rejected and search recovers", func() {
				So(res.CanonicalID, ShouldEqual, "777")
			})

			Convey("And the stale mapping is invalidated", func() {
				entries, err := history.Entries()
				So(err, ShouldBeNil)
				for _, e := range entries {
					So(e.CanonicalID, ShouldNotEqual, "666")
				}
			})
		})
	})
}

func TestSearchMismatch(t *testing.T) {
	Convey("Given a search result naming a different work", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"999": {Title: "Морской бой"},
			},
			search: map[string]string{"Проект Х": "999"},
		}

		Convey("Resolution fails with not-found, not a wrong match", func() {
			_, err := New(service).Resolve(seriesInfo())
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			Convey("And nothing is cached", func() {
				entries, _ := history.Entries()
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestYearOmittedRetry(t *testing.T) {
	Convey("Given a page year the catalog disagrees with", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"777": {Title: "Проект Х", IsSeries: true},
			},
			search: map[string]string{"Проект Х": "777"},
			// The year-constrained search finds nothing.
			searchErrs: []error{lookup.ErrNotFound},
		}

		res, err := New(service).Resolve(seriesInfo())
		So(err, ShouldBeNil)

		Convey("The search is retried without the year and succeeds", func() {
			So(res.CanonicalID, ShouldEqual, "777")
			So(service.searchCalls, ShouldEqual, 2)
			So(service.searchYears[0], ShouldResemble, mo.Some("2022"))
			So(service.searchYears[1], ShouldResemble, mo.None[string]())
		})
	})
}

func TestTransientRetry(t *testing.T) {
	Convey("Given a service that fails transiently once", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"777": {Title: "Проект Х", IsSeries: true},
			},
			search:     map[string]string{"Проект Х": "777"},
			searchErrs: []error{errors.New("catalog status 503")},
		}

		Convey("A single retry recovers the attempt", func() {
			res, err := New(service).Resolve(seriesInfo())
			So(err, ShouldBeNil)
			So(res.CanonicalID, ShouldEqual, "777")
			So(service.searchCalls, ShouldEqual, 2)
		})
	})

	Convey("Given a service that keeps failing", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			searchErrs: []error{
				errors.New("catalog status 503"),
				errors.New("catalog status 503"),
			},
		}

		Convey("The attempt fails with a transient error, not not-found", func() {
			_, err := New(service).Resolve(seriesInfo())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrNotFound), ShouldBeFalse)
			So(service.searchCalls, ShouldEqual, 2)
		})
	})
}

func TestDegradedVerification(t *testing.T) {
	Convey("Given a cached candidate that cannot be verified", t, func() {
		So(history.Clear(), ShouldBeNil)

		info := seriesInfo()
		So(history.Save(info, "777"), ShouldBeNil)

		service := &fakeService{
			records: map[string]*lookup.Record{
				"777": {Title: "Проект Х", IsSeries: true},
			},
			byIDErrs: []error{
				errors.New("catalog status 503"),
				errors.New("catalog status 503"),
			},
		}

		Convey("The result is degraded rather than lost", func() {
			res, err := New(service).Resolve(info)
			So(err, ShouldBeNil)
			So(res.CanonicalID, ShouldEqual, "777")
			So(res.Degraded, ShouldBeTrue)
			So(res.Watched, ShouldBeFalse)
		})
	})
}

func TestUnavailableService(t *testing.T) {
	Convey("Given a session-fatal service condition", t, func() {
		So(history.Clear(), ShouldBeNil)

		service := &fakeService{
			searchErrs: []error{lookup.ErrUnavailable},
		}

		Convey("The attempt aborts without a retry", func() {
			_, err := New(service).Resolve(seriesInfo())
			So(errors.Is(err, lookup.ErrUnavailable), ShouldBeTrue)
			So(service.searchCalls, ShouldEqual, 1)
		})
	})
}
