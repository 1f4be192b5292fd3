package lookup

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

// catalogStub serves scripted search responses and counts hits.
type catalogStub struct {
	server *httptest.Server
	hits   int
}

func newCatalogStub(handler func(w http.ResponseWriter, r *http.Request)) *catalogStub {
	stub := &catalogStub{}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.hits++
		handler(w, r)
	}))
	viper.Set(key.LookupBaseURL, stub.server.URL)
	return stub
}

func (s *catalogStub) Close() {
	s.server.Close()
}

func writeResults(w http.ResponseWriter, results string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"results":[` + results + `]}`))
}

func TestErrorTaxonomy(t *testing.T) {
	Convey("Given a catalog answering with plain status codes", t, func() {
		status := http.StatusOK
		stub := newCatalogStub(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		defer stub.Close()

		client := NewClient()

		Convey("A missing record maps to ErrNotFound", func() {
			status = http.StatusNotFound
			_, err := client.ByID("42", Hints{})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Revoked credentials map to ErrUnavailable", func() {
			status = http.StatusUnauthorized
			_, err := client.ByID("42", Hints{})
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)

			status = http.StatusForbidden
			_, err = client.ByID("42", Hints{})
			So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
		})

		Convey("A server error is transient", func() {
			status = http.StatusInternalServerError
			_, err := client.ByID("42", Hints{})
			So(err, ShouldNotBeNil)
			So(Transient(err), ShouldBeTrue)
		})
	})
}

func TestSearchYearRetry(t *testing.T) {
	Convey("Given a catalog that only matches with the year omitted", t, func() {
		stub := newCatalogStub(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("year") != "" {
				writeResults(w, "")
				return
			}
			writeResults(w, `{"canonicalId":"777","record":{"title":"Проект Х"}}`)
		})
		defer stub.Close()

		client := NewClient()

		Convey("When the year-constrained search finds nothing", func() {
			_, _, err := client.Search("Проект Х", mo.Some("2022"), KindSeries)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)

			Convey("The year-omitted search still reaches the service", func() {
				id, record, err := client.Search("Проект Х", mo.None[string](), KindSeries)
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "777")
				So(record.Title, ShouldEqual, "Проект Х")
				So(stub.hits, ShouldEqual, 2)
			})
		})
	})
}

func TestSearchNegativeCache(t *testing.T) {
	Convey("Given a catalog with no match for a query", t, func() {
		stub := newCatalogStub(func(w http.ResponseWriter, r *http.Request) {
			writeResults(w, "")
		})
		defer stub.Close()

		client := NewClient()

		Convey("A repeated identical search is answered from the negative cache", func() {
			_, _, err := client.Search("Небывалый фильм", mo.Some("2020"), KindFilm)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(stub.hits, ShouldEqual, 1)

			_, _, err = client.Search("Небывалый фильм", mo.Some("2020"), KindFilm)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(stub.hits, ShouldEqual, 1)
		})
	})
}

func TestSearchClosestCandidate(t *testing.T) {
	Convey("Given several candidates for a keyword", t, func() {
		stub := newCatalogStub(func(w http.ResponseWriter, r *http.Request) {
			writeResults(w,
				`{"canonicalId":"10","record":{"title":"Кухня в Париже"}},`+
					`{"canonicalId":"11","record":{"title":"Кухня"}}`)
		})
		defer stub.Close()

		client := NewClient()

		Convey("Search picks the one closest by edit distance", func() {
			id, record, err := client.Search("Кухня", mo.None[string](), KindSeries)
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "11")
			So(record.Title, ShouldEqual, "Кухня")
		})

		Convey("SearchAll orders every candidate the same way", func() {
			candidates, err := client.SearchAll("Кухня", mo.None[Kind]())
			So(err, ShouldBeNil)
			So(len(candidates), ShouldEqual, 2)
			So(candidates[0].CanonicalID, ShouldEqual, "11")
			So(candidates[1].CanonicalID, ShouldEqual, "10")
		})
	})
}

func TestSetRating(t *testing.T) {
	Convey("SetRating", t, func() {
		stub := newCatalogStub(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		defer stub.Close()

		client := NewClient()

		Convey("Should reject out-of-range ratings locally", func() {
			So(client.SetRating("42", 0), ShouldNotBeNil)
			So(client.SetRating("42", 11), ShouldNotBeNil)
			So(stub.hits, ShouldEqual, 0)
		})

		Convey("Should accept an in-range rating", func() {
			So(client.SetRating("42", 8), ShouldBeNil)
			So(stub.hits, ShouldEqual, 1)
		})
	})
}
