// Package lookup defines the boundary to the canonical movie catalog service.
//
// The core consumes three operations: fetch a record by canonical id, search
// by keyword, and push watched/rating state back. Transport failures are
// classified so callers can distinguish "the service said no" from "the
// service could not be reached" from "this session can no longer talk to
// the service at all".
package lookup

import (
	"errors"

	"github.com/samber/mo"
)

// Kind narrows a keyword search to films or series.
type Kind int

const (
	KindFilm Kind = iota
	KindSeries
)

func (k Kind) String() string {
	if k == KindSeries {
		return "series"
	}
	return "film"
}

// Hints carries the page-local season/episode context of a by-id fetch, so
// the service can answer episode-level progress fields.
type Hints struct {
	Season  mo.Option[int]
	Episode mo.Option[int]
}

// Record is the catalog's view of one work, restricted to the fields the
// identification core consumes.
type Record struct {
	// Title is the primary display title.
	Title string `json:"title" jsonschema:"description=Primary display title of the work."`
	// TitleOriginal and TitleEnglish are alternate titles used as matching fallbacks.
	TitleOriginal string `json:"titleOriginal,omitempty" jsonschema:"description=Original-language title."`
	TitleEnglish  string `json:"titleEnglish,omitempty" jsonschema:"description=English title."`

	IsSeries bool `json:"isSeries" jsonschema:"description=Whether the work is a series."`

	// RecordID is the user's database record for this work.
	// Some(id) = catalogued; Some("") never occurs; None + Catalogued=Some(false)
	// = confirmed absent; None + Catalogued=None = the query could not determine.
	RecordID   mo.Option[string] `json:"recordId" jsonschema:"description=User database record id when catalogued."`
	Catalogued mo.Option[bool]   `json:"catalogued" jsonschema:"description=Tri-state catalogued flag; absent means unknown."`

	Watched               bool `json:"watched" jsonschema:"description=Whether the work is marked watched."`
	Rated                 bool `json:"rated" jsonschema:"description=Whether the work carries a user rating."`
	HasUnwatchedBefore    bool `json:"hasUnwatchedBefore" jsonschema:"description=Whether earlier episodes remain unwatched."`
	CurrentEpisodeWatched bool `json:"currentEpisodeWatched" jsonschema:"description=Whether the hinted episode is watched."`

	NextUnwatchedSeason  mo.Option[int] `json:"nextUnwatchedSeason" jsonschema:"description=Season of the next unwatched episode."`
	NextUnwatchedEpisode mo.Option[int] `json:"nextUnwatchedEpisode" jsonschema:"description=Number of the next unwatched episode."`
}

// Titles returns the record's title and its non-empty alternates,
// primary first.
func (r *Record) Titles() []string {
	titles := []string{r.Title}
	for _, t := range []string{r.TitleOriginal, r.TitleEnglish} {
		if t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// Service is the abstract catalog boundary consumed by the resolver and the
// action widget.
type Service interface {
	// ByID fetches the canonical record for an identifier.
	ByID(id string, hints Hints) (*Record, error)
	// Search resolves a keyword (+optional year) to the best canonical match.
	Search(keyword string, year mo.Option[string], kind Kind) (string, *Record, error)
	// SetWatched marks the hinted episode (or the whole work) watched or unwatched.
	SetWatched(id string, hints Hints, watched bool) error
	// SetRating stores a 1-10 user rating.
	SetRating(id string, rating int) error
}

// Sentinel errors classifying service outcomes.
var (
	// ErrNotFound means the catalog genuinely has no match. Terminal;
	// never retried.
	ErrNotFound = errors.New("no catalog match")

	// ErrUnavailable means this session can no longer communicate with the
	// service at all (e.g. credentials revoked mid-session). Fatal to the
	// attempt; never retried.
	ErrUnavailable = errors.New("catalog service unavailable")
)

// Transient reports whether an error is worth a single retry: anything that
// is neither a definite no nor a session-fatal condition.
func Transient(err error) bool {
	return err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrUnavailable)
}
