// Package resolver orchestrates one identification attempt: local cache
// lookup, catalog verification, keyword search fallback and result merging.
//
// The attempt walks a fixed state machine:
//
//	CacheLookup → Validating → {Resolved, SearchFallback} → Validating → {Resolved, NotFound}
//
// A cache hit is never trusted on its own; the candidate's catalog record is
// fetched and its title compared against the page title first, because URL
// stems get reused by sites for different content over time.
package resolver

import (
	"errors"
	"fmt"

	"github.com/kinotag-cli/kinotag/history"
	"github.com/kinotag-cli/kinotag/log"
	"github.com/kinotag-cli/kinotag/lookup"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/title"
	"github.com/samber/mo"
)

// ErrNotFound marks a genuinely unidentifiable page: the terminal state
// distinct from transient lookup failures, so the caller can offer
// "not found" rather than "try again".
var ErrNotFound = lookup.ErrNotFound

// Resolved is the immutable outcome of a successful identification,
// refreshed wholesale after every user action that changes catalog state.
type Resolved struct {
	Info page.ContentInfo `json:"info"`

	CanonicalID string            `json:"canonicalId" jsonschema:"description=Canonical catalog identifier of the work."`
	RecordID    mo.Option[string] `json:"recordId" jsonschema:"description=User database record id when catalogued."`
	Catalogued  mo.Option[bool]   `json:"catalogued" jsonschema:"description=Tri-state catalogued flag; absent means unknown."`

	IsSeries              bool `json:"isSeries"`
	Watched               bool `json:"watched"`
	Rated                 bool `json:"rated"`
	HasUnwatchedBefore    bool `json:"hasUnwatchedBefore"`
	CurrentEpisodeWatched bool `json:"currentEpisodeWatched"`

	NextUnwatchedSeason  mo.Option[int] `json:"nextUnwatchedSeason"`
	NextUnwatchedEpisode mo.Option[int] `json:"nextUnwatchedEpisode"`

	// Degraded marks a result whose progress and rating fields could not be
	// verified and were defaulted; the widget must not present them as
	// authoritative "already watched" state.
	Degraded bool `json:"degraded"`
}

// Resolver runs identification attempts against a catalog service.
type Resolver struct {
	service lookup.Service
}

// New returns a resolver backed by the given catalog service.
func New(service lookup.Service) *Resolver {
	return &Resolver{service: service}
}

// Resolve identifies the content described by info.
// It returns ErrNotFound when the catalog has no match, lookup.ErrUnavailable
// when the session can no longer reach the service, and a wrapped transient
// error when search could not complete and no candidate id was known.
func (r *Resolver) Resolve(info page.ContentInfo) (*Resolved, error) {
	hints := lookup.Hints{Season: info.Season, Episode: info.Episode}

	// CacheLookup.
	if candidate, ok := history.Lookup(info).Get(); ok {
		log.Infof("cache hit for %q: %s", info.Title, candidate)

		record, err := retry(func() (*lookup.Record, error) {
			return r.service.ByID(candidate, hints)
		})

		switch {
		case err == nil && r.titleMatches(record, info):
			return r.merge(candidate, record, info), nil
		case err == nil || errors.Is(err, lookup.ErrNotFound):
			// Verification mismatch or the record vanished from the catalog.
			// Only the matched candidate is known stale; entries sharing its
			// URL stem are left alone.
			log.Infof("cached candidate %s failed verification for %q", candidate, info.Title)
			_ = history.Invalidate(info, candidate)
		case errors.Is(err, lookup.ErrUnavailable):
			return nil, err
		default:
			// A candidate id exists but could not be verified: degrade
			// rather than abort, with progress flags defaulted.
			log.Warnf("verification of %s failed twice: %v", candidate, err)
			return r.degraded(candidate, info), nil
		}
	}

	// SearchFallback.
	canonicalID, record, err := r.search(info)
	if err != nil {
		return nil, err
	}

	if !r.titleMatches(record, info) {
		log.Infof("search result %q does not match page title %q", record.Title, info.Title)
		return nil, ErrNotFound
	}

	if err := history.Save(info, canonicalID); err != nil {
		log.Error(err)
	}

	// Validating: re-fetch by id with episode hints for progress fields.
	record, err = retry(func() (*lookup.Record, error) {
		return r.service.ByID(canonicalID, hints)
	})
	switch {
	case errors.Is(err, lookup.ErrUnavailable):
		return nil, err
	case err != nil:
		return r.degraded(canonicalID, info), nil
	}

	return r.merge(canonicalID, record, info), nil
}

// search issues the keyword+year search; when a year was supplied and yields
// nothing, it retries once with the year omitted. Release-year metadata on
// source pages is frequently wrong by one for late-year releases.
func (r *Resolver) search(info page.ContentInfo) (string, *lookup.Record, error) {
	kind := lookup.KindFilm
	if info.IsSeries {
		kind = lookup.KindSeries
	}

	id, record, err := retry2(func() (string, *lookup.Record, error) {
		return r.service.Search(info.SearchTitle, info.Year, kind)
	})

	if errors.Is(err, lookup.ErrNotFound) && info.Year.IsPresent() {
		id, record, err = retry2(func() (string, *lookup.Record, error) {
			return r.service.Search(info.SearchTitle, mo.None[string](), kind)
		})
	}

	switch {
	case err == nil:
		return id, record, nil
	case errors.Is(err, lookup.ErrNotFound), errors.Is(err, lookup.ErrUnavailable):
		return "", nil, err
	default:
		return "", nil, fmt.Errorf("catalog search: %w", err)
	}
}

// titleMatches compares the record's title and alternates against the page's
// titles via the strict normalizer.
func (r *Resolver) titleMatches(record *lookup.Record, info page.ContentInfo) bool {
	for _, t := range record.Titles() {
		if title.Match(t, info.Title) || title.Match(t, info.SearchTitle) {
			return true
		}
	}
	return false
}

// merge derives the resolved snapshot from the catalog record and the
// locally known season/episode.
func (r *Resolver) merge(canonicalID string, record *lookup.Record, info page.ContentInfo) *Resolved {
	resolved := &Resolved{
		Info:                  info,
		CanonicalID:           canonicalID,
		RecordID:              record.RecordID,
		Catalogued:            record.Catalogued,
		IsSeries:              record.IsSeries || info.IsSeries,
		Watched:               record.Watched,
		Rated:                 record.Rated,
		HasUnwatchedBefore:    record.HasUnwatchedBefore,
		CurrentEpisodeWatched: record.CurrentEpisodeWatched,
		NextUnwatchedSeason:   record.NextUnwatchedSeason,
		NextUnwatchedEpisode:  record.NextUnwatchedEpisode,
	}

	// When the service supplies no explicit pointer, infer the next
	// unwatched episode conservatively, assuming sequential viewing.
	season, sok := info.Season.Get()
	episode, eok := info.Episode.Get()
	if resolved.NextUnwatchedEpisode.IsAbsent() && sok && eok {
		resolved.NextUnwatchedSeason = mo.Some(season)
		if record.CurrentEpisodeWatched {
			resolved.NextUnwatchedEpisode = mo.Some(episode + 1)
		} else {
			resolved.NextUnwatchedEpisode = mo.Some(episode)
		}
	}

	return resolved
}

// degraded builds a result for a known id whose verification could not
// complete: all progress flags defaulted and the snapshot explicitly marked.
func (r *Resolver) degraded(canonicalID string, info page.ContentInfo) *Resolved {
	return &Resolved{
		Info:        info,
		CanonicalID: canonicalID,
		IsSeries:    info.IsSeries,
		Degraded:    true,
	}
}

// retry invokes f a second time iff the first failure was transient.
// One retry is the sole backoff mechanism; remote calls are assumed to fail
// rather than hang.
func retry[T any](f func() (T, error)) (T, error) {
	v, err := f()
	if lookup.Transient(err) {
		log.Warnf("retrying after transient lookup failure: %v", err)
		v, err = f()
	}
	return v, err
}

// retry2 is retry for two-value operations.
func retry2[A, B any](f func() (A, B, error)) (A, B, error) {
	a, b, err := f()
	if lookup.Transient(err) {
		log.Warnf("retrying after transient lookup failure: %v", err)
		a, b, err = f()
	}
	return a, b, err
}
