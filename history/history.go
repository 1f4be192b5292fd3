// Package history implements the local resolution cache: a bounded,
// most-recent-first store of previously resolved canonical identifiers.
//
// The cache is a pure optimization. Every hit is still validated against the
// catalog record's title before being trusted, because a URL stem can be
// reused by a site for different content over time.
package history

import (
	"sync"
	"time"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/key"
	"github.com/kinotag-cli/kinotag/page"
	"github.com/kinotag-cli/kinotag/title"
	"github.com/kinotag-cli/kinotag/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Entry records one successful resolution. Entries are never mutated;
// a repeated resolution re-inserts a fresh entry at the front.
type Entry struct {
	Title       string            `json:"title"`
	Year        mo.Option[string] `json:"year"`
	CanonicalID string            `json:"canonicalId"`
	URLStem     mo.Option[string] `json:"urlStem"`
	SiteID      string            `json:"siteId"`
	InsertedAt  time.Time         `json:"insertedAt"`
}

// cacher persists the most-recent-first entry list.
var cacher = gache.New[[]*Entry](
	&gache.Options{
		Path:       where.Resolutions(),
		FileSystem: &filesystem.GacheFs{},
	},
)

var mu sync.Mutex

// capacity returns the configured entry limit, guarding against nonsense values.
func capacity() int {
	if c := viper.GetInt(key.CacheCapacity); c > 0 {
		return c
	}
	return 100
}

// Entries returns the cached resolutions, most recent first.
func Entries() ([]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return nil, nil
	}
	return cached, nil
}

// Lookup returns the canonical identifier previously resolved for the given
// content, or None. Match order: exact (normalized title, year) against any
// site; then (urlStem, site, year); then (urlStem, site) ignoring year.
// The first matching entry wins.
func Lookup(info page.ContentInfo) mo.Option[string] {
	entries, err := Entries()
	if err != nil {
		return mo.None[string]()
	}

	normalized := title.Normalize(info.Title)

	for _, e := range entries {
		if title.Normalize(e.Title) == normalized && e.Year == info.Year {
			return mo.Some(e.CanonicalID)
		}
	}

	stem, ok := info.URLStem.Get()
	if !ok {
		return mo.None[string]()
	}

	for _, e := range entries {
		if e.URLStem.OrElse("") == stem && e.SiteID == info.SiteID && e.Year == info.Year {
			return mo.Some(e.CanonicalID)
		}
	}

	for _, e := range entries {
		if e.URLStem.OrElse("") == stem && e.SiteID == info.SiteID {
			return mo.Some(e.CanonicalID)
		}
	}

	return mo.None[string]()
}

// Save prepends a new entry and truncates the list to capacity, evicting the
// oldest insertions first. Re-saving an existing pair is harmless; writes are
// append-only from the caller's perspective.
func Save(info page.ContentInfo, canonicalID string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := Entries()
	if err != nil {
		return err
	}

	entry := &Entry{
		Title:       info.Title,
		Year:        info.Year,
		CanonicalID: canonicalID,
		URLStem:     info.URLStem,
		SiteID:      info.SiteID,
		InsertedAt:  time.Now(),
	}

	entries = append([]*Entry{entry}, entries...)
	if limit := capacity(); len(entries) > limit {
		entries = entries[:limit]
	}

	return cacher.Set(entries)
}

// Invalidate removes the entries mapping the given content to the given
// identifier. Other entries sharing the same URL stem are deliberately kept:
// only the candidate that failed verification is known to be stale.
func Invalidate(info page.ContentInfo, canonicalID string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := Entries()
	if err != nil {
		return err
	}

	normalized := title.Normalize(info.Title)
	remaining := lo.Reject(entries, func(e *Entry, _ int) bool {
		if e.CanonicalID != canonicalID {
			return false
		}
		if title.Normalize(e.Title) == normalized && e.Year == info.Year {
			return true
		}
		stem, ok := info.URLStem.Get()
		return ok && e.URLStem.OrElse("") == stem && e.SiteID == info.SiteID
	})

	if len(remaining) == len(entries) {
		return nil
	}
	return cacher.Set(remaining)
}

// Clear removes every cached resolution.
func Clear() error {
	mu.Lock()
	defer mu.Unlock()
	return cacher.Set(nil)
}
