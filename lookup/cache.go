// Package lookup defines the boundary to the canonical movie catalog service.
package lookup

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/kinotag-cli/kinotag/filesystem"
	"github.com/kinotag-cli/kinotag/title"
	"github.com/kinotag-cli/kinotag/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
)

// failData is the persisted format of the negative search cache.
type failData struct {
	Keywords map[string]bool `json:"keywords"`
}

// failCache is a short-lived negative cache of search queries that produced
// no results, mitigating redundant pressure on the catalog API when a page
// keeps re-triggering for unidentifiable content.
//
// Entries are keyed by keyword and year together: a keyword that found
// nothing for one year may still match with the year omitted, and the
// year-omitted retry must be able to reach the service.
type failCache struct {
	internal *gache.Cache[*failData]
	mu       sync.RWMutex
}

func failKey(keyword string, year mo.Option[string]) string {
	return title.Normalize(keyword) + "#" + year.OrElse("")
}

func (c *failCache) Get(keyword string, year mo.Option[string]) mo.Option[bool] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[bool]()
	}

	if failed, ok := data.Keywords[failKey(keyword, year)]; ok {
		return mo.Some(failed)
	}
	return mo.None[bool]()
}

func (c *failCache) Set(keyword string, year mo.Option[string], failed bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = &failData{Keywords: make(map[string]bool)}
	}

	data.Keywords[failKey(keyword, year)] = failed
	return c.internal.Set(data)
}

var failCacher = &failCache{
	internal: gache.New[*failData](
		&gache.Options{
			Path:       filepath.Join(where.Cache(), "lookup_fail_cache.json"),
			Lifetime:   time.Minute,
			FileSystem: &filesystem.GacheFs{},
		},
	),
}
