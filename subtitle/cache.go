package subtitle

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/reel-cli/reel/filesystem"
	"github.com/reel-cli/reel/where"
	"github.com/samber/mo"
)

type searchData struct {
	Searches map[string][]Candidate `json:"searches"`
}

// searchCache remembers search results per endpoint URL.
type searchCache struct {
	internal *gache.Cache[*searchData]
	mu       sync.RWMutex
}

func newSearchCache(path string, lifetime time.Duration) *searchCache {
	return &searchCache{
		internal: gache.New[*searchData](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

var defaultSearchCache = newSearchCache(where.SubtitleSearches(), time.Hour)

func (c *searchCache) Get(key string) mo.Option[[]Candidate] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[[]Candidate]()
	}

	found, ok := data.Searches[key]
	if !ok {
		return mo.None[[]Candidate]()
	}
	return mo.Some(found)
}

func (c *searchCache) Set(key string, candidates []Candidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil || data.Searches == nil {
		data = &searchData{Searches: make(map[string][]Candidate)}
	}
	data.Searches[key] = candidates
	return c.internal.Set(data)
}
