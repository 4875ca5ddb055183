// Package cache provides the per-run engine query cache.
//
// The cache exists to avoid redundant engine calls when several claims in one
// artifact reference the same position. It is scoped to a single verification
// run: callers construct a fresh cache per run and discard it afterward.
// Nothing here is ever persisted or shared across runs.
package cache

import (
	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/tavla/internal/model"
)

// QueryCache memoizes engine responses keyed by canonical position.
// Implementations must be safe for concurrent use; duplicate engine calls on
// a get/put race are acceptable.
type QueryCache interface {
	Get(key string) (*model.EngineResponse, bool)
	Put(key string, resp *model.EngineResponse)
	Len() int
}

// RunCache is the standard QueryCache for one verification run.
// Entries never expire: the cache's lifetime is the run itself.
type RunCache struct {
	store *gocache.Cache
}

// NewRunCache creates an empty cache for a single verification run
func NewRunCache() *RunCache {
	return &RunCache{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a memoized engine response
func (c *RunCache) Get(key string) (*model.EngineResponse, bool) {
	if val, found := c.store.Get(key); found {
		return val.(*model.EngineResponse), true
	}
	return nil, false
}

// Put memoizes an engine response
func (c *RunCache) Put(key string, resp *model.EngineResponse) {
	c.store.Set(key, resp, gocache.NoExpiration)
}

// Len returns the number of distinct positions cached so far
func (c *RunCache) Len() int {
	return c.store.ItemCount()
}
