package db

import (
	"log"
	"sync"

	"github.com/dgraph-io/ristretto"
)

// Cache keys are tracked in concurrent sets so all cached entries of one
// kind can be cleared together: scenario trees are invalidated by a write
// to any record in the tree, and projections depend on scenario trees.
var (
	Cache             *ristretto.Cache
	ScenarioCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
	ProjectionCacheKeys = struct {
		sync.RWMutex
		m map[string]struct{}
	}{m: make(map[string]struct{})}
)

func InitCache() {
	var err error
	Cache, err = ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}
}

// Scenario Cache Functions
func SetScenarioCache(cacheKey string, value interface{}) {
	ScenarioCacheKeys.Lock()
	ScenarioCacheKeys.m[cacheKey] = struct{}{}
	ScenarioCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelScenarioCache(cacheKey string) {
	ScenarioCacheKeys.Lock()
	delete(ScenarioCacheKeys.m, cacheKey)
	ScenarioCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllScenarioCaches() {
	ScenarioCacheKeys.Lock()
	for key := range ScenarioCacheKeys.m {
		Cache.Del(key)
	}
	ScenarioCacheKeys.m = make(map[string]struct{})
	ScenarioCacheKeys.Unlock()
}

// Projection Cache Functions
func SetProjectionCache(cacheKey string, value interface{}) {
	ProjectionCacheKeys.Lock()
	ProjectionCacheKeys.m[cacheKey] = struct{}{}
	ProjectionCacheKeys.Unlock()
	Cache.Set(cacheKey, value, 1)
}

func DelProjectionCache(cacheKey string) {
	ProjectionCacheKeys.Lock()
	delete(ProjectionCacheKeys.m, cacheKey)
	ProjectionCacheKeys.Unlock()
	Cache.Del(cacheKey)
}

func ClearAllProjectionCaches() {
	ProjectionCacheKeys.Lock()
	for key := range ProjectionCacheKeys.m {
		Cache.Del(key)
	}
	ProjectionCacheKeys.m = make(map[string]struct{})
	ProjectionCacheKeys.Unlock()
}
