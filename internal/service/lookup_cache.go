package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// DefaultLookupTTL bounds how stale a cached month or category list can get
const DefaultLookupTTL = 5 * time.Minute

const (
	lookupCategories = "categories"
	lookupMonths     = "months"
)

// LookupCache keeps the small per-user lists the dashboard asks for on every load.
// A nil *LookupCache is valid and always loads from the repository.
//
// Each user has a generation bumped by Invalidate. A load that started before
// an invalidation is returned to its caller but never written back, so a
// stale list cannot outlive the transaction that changed it.
type LookupCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu          sync.Mutex
	generations map[int64]uint64
}

// NewLookupCache creates a LookupCache whose entries expire after ttl
func NewLookupCache(ttl time.Duration) (*LookupCache, error) {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        100000,
		MaxCost:            10000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create lookup cache: %w", err)
	}
	return &LookupCache{cache: cache, ttl: ttl, generations: make(map[int64]uint64)}, nil
}

// Categories returns the user's cached categories, loading them on a miss
func (c *LookupCache) Categories(userID int64, load func() ([]string, error)) ([]string, error) {
	return c.strings(userID, lookupCategories, load)
}

// Months returns the user's cached month names, loading them on a miss
func (c *LookupCache) Months(userID int64, load func() ([]string, error)) ([]string, error) {
	return c.strings(userID, lookupMonths, load)
}

// Invalidate drops everything cached for a user. Called after the user's transactions change.
func (c *LookupCache) Invalidate(userID int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[userID]++
	c.cache.Del(lookupKey(lookupCategories, userID))
	c.cache.Del(lookupKey(lookupMonths, userID))
	c.cache.Wait()
}

// Close stops the cache's background goroutines
func (c *LookupCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}

func (c *LookupCache) strings(userID int64, kind string, load func() ([]string, error)) ([]string, error) {
	if c == nil {
		return load()
	}
	key := lookupKey(kind, userID)
	if v, ok := c.cache.Get(key); ok {
		if values, ok := v.([]string); ok {
			return append([]string(nil), values...), nil
		}
	}

	generation := c.generation(userID)
	values, err := load()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[userID] == generation {
		c.cache.SetWithTTL(key, append([]string(nil), values...), 1, c.ttl)
		c.cache.Wait()
	}
	return values, nil
}

func (c *LookupCache) generation(userID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userID]
}

func lookupKey(kind string, userID int64) string {
	return fmt.Sprintf("%s:%d", kind, userID)
}
