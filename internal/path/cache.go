package path

import (
	"time"

	"mazebound/server/internal/grid"
)

const (
	// cacheTTL bounds how long a memoized route may be served. Agents replan
	// against moving targets every few hundred milliseconds, so two seconds
	// keeps the hit rate high without steering at stale geometry.
	cacheTTL = 2000 * time.Millisecond

	// defaultMaxEntries bounds cache memory; eviction happens at write time.
	defaultMaxEntries = 256
)

type routeKey struct {
	start  grid.Point
	target grid.Point
}

type routeEntry struct {
	route   []grid.Point
	target  grid.Point
	created time.Time
}

// routeCache memoizes planner queries by (start,target). It is shared by
// every agent of one level and lives exactly as long as the level: created
// with the planner, cleared on reset, discarded on teardown. Hits hand out
// defensive copies so callers can consume their route in place without
// corrupting the shared entry.
type routeCache struct {
	entries    map[routeKey]routeEntry
	maxEntries int
	clock      func() time.Time
}

func newRouteCache(maxEntries int, clock func() time.Time) *routeCache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if clock == nil {
		clock = time.Now
	}
	return &routeCache{
		entries:    make(map[routeKey]routeEntry),
		maxEntries: maxEntries,
		clock:      clock,
	}
}

func (c *routeCache) get(key routeKey) ([]grid.Point, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.created) >= cacheTTL {
		delete(c.entries, key)
		return nil, false
	}
	return clonePath(entry.route), true
}

func (c *routeCache) put(key routeKey, route []grid.Point) {
	now := c.clock()
	if len(c.entries) >= c.maxEntries {
		c.evictExpired(now)
	}
	if len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}
	c.entries[key] = routeEntry{
		route:   clonePath(route),
		target:  key.target,
		created: now,
	}
}

func (c *routeCache) evictExpired(now time.Time) {
	for key, entry := range c.entries {
		if now.Sub(entry.created) >= cacheTTL {
			delete(c.entries, key)
		}
	}
}

func (c *routeCache) evictOldest() {
	var (
		oldestKey routeKey
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.created.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.created
			found = true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}

func (c *routeCache) clear() {
	c.entries = make(map[routeKey]routeEntry)
}

func (c *routeCache) len() int {
	return len(c.entries)
}

func clonePath(route []grid.Point) []grid.Point {
	if route == nil {
		return nil
	}
	return append([]grid.Point(nil), route...)
}
