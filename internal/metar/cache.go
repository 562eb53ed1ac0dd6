package metar

import (
	"encoding/json"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Store is the durable client-local persistence boundary behind the cache.
// The persisted form is an opaque serialized entry.
type Store interface {
	ReadPersisted() (data []byte, ok bool, err error)
	WritePersisted(data []byte) error
	ClearPersisted() error
}

// CacheEntry is the single snapshot the cache holds: the raw station reports
// from the last successful fetch and when they were fetched. Entries are
// never mutated in place; every save fully replaces the previous entry.
type CacheEntry struct {
	Stations  []RawStationReport `json:"data"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Cache is a time-bounded snapshot of the last successful fetch that
// survives a process restart. It stores raw reports only, so a cache hit
// always re-runs the full decode path before display.
type Cache struct {
	store  Store
	maxAge time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewCache creates a cache over the given store. Entries older than maxAge
// are treated as misses and purged.
func NewCache(store Store, maxAge time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		store:  store,
		maxAge: maxAge,
		logger: log.Named("metar-cache"),
		now:    time.Now,
	}
}

// Load returns the cached entry. It misses, eagerly invalidating, when no
// entry exists, the entry is stale, or the persisted form cannot be parsed.
func (c *Cache) Load() (*CacheEntry, bool) {
	data, ok, err := c.store.ReadPersisted()
	if err != nil {
		c.logger.Warn("Failed to read persisted cache", logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entries are silently treated as a miss and purged
		c.logger.Warn("Purging corrupt cache entry", logger.Error(err))
		c.Invalidate()
		return nil, false
	}

	age := c.now().Sub(entry.FetchedAt)
	if age >= c.maxAge {
		c.logger.Debug("Cache entry stale, purging",
			logger.Duration("age", age),
			logger.Duration("max_age", c.maxAge))
		c.Invalidate()
		return nil, false
	}

	c.logger.Debug("Cache hit",
		logger.Int("stations", len(entry.Stations)),
		logger.Duration("age", age))
	return &entry, true
}

// Save replaces any existing entry with a fresh one stamped at the current
// time
func (c *Cache) Save(stations []RawStationReport) {
	entry := CacheEntry{
		Stations:  stations,
		FetchedAt: c.now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("Failed to serialize cache entry", logger.Error(err))
		return
	}
	if err := c.store.WritePersisted(data); err != nil {
		c.logger.Error("Failed to persist cache entry", logger.Error(err))
		return
	}

	c.logger.Debug("Cache entry saved",
		logger.Int("stations", len(stations)),
		logger.Time("fetched_at", entry.FetchedAt))
}

// Invalidate removes the persisted entry
func (c *Cache) Invalidate() {
	if err := c.store.ClearPersisted(); err != nil {
		c.logger.Warn("Failed to clear persisted cache", logger.Error(err))
	}
}
