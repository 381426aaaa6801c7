package routing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"attribution/internal/instrumentation"
	"attribution/internal/models"
)

// ConfigStore is the backing store of advertiser routing configuration.
// It returns models.ErrConfigNotFound when an advertiser has no entry.
type ConfigStore interface {
	GetRoutingConfig(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error)
}

// ConfigCache is a per-advertiser TTL cache over a ConfigStore.
//
// At most one store fetch per advertiser is in flight. While an entry is being
// refreshed, other readers get the previous value; a reader with no previous
// value waits for the fetch.
type ConfigCache struct {
	store           ConfigStore
	ttl             time.Duration
	defaultStrategy models.Strategy
	logger          *slog.Logger
	metrics         *instrumentation.Metrics
	now             func() time.Time

	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
}

// DefaultMaxEntries is the map size past which expired entries are swept.
const DefaultMaxEntries = 10000

type cacheEntry struct {
	refresh sync.Mutex // held for the duration of a store fetch

	mu        sync.RWMutex
	cfg       models.AdvertiserRoutingConfig
	fetchedAt time.Time
	loaded    bool
}

// NewConfigCache creates a cache. A zero defaultStrategy means models.DefaultStrategy.
func NewConfigCache(store ConfigStore, ttl time.Duration, defaultStrategy models.Strategy, logger *slog.Logger, metrics *instrumentation.Metrics) *ConfigCache {
	if defaultStrategy == "" {
		defaultStrategy = models.DefaultStrategy
	}
	return &ConfigCache{
		store:           store,
		ttl:             ttl,
		defaultStrategy: defaultStrategy,
		logger:          logger.With("component", "config_cache"),
		metrics:         metrics,
		now:             time.Now,
		entries:         make(map[string]*cacheEntry),
		maxEntries:      DefaultMaxEntries,
	}
}

// Get returns the routing config for an advertiser. Advertisers without an
// entry resolve to the default config; that is never an error.
func (c *ConfigCache) Get(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error) {
	advertiserID = strings.TrimSpace(advertiserID)
	if advertiserID == "" {
		return models.AdvertiserRoutingConfig{}, &models.ValidationError{Field: "advertiser_id", Message: "advertiser_id parameter is required"}
	}

	e := c.entry(advertiserID)

	cfg, fresh, loaded := e.read(c.now(), c.ttl)
	if fresh {
		c.record("hit")
		return cfg, nil
	}

	if loaded {
		if !e.refresh.TryLock() {
			// Another request is refreshing this entry.
			c.record("stale")
			return cfg, nil
		}
	} else {
		e.refresh.Lock()
	}
	defer e.refresh.Unlock()

	// The entry may have been filled while we waited for the lock.
	if cfg, fresh, _ := e.read(c.now(), c.ttl); fresh {
		c.record("hit")
		return cfg, nil
	}

	fetched, err := c.fetch(ctx, advertiserID)
	if err != nil {
		if stale, _, ok := e.read(c.now(), c.ttl); ok {
			c.logger.Warn("config_refresh_failed_serving_stale",
				"advertiser_id", advertiserID,
				"error", err,
			)
			c.record("stale")
			return stale, nil
		}
		c.record("error")
		return models.AdvertiserRoutingConfig{}, models.Unavailable("config_store", err)
	}

	e.write(fetched, c.now())
	return fetched, nil
}

// Invalidate forces the next Get for an advertiser to wait for a fetch.
// The entry itself is kept so a refresh already in flight stays the only
// fetch for that key; its result satisfies the waiting readers.
func (c *ConfigCache) Invalidate(advertiserID string) {
	c.mu.Lock()
	e, ok := c.entries[strings.TrimSpace(advertiserID)]
	c.mu.Unlock()
	if ok {
		e.reset()
	}
}

func (c *ConfigCache) fetch(ctx context.Context, advertiserID string) (models.AdvertiserRoutingConfig, error) {
	start := time.Now()

	cfg, err := c.store.GetRoutingConfig(ctx, advertiserID)
	if errors.Is(err, models.ErrConfigNotFound) {
		c.logger.Info("config_not_found_using_default",
			"advertiser_id", advertiserID,
			"strategy", c.defaultStrategy,
		)
		c.record("default")
		return models.DefaultRoutingConfig(advertiserID, c.defaultStrategy), nil
	}
	if err != nil {
		return models.AdvertiserRoutingConfig{}, err
	}

	c.logger.Debug("config_cache_refreshed",
		"advertiser_id", advertiserID,
		"strategy", cfg.Strategy,
		"exposure_source", cfg.ExposureSource,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	c.record("fetched")
	return cfg, nil
}

func (c *ConfigCache) entry(advertiserID string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[advertiserID]
	if !ok {
		if len(c.entries) >= c.maxEntries {
			c.sweepLocked()
		}
		e = &cacheEntry{}
		c.entries[advertiserID] = e
	}
	return e
}

// sweepLocked drops entries that are expired or were never loaded and have
// no fetch running. Advertiser IDs come from callers, so without this the map
// grows with every unknown ID. c.mu must be held.
func (c *ConfigCache) sweepLocked() {
	now := c.now()
	removed := 0
	for id, e := range c.entries {
		if _, fresh, _ := e.read(now, c.ttl); fresh {
			continue
		}
		if !e.refresh.TryLock() {
			continue
		}
		delete(c.entries, id)
		e.refresh.Unlock()
		removed++
	}
	if removed > 0 {
		c.logger.Debug("config_cache_swept", "removed", removed, "remaining", len(c.entries))
	}
}

func (c *ConfigCache) record(result string) {
	if c.metrics != nil {
		c.metrics.RecordConfigFetch(result)
	}
}

// read returns the cached value and whether it is fresh and whether one exists at all.
func (e *cacheEntry) read(now time.Time, ttl time.Duration) (models.AdvertiserRoutingConfig, bool, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.loaded {
		return models.AdvertiserRoutingConfig{}, false, false
	}
	return e.cfg, now.Sub(e.fetchedAt) < ttl, true
}

func (e *cacheEntry) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = models.AdvertiserRoutingConfig{}
	e.fetchedAt = time.Time{}
	e.loaded = false
}

func (e *cacheEntry) write(cfg models.AdvertiserRoutingConfig, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	e.fetchedAt = now
	e.loaded = true
}
