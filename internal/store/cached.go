package store

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/voyagen/tvcatalog/internal/cache"
	"github.com/voyagen/tvcatalog/internal/models"
)

// Cache TTLs for different entity types.
const (
	ttlSources  = 2 * time.Minute
	ttlSearch   = 1 * time.Minute
	ttlSettings = 5 * time.Minute
)

var (
	keySources        = cache.Key("sources", "all")
	keyEnabledSources = cache.Key("sources", "enabled")
	keySettings       = cache.Key("settings")
	patternSearch     = cache.Key("search", "*")
	patternAll        = cache.Key("*")
)

// CachedStore wraps a Store with a Redis read-through cache for browse
// queries, source lists and settings. Writes go to the inner store first
// and then drop the affected keys. Cache failures never fail a call.
type CachedStore struct {
	Store
	cache *cache.Redis
	log   zerolog.Logger
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis, log zerolog.Logger) *CachedStore {
	return &CachedStore{Store: inner, cache: c, log: log}
}

func cached[T any](ctx context.Context, c *CachedStore, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	v, err := cache.Load[T](ctx, c.cache, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		c.log.Debug().Err(err).Str("key", key).Msg("cache get")
	}
	v, err = load()
	if err != nil {
		return v, err
	}
	if err := c.cache.Store(ctx, key, v, ttl); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("cache set")
	}
	return v, nil
}

// --- cached read operations ---

func (c *CachedStore) Search(ctx context.Context, f models.Filters) ([]models.Channel, error) {
	return cached(ctx, c, cache.Key("search", filterHash(f)), ttlSearch, func() ([]models.Channel, error) {
		return c.Store.Search(ctx, f)
	})
}

func (c *CachedStore) GetSources(ctx context.Context) ([]models.Source, error) {
	return cached(ctx, c, keySources, ttlSources, func() ([]models.Source, error) {
		return c.Store.GetSources(ctx)
	})
}

func (c *CachedStore) GetEnabledSources(ctx context.Context) ([]models.Source, error) {
	return cached(ctx, c, keyEnabledSources, ttlSources, func() ([]models.Source, error) {
		return c.Store.GetEnabledSources(ctx)
	})
}

func (c *CachedStore) GetSettings(ctx context.Context) (map[string]string, error) {
	return cached(ctx, c, keySettings, ttlSettings, func() (map[string]string, error) {
		return c.Store.GetSettings(ctx)
	})
}

// --- write operations with cache invalidation ---

func (c *CachedStore) DoTx(ctx context.Context, fn func(*Tx) error) error {
	if err := c.Store.DoTx(ctx, fn); err != nil {
		return err
	}
	c.invalidateSources(ctx)
	return nil
}

func (c *CachedStore) CreateOrFindSource(ctx context.Context, src *models.Source) (int64, error) {
	id, err := c.Store.CreateOrFindSource(ctx, src)
	if err != nil {
		return 0, err
	}
	c.invalidateSources(ctx)
	return id, nil
}

func (c *CachedStore) SetSourceEnabled(ctx context.Context, sourceID int64, enabled bool) error {
	return c.afterSourceWrite(ctx, c.Store.SetSourceEnabled(ctx, sourceID, enabled))
}

func (c *CachedStore) UpdateSource(ctx context.Context, sourceID int64, fields SourceUpdate) error {
	return c.afterSourceWrite(ctx, c.Store.UpdateSource(ctx, sourceID, fields))
}

func (c *CachedStore) UpdateSourceLastUpdated(ctx context.Context, sourceID int64) error {
	return c.afterSourceWrite(ctx, c.Store.UpdateSourceLastUpdated(ctx, sourceID))
}

func (c *CachedStore) WipeSourceChannels(ctx context.Context, sourceID int64) error {
	return c.afterSourceWrite(ctx, c.Store.WipeSourceChannels(ctx, sourceID))
}

func (c *CachedStore) DeleteSource(ctx context.Context, sourceID int64) error {
	return c.afterSourceWrite(ctx, c.Store.DeleteSource(ctx, sourceID))
}

func (c *CachedStore) FavoriteChannel(ctx context.Context, channelID int64, favorite bool) error {
	return c.afterChannelWrite(ctx, c.Store.FavoriteChannel(ctx, channelID, favorite))
}

func (c *CachedStore) AddCustomChannel(ctx context.Context, ch models.CustomChannel) (int64, error) {
	id, err := c.Store.AddCustomChannel(ctx, ch)
	return id, c.afterChannelWrite(ctx, err)
}

func (c *CachedStore) EditCustomChannel(ctx context.Context, ch models.CustomChannel) error {
	return c.afterChannelWrite(ctx, c.Store.EditCustomChannel(ctx, ch))
}

func (c *CachedStore) DeleteCustomChannel(ctx context.Context, channelID int64) error {
	return c.afterChannelWrite(ctx, c.Store.DeleteCustomChannel(ctx, channelID))
}

func (c *CachedStore) AddCustomGroup(ctx context.Context, g models.Group) (int64, error) {
	id, err := c.Store.AddCustomGroup(ctx, g)
	return id, c.afterChannelWrite(ctx, err)
}

func (c *CachedStore) EditCustomGroup(ctx context.Context, g models.Group) error {
	return c.afterChannelWrite(ctx, c.Store.EditCustomGroup(ctx, g))
}

func (c *CachedStore) DeleteCustomGroup(ctx context.Context, groupID int64, newGroupID *int64, reassign bool) error {
	return c.afterChannelWrite(ctx, c.Store.DeleteCustomGroup(ctx, groupID, newGroupID, reassign))
}

func (c *CachedStore) UpdateSettings(ctx context.Context, values map[string]string) error {
	if err := c.Store.UpdateSettings(ctx, values); err != nil {
		return err
	}
	c.invalidate(ctx, keySettings)
	return nil
}

func (c *CachedStore) DeleteDatabase(ctx context.Context) error {
	if err := c.Store.DeleteDatabase(ctx); err != nil {
		return err
	}
	c.invalidatePattern(ctx, patternAll)
	return nil
}

// --- helpers ---

func (c *CachedStore) afterSourceWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	c.invalidateSources(ctx)
	return nil
}

func (c *CachedStore) afterChannelWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	c.invalidatePattern(ctx, patternSearch)
	return nil
}

// invalidateSources drops source lists and every search page, since source
// writes can remove channels and groups.
func (c *CachedStore) invalidateSources(ctx context.Context) {
	c.invalidate(ctx, keySources, keyEnabledSources)
	c.invalidatePattern(ctx, patternSearch)
}

// invalidate deletes exact cache keys, logging any errors.
func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := c.cache.Drop(ctx, keys...); err != nil {
		c.log.Debug().Err(err).Strs("keys", keys).Msg("cache drop")
	}
}

// invalidatePattern deletes all keys matching the given glob patterns.
func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := c.cache.DropMatching(ctx, p); err != nil {
			c.log.Debug().Err(err).Str("pattern", p).Msg("cache drop matching")
		}
	}
}

// filterHash produces a short deterministic hash of f for use in a cache key.
func filterHash(f models.Filters) string {
	raw, _ := json.Marshal(f)
	h := sha256.Sum256(raw)
	return fmt.Sprintf("%x", h[:8])
}
