package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/cache"
	"github.com/voyagen/tvcatalog/internal/models"
)

// unreachableCache points at a closed port so every cache call fails fast.
func unreachableCache(t *testing.T) *cache.Redis {
	t.Helper()
	c, err := cache.New("redis://127.0.0.1:1/0?dial_timeout=50ms&max_retries=-1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCachedStore_FallsThroughWhenCacheDown(t *testing.T) {
	inner := newTestStore(t)
	s := NewCachedStore(inner, unreachableCache(t), zerolog.Nop())
	ctx := context.Background()

	src := models.NewCustomSource("custom")
	id, err := s.CreateOrFindSource(ctx, &src)
	require.NoError(t, err)

	_, err = s.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("one", id)})
	require.NoError(t, err)

	sources, err := s.GetSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)

	enabled, err := s.GetEnabledSources(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 1)

	got, err := s.Search(ctx, models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream},
		SourceIDs:  []int64{id},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, s.UpdateSettings(ctx, map[string]string{models.SettingVolume: "10"}))
	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", settings[models.SettingVolume])

	assert.ErrorIs(t, s.DeleteSource(ctx, 404), ErrNotFound)
}

func TestFilterHash(t *testing.T) {
	a := models.Filters{Page: 1, SourceIDs: []int64{1}}
	b := models.Filters{Page: 2, SourceIDs: []int64{1}}
	assert.Equal(t, filterHash(a), filterHash(a))
	assert.NotEqual(t, filterHash(a), filterHash(b))
	assert.Len(t, filterHash(a), 16)
}

func newCachedStore(t *testing.T) (*CachedStore, *SQLite, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	inner := newTestStore(t)
	return NewCachedStore(inner, c, zerolog.Nop()), inner, mr
}

func TestCachedStore_SearchServedFromCache(t *testing.T) {
	s, inner, mr := newCachedStore(t)
	ctx := context.Background()
	src := seedSource(t, inner, "custom")
	f := models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream},
		SourceIDs:  []int64{src},
	}

	firstID, err := s.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("first", src)})
	require.NoError(t, err)

	got, err := s.Search(ctx, f)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, mr.Exists(cache.Key("search", filterHash(f))))

	// A write behind the decorator's back is not visible until invalidation.
	_, err = inner.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("second", src)})
	require.NoError(t, err)
	got, err = s.Search(ctx, f)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, s.FavoriteChannel(ctx, firstID, true))
	assert.False(t, mr.Exists(cache.Key("search", filterHash(f))))

	got, err = s.Search(ctx, f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, ch := range got {
		if ch.ID == firstID {
			assert.True(t, ch.Favorite)
		}
	}
}

func TestCachedStore_DoTxInvalidatesSources(t *testing.T) {
	s, inner, _ := newCachedStore(t)
	ctx := context.Background()
	seedSource(t, inner, "first")

	sources, err := s.GetSources(ctx)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	enabled, err := s.GetEnabledSources(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)

	seedSource(t, inner, "second")
	sources, err = s.GetSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 1, "served from cache")

	require.NoError(t, s.DoTx(ctx, func(tx *Tx) error {
		src := models.NewCustomSource("third")
		_, err := tx.CreateOrFindSource(ctx, &src)
		return err
	}))

	sources, err = s.GetSources(ctx)
	require.NoError(t, err)
	assert.Len(t, sources, 3)
	enabled, err = s.GetEnabledSources(ctx)
	require.NoError(t, err)
	assert.Len(t, enabled, 3)
}

func TestCachedStore_FailedDoTxKeepsCache(t *testing.T) {
	s, inner, mr := newCachedStore(t)
	ctx := context.Background()
	seedSource(t, inner, "first")

	_, err := s.GetSources(ctx)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.DoTx(ctx, func(tx *Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.True(t, mr.Exists(keySources))
}

func TestCachedStore_UpdateSettingsInvalidates(t *testing.T) {
	s, inner, mr := newCachedStore(t)
	ctx := context.Background()
	require.NoError(t, inner.UpdateSettings(ctx, map[string]string{models.SettingVolume: "10"}))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", settings[models.SettingVolume])

	require.NoError(t, inner.UpdateSettings(ctx, map[string]string{models.SettingVolume: "20"}))
	settings, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", settings[models.SettingVolume], "served from cache")

	require.NoError(t, s.UpdateSettings(ctx, map[string]string{models.SettingVolume: "30"}))
	assert.False(t, mr.Exists(keySettings))

	settings, err = s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30", settings[models.SettingVolume])
}
