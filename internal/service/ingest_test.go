package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/fetcher"
	"github.com/voyagen/tvcatalog/internal/models"
	"github.com/voyagen/tvcatalog/internal/store"
)

const playlist = `#EXTM3U
#EXTINF:-1 tvg-id="one" group-title="News",News One
#EXTVLCOPT:http-user-agent=Player/1.0
http://example.com/1.m3u8
#EXTINF:-1 tvg-id="two" group-title="News",News Two
http://example.com/2.m3u8
#EXTINF:-1 tvg-id="three" group-title="Sports",Sports One
http://example.com/3.m3u8
#EXTINF:-1 tvg-id="three" group-title="Sports",Sports One
http://example.com/3.m3u8
`

func newStore(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "db.sqlite"), store.PoolOptions{
		Size:           2,
		AcquireTimeout: time.Second,
		Logger:         zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func parse(t *testing.T) []fetcher.Entry {
	t.Helper()
	entries, err := fetcher.ParseM3U(strings.NewReader(playlist), false)
	require.NoError(t, err)
	return entries
}

func liveSearch(sourceID int64) models.Filters {
	return models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream},
		SourceIDs:  []int64{sourceID},
	}
}

func TestImport(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	src := models.Source{Name: "playlist", SourceType: models.SourceTypeM3ULink, URL: strPtr("http://x"), Enabled: true}

	res, err := Import(ctx, s, src, parse(t))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Parsed)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 2, res.Groups)

	chans, err := s.Search(ctx, liveSearch(res.SourceID))
	require.NoError(t, err)
	require.Len(t, chans, 3)
	require.NotNil(t, chans[0].GroupID)
	assert.Equal(t, *chans[0].GroupID, *chans[1].GroupID)

	h, err := s.GetChannelHeadersByID(ctx, chans[0].ID)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "Player/1.0", *h.UserAgent)

	saved, err := s.GetSourceByID(ctx, res.SourceID)
	require.NoError(t, err)
	assert.NotNil(t, saved.LastUpdated)
}

func TestImport_RefreshKeepsFavorites(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	src := models.Source{Name: "playlist", SourceType: models.SourceTypeM3ULink, Enabled: true}

	first, err := Import(ctx, s, src, parse(t))
	require.NoError(t, err)
	chans, err := s.Search(ctx, liveSearch(first.SourceID))
	require.NoError(t, err)
	fav := chans[0]
	require.NoError(t, s.FavoriteChannel(ctx, fav.ID, true))

	second, err := Import(ctx, s, src, parse(t))
	require.NoError(t, err)
	assert.Equal(t, first.SourceID, second.SourceID)
	assert.Equal(t, 2, second.Inserted, "the favorite is kept, not re-inserted")

	n, err := s.GetChannelCountBySource(ctx, first.SourceID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	kept, err := s.GetChannelByID(ctx, fav.ID)
	require.NoError(t, err)
	assert.True(t, kept.Favorite)
	assert.Equal(t, *fav.GroupID, *kept.GroupID)

	chans, err = s.Search(ctx, liveSearch(first.SourceID))
	require.NoError(t, err)
	for _, ch := range chans {
		if ch.Name == "News Two" {
			assert.Equal(t, *fav.GroupID, *ch.GroupID, "new rows join the surviving group")
		}
	}
}

func TestImport_Cancelled(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Import(ctx, s, models.Source{Name: "p", Enabled: true}, parse(t))
	require.Error(t, err)

	sources, err := s.GetSources(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestIngest_Link(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(playlist))
	}))
	defer srv.Close()

	s := newStore(t)
	src := models.Source{Name: "link", SourceType: models.SourceTypeM3ULink, URL: strPtr(srv.URL), Enabled: true}
	res, err := Ingest(context.Background(), s, src, fetcher.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
}

func TestIngest_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.m3u")
	require.NoError(t, os.WriteFile(path, []byte(playlist), 0o600))

	s := newStore(t)
	src := models.Source{Name: "file", SourceType: models.SourceTypeM3U, URL: &path, UseTvgID: boolPtr(true), Enabled: true}
	res, err := Ingest(context.Background(), s, src, fetcher.Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)

	chans, err := s.Search(context.Background(), liveSearch(res.SourceID))
	require.NoError(t, err)
	require.NotEmpty(t, chans)
	assert.Equal(t, "one", chans[0].Name)
}

func TestIngest_NoLocation(t *testing.T) {
	s := newStore(t)
	_, err := Ingest(context.Background(), s, models.Source{Name: "empty"}, fetcher.Options{})
	assert.ErrorIs(t, err, ErrNoLocation)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
