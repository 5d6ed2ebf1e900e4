package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/models"
)

func TestInsertChannel_IgnoresDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "src")

	ch := liveChannel("one", src)
	require.NoError(t, s.DoTx(ctx, func(tx *Tx) error {
		id, inserted, err := tx.InsertChannel(ctx, &ch)
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NotZero(t, id)

		id, inserted, err = tx.InsertChannel(ctx, &ch)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.Zero(t, id)
		return nil
	}))

	n, err := s.GetChannelCountBySource(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := s.ChannelExists(ctx, "one", *ch.URL, src)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = s.ChannelExists(ctx, "one", "http://elsewhere", src)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDoTx_RollsBackImport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "src")

	err := s.DoTx(ctx, func(tx *Tx) error {
		ch := liveChannel("one", src)
		if _, _, err := tx.InsertChannel(ctx, &ch); err != nil {
			return err
		}
		bad := liveChannel("two", 404)
		_, _, err := tx.InsertChannel(ctx, &bad)
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConstraint)

	n, err := s.GetChannelCountBySource(ctx, src)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddCustomChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")

	cc := models.CustomChannel{
		Data: liveChannel("mine", src),
		Headers: &models.ChannelHttpHeaders{
			Referrer:  strPtr("http://ref"),
			IgnoreSSL: boolPtr(true),
		},
	}
	id, err := s.AddCustomChannel(ctx, cc)
	require.NoError(t, err)

	h, err := s.GetChannelHeadersByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, id, h.ChannelID)
	assert.Equal(t, "http://ref", *h.Referrer)
	assert.Nil(t, h.UserAgent)
	assert.True(t, *h.IgnoreSSL)

	_, err = s.AddCustomChannel(ctx, cc)
	assert.ErrorIs(t, err, ErrConstraint)

	bare, err := s.AddCustomChannel(ctx, models.CustomChannel{
		Data:    liveChannel("bare", src),
		Headers: &models.ChannelHttpHeaders{},
	})
	require.NoError(t, err)
	h, err = s.GetChannelHeadersByID(ctx, bare)
	require.NoError(t, err)
	assert.Nil(t, h, "empty headers are not stored")
}

func TestEditCustomChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")

	id, err := s.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("old", src)})
	require.NoError(t, err)

	edited := liveChannel("new", src)
	edited.ID = id
	edited.Image = strPtr("logo.png")
	edited.MediaType = models.MediaTypeMovie
	require.NoError(t, s.EditCustomChannel(ctx, models.CustomChannel{
		Data:    edited,
		Headers: &models.ChannelHttpHeaders{UserAgent: strPtr("ua/1")},
	}))

	got, err := s.GetChannelByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.Equal(t, "logo.png", *got.Image)
	assert.Equal(t, models.MediaTypeMovie, got.MediaType)

	h, err := s.GetChannelHeadersByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, "ua/1", *h.UserAgent)

	// Replacing headers overwrites every field.
	require.NoError(t, s.EditCustomChannel(ctx, models.CustomChannel{
		Data:    edited,
		Headers: &models.ChannelHttpHeaders{HTTPOrigin: strPtr("http://origin")},
	}))
	h, err = s.GetChannelHeadersByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Nil(t, h.UserAgent)
	assert.Equal(t, "http://origin", *h.HTTPOrigin)

	// No headers removes the stored row.
	require.NoError(t, s.EditCustomChannel(ctx, models.CustomChannel{Data: edited}))
	h, err = s.GetChannelHeadersByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, h)

	missing := edited
	missing.ID = 404
	assert.ErrorIs(t, s.EditCustomChannel(ctx, models.CustomChannel{Data: missing}), ErrNotFound)
}

func TestEditCustomChannel_RollsBackOnHeaderFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")

	id, err := s.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("before", src)})
	require.NoError(t, err)

	require.NoError(t, s.Pool().WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `CREATE TRIGGER fail_headers BEFORE INSERT ON channel_http_headers
			BEGIN SELECT RAISE(ABORT, 'boom'); END`)
		return err
	}))

	edited := liveChannel("after", src)
	edited.ID = id
	err = s.EditCustomChannel(ctx, models.CustomChannel{
		Data:    edited,
		Headers: &models.ChannelHttpHeaders{Referrer: strPtr("r")},
	})
	require.Error(t, err)

	got, err := s.GetChannelByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Name)
}

func TestDeleteCustomChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")

	id, err := s.AddCustomChannel(ctx, models.CustomChannel{
		Data:    liveChannel("gone", src),
		Headers: &models.ChannelHttpHeaders{Referrer: strPtr("r")},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCustomChannel(ctx, id))
	_, err = s.GetChannelByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	h, err := s.GetChannelHeadersByID(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, h)

	assert.ErrorIs(t, s.DeleteCustomChannel(ctx, id), ErrNotFound)
}

func TestFavoriteChannel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := seedChannel(t, s, liveChannel("fav", seedSource(t, s, "src")))

	require.NoError(t, s.FavoriteChannel(ctx, id, true))
	got, err := s.GetChannelByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Favorite)

	require.NoError(t, s.FavoriteChannel(ctx, id, false))
	got, err = s.GetChannelByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Favorite)

	assert.ErrorIs(t, s.FavoriteChannel(ctx, 404, true), ErrNotFound)
}

func TestSeriesHasEpisodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "src")

	ep := liveChannel("S01E01", src)
	ep.MediaType = models.MediaTypeMovie
	ep.SeriesID = int64Ptr(77)
	seedChannel(t, s, ep)

	has, err := s.SeriesHasEpisodes(ctx, 77)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = s.SeriesHasEpisodes(ctx, 78)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGetCustomChannels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")
	gid, err := s.AddCustomGroup(ctx, models.Group{Name: "Group", SourceID: src})
	require.NoError(t, err)

	grouped := liveChannel("grouped", src)
	grouped.GroupID = &gid
	groupedID, err := s.AddCustomChannel(ctx, models.CustomChannel{
		Data:    grouped,
		Headers: &models.ChannelHttpHeaders{UserAgent: strPtr("ua")},
	})
	require.NoError(t, err)
	_, err = s.AddCustomChannel(ctx, models.CustomChannel{Data: liveChannel("loose", src)})
	require.NoError(t, err)

	inGroup, err := s.GetCustomChannels(ctx, &gid, src)
	require.NoError(t, err)
	require.Len(t, inGroup, 1)
	assert.Equal(t, "grouped", inGroup[0].Data.Name)
	require.NotNil(t, inGroup[0].Headers)
	assert.Equal(t, "ua", *inGroup[0].Headers.UserAgent)

	loose, err := s.GetCustomChannels(ctx, nil, src)
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, "loose", loose[0].Data.Name)
	assert.Nil(t, loose[0].Headers)

	extra, err := s.GetCustomChannelExtraData(ctx, groupedID, &gid)
	require.NoError(t, err)
	require.NotNil(t, extra.Group)
	assert.Equal(t, "Group", extra.Group.Name)
	require.NotNil(t, extra.Headers)

	extra, err = s.GetCustomChannelExtraData(ctx, groupedID, nil)
	require.NoError(t, err)
	assert.Nil(t, extra.Group)
}
