package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyagen/tvcatalog/internal/models"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(-3))
	assert.Equal(t, 0, pageOffset(0))
	assert.Equal(t, 0, pageOffset(1))
	assert.Equal(t, PageSize, pageOffset(2))
	assert.Equal(t, 9*PageSize, pageOffset(10))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%", likePattern(nil))
	assert.Equal(t, "%", likePattern(strPtr("")))
	assert.Equal(t, "%bbc%", likePattern(strPtr("bbc")))
	assert.Equal(t, `%100\%\_off\\%`, likePattern(strPtr(`100%_off\`)))
}

func TestCompileChannelSearch(t *testing.T) {
	f := models.Filters{
		Page:       2,
		Query:      strPtr("news"),
		MediaTypes: []models.MediaType{models.MediaTypeLivestream, models.MediaTypeMovie},
		SourceIDs:  []int64{4, 5, 6},
		ViewType:   models.ViewTypeAll,
	}
	sql, args := compileChannelSearch(f)

	assert.Equal(t,
		"SELECT "+channelColumns+` FROM channels WHERE name LIKE ? ESCAPE '\' AND media_type IN (?, ?)`+
			" AND source_id IN (?, ?, ?) AND url IS NOT NULL ORDER BY id LIMIT ? OFFSET ?",
		sql)
	assert.Equal(t, []any{
		"%news%",
		models.MediaTypeLivestream, models.MediaTypeMovie,
		int64(4), int64(5), int64(6),
		PageSize, PageSize,
	}, args)
	assert.Equal(t, strings.Count(sql, "?"), len(args))
}

func TestCompileChannelSearch_Favorites(t *testing.T) {
	f := models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream},
		SourceIDs:  []int64{1},
		ViewType:   models.ViewTypeFavorites,
	}
	sql, _ := compileChannelSearch(f)
	assert.Contains(t, sql, "AND favorite = 1")
}

func TestCompileChannelSearch_Group(t *testing.T) {
	f := models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream},
		SourceIDs:  []int64{1},
		ViewType:   models.ViewTypeCategories,
		GroupID:    int64Ptr(12),
	}
	sql, args := compileChannelSearch(f)
	assert.Contains(t, sql, "AND group_id = ? ORDER BY")
	assert.Equal(t, int64(12), args[len(args)-3])
	assert.Equal(t, strings.Count(sql, "?"), len(args))
}

func TestCompileChannelSearch_SeriesForcesMovieKind(t *testing.T) {
	f := models.Filters{
		Page:       1,
		MediaTypes: []models.MediaType{models.MediaTypeLivestream, models.MediaTypeSerie},
		SourceIDs:  []int64{1},
		ViewType:   models.ViewTypeFavorites,
		GroupID:    int64Ptr(3),
		SeriesID:   int64Ptr(99),
	}
	sql, args := compileChannelSearch(f)

	assert.Contains(t, sql, "media_type IN (?)")
	assert.Contains(t, sql, "series_id = ?")
	assert.NotContains(t, sql, "group_id")
	assert.NotContains(t, sql, "favorite")
	assert.Equal(t, []any{"%", models.MediaTypeMovie, int64(1), int64(99), PageSize, 0}, args)
}

func TestCompileChannelSearch_EmptySets(t *testing.T) {
	sql, args := compileChannelSearch(models.Filters{Page: 1})
	assert.Equal(t, 2, strings.Count(sql, falsePredicate))
	assert.NotContains(t, sql, "IN ()")
	assert.Equal(t, []any{"%", PageSize, 0}, args)
}

func TestCompileGroupSearch(t *testing.T) {
	f := models.Filters{
		Page:      3,
		Query:     strPtr("sport"),
		SourceIDs: []int64{2, 7},
		ViewType:  models.ViewTypeCategories,
	}
	sql, args := compileGroupSearch(f)
	assert.Equal(t,
		`SELECT id, name, image, source_id FROM groups WHERE name LIKE ? ESCAPE '\' AND source_id IN (?, ?) ORDER BY id LIMIT ? OFFSET ?`,
		sql)
	assert.Equal(t, []any{"%sport%", int64(2), int64(7), PageSize, 2 * PageSize}, args)
}

func TestCompileSearch_Dispatch(t *testing.T) {
	assert.True(t, compileSearch(models.Filters{ViewType: models.ViewTypeCategories}).groups)
	assert.False(t, compileSearch(models.Filters{ViewType: models.ViewTypeCategories, GroupID: int64Ptr(1)}).groups)
	assert.False(t, compileSearch(models.Filters{ViewType: models.ViewTypeAll}).groups)
}

func TestQueryBuilder_BuildDoesNotAlias(t *testing.T) {
	b := &queryBuilder{}
	b.where("a = ?", 1)
	_, first := b.build("SELECT 1", "", 1)
	_, second := b.build("SELECT 1", "", 2)
	assert.Equal(t, []any{1, PageSize, 0}, first)
	assert.Equal(t, []any{1, PageSize, PageSize}, second)
}
