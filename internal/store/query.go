package store

import (
	"strings"

	"github.com/voyagen/tvcatalog/internal/models"
)

// PageSize is the number of rows returned per search page.
const PageSize = 36

// falsePredicate replaces an IN over an empty set, which SQLite rejects.
const falsePredicate = "1 = 0"

const channelColumns = "id, name, image, url, media_type, source_id, favorite, series_id, group_id"

// episodeMediaTypes is the kind filter used while browsing a series:
// episodes are stored with the movie kind.
var episodeMediaTypes = []models.MediaType{models.MediaTypeMovie}

// queryBuilder accumulates AND-ed predicates and their bound arguments in
// placeholder order.
type queryBuilder struct {
	preds []string
	args  []any
}

// where appends a predicate; args must match its placeholders in order.
func (b *queryBuilder) where(pred string, args ...any) *queryBuilder {
	b.preds = append(b.preds, pred)
	b.args = append(b.args, args...)
	return b
}

// whereIn appends "col IN (?, ...)" sized to vals. An empty vals matches no row.
func whereIn[T any](b *queryBuilder, col string, vals []T) *queryBuilder {
	if len(vals) == 0 {
		return b.where(falsePredicate)
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return b.where(col+" IN ("+placeholders(len(vals))+")", args...)
}

// conditions joins the predicates with AND.
func (b *queryBuilder) conditions() string {
	return strings.Join(b.preds, " AND ")
}

// build renders the statement with LIMIT/OFFSET for a 1-based page and
// returns it with its arguments.
func (b *queryBuilder) build(selectFrom, orderBy string, page int) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectFrom)
	if len(b.preds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(b.conditions())
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}
	sb.WriteString(" LIMIT ? OFFSET ?")
	args := append(b.args[:len(b.args):len(b.args)], PageSize, pageOffset(page))
	return sb.String(), args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// pageOffset returns the row offset of a 1-based page. Pages below 1 are page 1.
func pageOffset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// likePattern turns an optional free-text query into a substring LIKE
// pattern; LIKE wildcards typed by the user are matched literally.
func likePattern(query *string) string {
	if query == nil || *query == "" {
		return "%"
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(*query) + "%"
}

// compiledQuery is a search compiled to SQL.
type compiledQuery struct {
	sql    string
	args   []any
	groups bool // rows come from the groups table
}

// compileSearch picks the group browse or the channel browse for f.
func compileSearch(f models.Filters) compiledQuery {
	if f.IsCategoryBrowse() {
		sql, args := compileGroupSearch(f)
		return compiledQuery{sql: sql, args: args, groups: true}
	}
	sql, args := compileChannelSearch(f)
	return compiledQuery{sql: sql, args: args}
}

func compileChannelSearch(f models.Filters) (string, []any) {
	mediaTypes := f.MediaTypes
	if f.SeriesID != nil {
		mediaTypes = episodeMediaTypes
	}

	b := &queryBuilder{}
	b.where(`name LIKE ? ESCAPE '\'`, likePattern(f.Query))
	whereIn(b, "media_type", mediaTypes)
	whereIn(b, "source_id", f.SourceIDs)
	b.where("url IS NOT NULL")
	if f.ViewType == models.ViewTypeFavorites && f.SeriesID == nil {
		b.where("favorite = 1")
	}
	switch {
	case f.SeriesID != nil:
		b.where("series_id = ?", *f.SeriesID)
	case f.GroupID != nil:
		b.where("group_id = ?", *f.GroupID)
	}
	return b.build("SELECT "+channelColumns+" FROM channels", "id", f.Page)
}

func compileGroupSearch(f models.Filters) (string, []any) {
	b := &queryBuilder{}
	b.where(`name LIKE ? ESCAPE '\'`, likePattern(f.Query))
	whereIn(b, "source_id", f.SourceIDs)
	return b.build("SELECT id, name, image, source_id FROM groups", "id", f.Page)
}
