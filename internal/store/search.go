package store

import (
	"context"
	"fmt"

	"github.com/voyagen/tvcatalog/internal/models"
)

// Search returns one page of channels matching f. When f asks for the
// category browse the page lists groups instead, each projected as a
// channel with MediaTypeGroup and no url. A page past the end is empty.
func (s *SQLite) Search(ctx context.Context, f models.Filters) ([]models.Channel, error) {
	cq := compileSearch(f)
	out := []models.Channel{}
	err := s.withConn(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, cq.sql, cq.args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var ch models.Channel
			if cq.groups {
				g, err := scanGroup(rows)
				if err != nil {
					return err
				}
				ch = groupAsChannel(g)
			} else {
				ch, err = scanChannel(rows)
				if err != nil {
					return err
				}
			}
			out = append(out, ch)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	return out, nil
}

func groupAsChannel(g models.Group) models.Channel {
	return models.Channel{
		ID:        g.ID,
		Name:      g.Name,
		Image:     g.Image,
		MediaType: models.MediaTypeGroup,
		SourceID:  g.SourceID,
	}
}
