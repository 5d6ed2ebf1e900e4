package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/voyagen/tvcatalog/internal/models"
)

func scanGroup(row interface{ Scan(...any) error }) (models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.Image, &g.SourceID)
	return g, err
}

// insertGroup inserts a group unless (name, source) is taken and returns the
// id of the stored row either way.
func insertGroup(ctx context.Context, q querier, name string, image *string, sourceID int64) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO groups (name, image, source_id) VALUES (?, ?, ?)`,
		name, image, sourceID,
	)
	if err != nil {
		return 0, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		return res.LastInsertId()
	}
	var id int64
	err = q.QueryRowContext(ctx, `SELECT id FROM groups WHERE name = ? AND source_id = ?`, name, sourceID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve group %q: %w", name, err)
	}
	return id, nil
}

// setChannelGroup fills ch.GroupID from ch.Group, creating the group on
// first sight within the batch. Channels without a group title are left alone.
func setChannelGroup(ctx context.Context, q querier, ch *models.Channel, sourceID int64, cache *GroupCache) error {
	if ch.Group == nil || *ch.Group == "" {
		return nil
	}
	name := *ch.Group
	if id, ok := cache.Get(name); ok {
		ch.GroupID = &id
		return nil
	}
	id, err := insertGroup(ctx, q, name, ch.Image, sourceID)
	if err != nil {
		return err
	}
	cache.Put(name, id)
	ch.GroupID = &id
	return nil
}

func addCustomGroup(ctx context.Context, q querier, g models.Group) (int64, error) {
	res, err := q.ExecContext(ctx,
		`INSERT INTO groups (name, image, source_id) VALUES (?, ?, ?)`,
		g.Name, g.Image, g.SourceID,
	)
	if err != nil {
		return 0, classify(err)
	}
	return res.LastInsertId()
}

// AddCustomGroup inserts a group. A duplicate (name, source) is ErrConstraint.
func (s *SQLite) AddCustomGroup(ctx context.Context, g models.Group) (int64, error) {
	var id int64
	err := s.withConn(ctx, func(q querier) error {
		var err error
		id, err = addCustomGroup(ctx, q, g)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("AddCustomGroup: %w", err)
	}
	return id, nil
}

// EditCustomGroup updates the name and image of a group.
func (s *SQLite) EditCustomGroup(ctx context.Context, g models.Group) error {
	err := s.withConn(ctx, func(q querier) error {
		res, err := q.ExecContext(ctx, `UPDATE groups SET name = ?, image = ? WHERE id = ?`, g.Name, g.Image, g.ID)
		if err != nil {
			return classify(err)
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("EditCustomGroup: %w", err)
	}
	return nil
}

// DeleteCustomGroup deletes a group. With reassign set, its channels first
// move to newGroupID, or become ungrouped when newGroupID is nil. Without
// it they are always left ungrouped.
func (s *SQLite) DeleteCustomGroup(ctx context.Context, groupID int64, newGroupID *int64, reassign bool) error {
	if !reassign {
		newGroupID = nil
	}
	err := s.pool.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE channels SET group_id = ? WHERE group_id = ?`, newGroupID, groupID); err != nil {
			return classify(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
		if err != nil {
			return classify(err)
		}
		return expectOne(res)
	})
	if err != nil {
		return fmt.Errorf("DeleteCustomGroup: %w", err)
	}
	return nil
}

func getGroupByID(ctx context.Context, q querier, groupID int64) (*models.Group, error) {
	g, err := scanGroup(q.QueryRowContext(ctx, `SELECT id, name, image, source_id FROM groups WHERE id = ?`, groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGroupByID returns a single group by id.
func (s *SQLite) GetGroupByID(ctx context.Context, groupID int64) (*models.Group, error) {
	var g *models.Group
	err := s.withConn(ctx, func(q querier) error {
		var err error
		g, err = getGroupByID(ctx, q, groupID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetGroupByID: %w", err)
	}
	return g, nil
}

// GroupExists reports whether a source already has a group named name.
func (s *SQLite) GroupExists(ctx context.Context, name string, sourceID int64) (bool, error) {
	var found bool
	err := s.withConn(ctx, func(q querier) error {
		var err error
		found, err = exists(ctx, q, `SELECT 1 FROM groups WHERE name = ? AND source_id = ?`, name, sourceID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("GroupExists: %w", err)
	}
	return found, nil
}

// GroupNotEmpty reports whether any channel belongs to the group.
func (s *SQLite) GroupNotEmpty(ctx context.Context, groupID int64) (bool, error) {
	var found bool
	err := s.withConn(ctx, func(q querier) error {
		var err error
		found, err = exists(ctx, q, `SELECT 1 FROM channels WHERE group_id = ? LIMIT 1`, groupID)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("GroupNotEmpty: %w", err)
	}
	return found, nil
}

// GroupAutoComplete lists the groups of a source whose name contains query.
func (s *SQLite) GroupAutoComplete(ctx context.Context, query *string, sourceID int64) ([]models.IDName, error) {
	var out []models.IDName
	err := s.withConn(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx,
			`SELECT id, name FROM groups WHERE name LIKE ? ESCAPE '\' AND source_id = ? ORDER BY name`,
			likePattern(query), sourceID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var in models.IDName
			if err := rows.Scan(&in.ID, &in.Name); err != nil {
				return err
			}
			out = append(out, in)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("GroupAutoComplete: %w", err)
	}
	return out, nil
}

func getGroupsBySource(ctx context.Context, q querier, sourceID int64) ([]models.Group, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, image, source_id FROM groups WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// GetCustomGroups exports every group of a source with its channels. The
// exported rows carry no ids so they can be imported into another source.
func (s *SQLite) GetCustomGroups(ctx context.Context, sourceID int64) ([]models.ExportedGroup, error) {
	var export []models.ExportedGroup
	err := s.withConn(ctx, func(q querier) error {
		groups, err := getGroupsBySource(ctx, q, sourceID)
		if err != nil {
			return err
		}
		for _, g := range groups {
			channels, err := getCustomChannels(ctx, q, &g.ID, sourceID)
			if err != nil {
				return err
			}
			export = append(export, models.ExportedGroup{
				Group:    models.Group{Name: g.Name, Image: g.Image},
				Channels: channels,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("GetCustomGroups: %w", err)
	}
	return export, nil
}
