package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/models"
)

func testOptions(size int) PoolOptions {
	return PoolOptions{Size: size, AcquireTimeout: time.Second, Logger: zerolog.Nop()}
}

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db.sqlite"), testOptions(4))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func boolPtr(v bool) *bool { return &v }

// seedSource creates a custom source named name and returns its id.
func seedSource(t *testing.T, s *SQLite, name string) int64 {
	t.Helper()
	src := models.NewCustomSource(name)
	id, err := s.CreateOrFindSource(context.Background(), &src)
	require.NoError(t, err)
	return id
}

// seedChannel inserts a channel through a transaction and returns its id.
func seedChannel(t *testing.T, s *SQLite, ch models.Channel) int64 {
	t.Helper()
	var id int64
	err := s.DoTx(context.Background(), func(tx *Tx) error {
		var err error
		var inserted bool
		id, inserted, err = tx.InsertChannel(context.Background(), &ch)
		require.True(t, inserted)
		return err
	})
	require.NoError(t, err)
	return id
}

func liveChannel(name string, sourceID int64) models.Channel {
	return models.Channel{
		Name:      name,
		URL:       strPtr("http://example.com/" + name),
		MediaType: models.MediaTypeLivestream,
		SourceID:  sourceID,
	}
}
