package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tvcatalog/internal/models"
)

func countSources(t *testing.T, s *SQLite, name string) int {
	t.Helper()
	var n int
	require.NoError(t, s.withConn(context.Background(), func(q querier) error {
		return q.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM sources WHERE name = ?`, name).Scan(&n)
	}))
	return n
}

func TestDoTx_ConcurrentReadThenWrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 3
	start := make(chan struct{})
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs <- s.DoTx(ctx, func(tx *Tx) error {
				var n int
				if err := tx.tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&n); err != nil {
					return err
				}
				time.Sleep(50 * time.Millisecond)
				shared := models.NewCustomSource("shared")
				if _, err := tx.CreateOrFindSource(ctx, &shared); err != nil {
					return err
				}
				own := models.NewCustomSource(fmt.Sprintf("own-%d", i))
				_, err := tx.CreateOrFindSource(ctx, &own)
				return err
			})
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, countSources(t, s, "shared"))
	for i := 0; i < workers; i++ {
		assert.Equal(t, 1, countSources(t, s, fmt.Sprintf("own-%d", i)))
	}
}

func TestTx_ErrorsNameTheOperation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	src := seedSource(t, s, "custom")
	cc := models.CustomChannel{Data: liveChannel("dup", src)}

	_, err := s.AddCustomChannel(ctx, cc)
	require.NoError(t, err)

	t.Run("AddCustomChannel", func(t *testing.T) {
		err := s.DoTx(ctx, func(tx *Tx) error {
			_, err := tx.AddCustomChannel(ctx, cc)
			return err
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConstraint)
		assert.True(t, strings.HasPrefix(err.Error(), "AddCustomChannel: "), err.Error())

		_, err = s.AddCustomChannel(ctx, cc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConstraint)
		assert.Equal(t, 1, strings.Count(err.Error(), "AddCustomChannel: "), err.Error())
	})

	t.Run("WipeSourceChannels", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		err := s.DoTx(ctx, func(tx *Tx) error {
			return tx.WipeSourceChannels(cancelled, src)
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, strings.HasPrefix(err.Error(), "WipeSourceChannels: "), err.Error())
	})
}
