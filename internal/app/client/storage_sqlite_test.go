package client

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

func TestSQLiteStorage_EmptyReadsAsEmpty(t *testing.T) {
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	entities, err := s.Entities(ctx)
	require.NoError(t, err)
	assert.Empty(t, entities)

	ops, err := s.PendingQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	s, err := NewSQLiteStorage(path)
	require.NoError(t, err)

	require.NoError(t, s.SetEntities(ctx, []event.Event{{ID: "1", Name: "Kickoff", StartDate: start, Participants: []string{"ann"}}}))
	require.NoError(t, s.SetPendingQueue(ctx, []event.PendingOp{
		{Event: event.Event{ID: "local-a", Name: "Draft"}, Intent: event.IntentCreate, Seq: 1},
		{Event: event.Event{ID: "1"}, Intent: event.IntentDelete, Seq: 2},
	}))
	// overwrite keeps a single document per key
	require.NoError(t, s.SetEntities(ctx, []event.Event{{ID: "1", Name: "Kickoff v2", StartDate: start}}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStorage(path)
	require.NoError(t, err)
	defer s.Close()

	entities, err := s.Entities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Kickoff v2", entities[0].Name)
	assert.True(t, start.Equal(entities[0].StartDate))

	ops, err := s.PendingQueue(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, event.IntentCreate, ops[0].Intent)
	assert.Equal(t, "local-a", ops[0].ID)
	assert.True(t, ops[1].IsTombstone())
}

func TestMemoryStorage_FailWrites(t *testing.T) {
	s := NewMemoryStorage()
	s.FailWrites = assert.AnError

	err := s.SetPendingQueue(context.Background(), nil)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func openShared(t *testing.T) (*SQLiteStorage, *SQLiteStorage) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })

	second, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	return first, second
}

func TestSQLiteStorage_QueueChangesFromAnotherHandleSurvive(t *testing.T) {
	ctx := context.Background()
	watcherStore, cliStore := openShared(t)

	watcher, err := NewQueue(ctx, watcherStore, slog.Default())
	require.NoError(t, err)
	sent, err := watcher.Enqueue(ctx, event.Tombstone("7"))
	require.NoError(t, err)

	// a separate command queues a create while the watcher holds its copy
	cli, err := NewQueue(ctx, cliStore, slog.Default())
	require.NoError(t, err)
	created, err := cli.Enqueue(ctx, event.Upsert(event.Event{ID: "local-x", Name: "Lunch"}, event.IntentCreate))
	require.NoError(t, err)
	assert.Greater(t, created.Seq, sent.Seq)

	removed, err := watcher.Ack(ctx, sent)
	require.NoError(t, err)
	assert.True(t, removed)

	ops, err := cliStore.PendingQueue(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "local-x", ops[0].ID)
	assert.Equal(t, []string{"local-x"}, ids(watcher.Snapshot()))
}

func TestSQLiteStorage_ConcurrentEnqueueKeepsEveryEntry(t *testing.T) {
	ctx := context.Background()
	a, b := openShared(t)

	var wg sync.WaitGroup
	for i, store := range []*SQLiteStorage{a, b} {
		q, err := NewQueue(ctx, store, slog.Default())
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range 10 {
				_, err := q.Enqueue(ctx, event.Tombstone(fmt.Sprintf("%d-%d", i, n)))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	ops, err := a.PendingQueue(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 20)

	seqs := map[int64]bool{}
	for _, op := range ops {
		assert.False(t, seqs[op.Seq], "duplicate seq %d", op.Seq)
		seqs[op.Seq] = true
	}
}

func TestSQLiteStorage_SeqNeverReused(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer s.Close()

	q, err := NewQueue(ctx, s, slog.Default())
	require.NoError(t, err)
	first, err := q.Enqueue(ctx, event.Tombstone("a"))
	require.NoError(t, err)
	require.NoError(t, q.Remove(ctx, "a"))

	again, err := q.Enqueue(ctx, event.Tombstone("a"))
	require.NoError(t, err)
	assert.Greater(t, again.Seq, first.Seq)

	// an ack for the removed entry must not drop its replacement
	removed, err := q.Ack(ctx, first)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 1, q.Len())
}

func TestSQLiteStorage_Lease(t *testing.T) {
	ctx := context.Background()
	a, b := openShared(t)

	held, err := a.AcquireLease(ctx, "drain", "watcher", time.Minute)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = b.AcquireLease(ctx, "drain", "cli", time.Minute)
	require.NoError(t, err)
	assert.False(t, held)

	// renewing by the holder succeeds, releasing by a stranger does nothing
	held, err = a.AcquireLease(ctx, "drain", "watcher", time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
	require.NoError(t, b.ReleaseLease(ctx, "drain", "cli"))
	held, err = b.AcquireLease(ctx, "drain", "cli", time.Minute)
	require.NoError(t, err)
	assert.False(t, held)

	require.NoError(t, a.ReleaseLease(ctx, "drain", "watcher"))
	held, err = b.AcquireLease(ctx, "drain", "cli", time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestSQLiteStorage_ExpiredLeaseIsTakenOver(t *testing.T) {
	ctx := context.Background()
	a, b := openShared(t)

	held, err := a.AcquireLease(ctx, "drain", "crashed", -time.Second)
	require.NoError(t, err)
	require.True(t, held)

	held, err = b.AcquireLease(ctx, "drain", "cli", time.Minute)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestSQLiteStorage_SyncStats(t *testing.T) {
	ctx := context.Background()
	a, b := openShared(t)

	stats, err := a.SyncStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats)

	last := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, a.SetSyncStats(ctx, SyncStats{TotalDrains: 3, TotalSynced: 5, LastSuccessful: last}))

	stats, err = b.SyncStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDrains)
	assert.Equal(t, 5, stats.TotalSynced)
	assert.True(t, last.Equal(stats.LastSuccessful))
}
