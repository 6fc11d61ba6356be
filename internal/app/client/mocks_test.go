package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

// MockAuthority is a mock implementation of the Authority interface for testing
type MockAuthority struct {
	mock.Mock
}

func (m *MockAuthority) List(ctx context.Context) ([]event.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]event.Event), args.Error(1)
}

func (m *MockAuthority) Create(ctx context.Context, e event.Event) (event.Event, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(event.Event), args.Error(1)
}

func (m *MockAuthority) Update(ctx context.Context, id string, e event.Event) (event.Event, error) {
	args := m.Called(ctx, id, e)
	return args.Get(0).(event.Event), args.Error(1)
}

func (m *MockAuthority) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var errUnreachable = &TransportError{Op: "test", Err: errors.New("connection refused")}

type harness struct {
	auth        *MockAuthority
	store       *MemoryStorage
	queue       *Queue
	replica     *Replica
	monitor     *Monitor
	rec         *Reconciler
	coord       *Coordinator
	syncRequest int
}

func newHarness(t *testing.T, online bool, confirmed ...event.Event) *harness {
	t.Helper()
	ctx := context.Background()
	log := slog.Default()

	h := &harness{auth: new(MockAuthority), store: NewMemoryStorage()}
	require.NoError(t, h.store.SetEntities(ctx, confirmed))

	var err error
	h.queue, err = NewQueue(ctx, h.store, log)
	require.NoError(t, err)
	h.replica, err = NewReplica(ctx, h.store, log)
	require.NoError(t, err)
	h.monitor = NewMonitor(online, log)
	h.rec, err = NewReconciler(ctx, h.auth, h.queue, h.replica, h.monitor, h.store, log)
	require.NoError(t, err)

	n := 0
	h.coord = NewCoordinator(Deps{
		Authority:   h.auth,
		Queue:       h.queue,
		Replica:     h.replica,
		Monitor:     h.monitor,
		Log:         log,
		RequestSync: func() { h.syncRequest++ },
		NewID: func() string {
			n++
			return fmt.Sprintf("%sT%d", provisionalPrefix, n)
		},
	})
	return h
}

func yes(string) bool { return true }

func pendingIntents(ops []event.PendingOp) map[string]event.Intent {
	out := make(map[string]event.Intent, len(ops))
	for _, op := range ops {
		out[op.ID] = op.Intent
	}
	return out
}

// assertNoLoss checks that every confirmed id is either visible or tombstoned,
// and that no id is visible twice.
func assertNoLoss(t *testing.T, h *harness) {
	t.Helper()

	visible := map[string]int{}
	for _, v := range h.coord.Events() {
		visible[v.ID]++
	}
	for id, n := range visible {
		require.Equal(t, 1, n, "duplicate id %s", id)
	}

	for _, e := range h.replica.Snapshot() {
		op, queued := h.queue.Get(e.ID)
		if queued && op.IsTombstone() {
			require.Zero(t, visible[e.ID], "tombstoned id %s is visible", e.ID)
			continue
		}
		require.Equal(t, 1, visible[e.ID], "confirmed id %s is lost", e.ID)
	}
	for _, op := range h.queue.Snapshot() {
		if !op.IsTombstone() {
			require.Equal(t, 1, visible[op.ID], "pending id %s is lost", op.ID)
		}
	}
}
