package client

import (
	"context"
	"slices"
	"sync"
	"time"

	"eventkeeper/internal/domain/event"
)

const (
	keyEntities = "events"
	keyPending  = "pending_sync"
	keySeq      = "pending_seq"
	keyStats    = "sync_stats"
	leasePrefix = "lease:"
)

// PendingUpdate rewrites the stored queue. lastSeq is the highest sequence number
// ever assigned, so new entries take lastSeq+1.
type PendingUpdate func(ops []event.PendingOp, lastSeq int64) ([]event.PendingOp, error)

// Storage is the durable local cache. It holds independent documents:
// the last confirmed entity list, the pending queue and the sync counters.
// Absent data reads as empty. Several processes may share one cache.
type Storage interface {
	Entities(ctx context.Context) ([]event.Event, error)
	SetEntities(ctx context.Context, events []event.Event) error
	PendingQueue(ctx context.Context) ([]event.PendingOp, error)
	SetPendingQueue(ctx context.Context, ops []event.PendingOp) error
	// UpdatePendingQueue re-reads the queue, applies fn and writes the result
	// atomically with respect to every other writer of the same cache.
	UpdatePendingQueue(ctx context.Context, fn PendingUpdate) ([]event.PendingOp, error)
	SyncStats(ctx context.Context) (SyncStats, error)
	SetSyncStats(ctx context.Context, stats SyncStats) error
	// AcquireLease takes or renews the named lease for owner until ttl elapses.
	// It reports false while another owner holds an unexpired lease.
	AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, name, owner string) error
	Close() error
}

type lease struct {
	Owner   string    `json:"owner"`
	Expires time.Time `json:"expires"`
}

func (l lease) heldByOther(owner string, now time.Time) bool {
	return l.Owner != "" && l.Owner != owner && now.Before(l.Expires)
}

// MemoryStorage keeps every document in process memory.
type MemoryStorage struct {
	mu       sync.RWMutex
	entities []event.Event
	pending  []event.PendingOp
	lastSeq  int64
	stats    SyncStats
	leases   map[string]lease

	// FailWrites makes every write return a PersistenceError.
	FailWrites error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{leases: map[string]lease{}}
}

func (m *MemoryStorage) Entities(_ context.Context) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneEvents(m.entities), nil
}

func (m *MemoryStorage) SetEntities(_ context.Context, events []event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return &PersistenceError{Key: keyEntities, Err: m.FailWrites}
	}
	m.entities = cloneEvents(events)
	return nil
}

func (m *MemoryStorage) PendingQueue(_ context.Context) ([]event.PendingOp, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clonePending(m.pending), nil
}

func (m *MemoryStorage) SetPendingQueue(_ context.Context, ops []event.PendingOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return &PersistenceError{Key: keyPending, Err: m.FailWrites}
	}
	m.pending = clonePending(ops)
	m.lastSeq = max(m.lastSeq, maxSeq(ops))
	return nil
}

func (m *MemoryStorage) UpdatePendingQueue(_ context.Context, fn PendingUpdate) ([]event.PendingOp, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, err := fn(clonePending(m.pending), max(m.lastSeq, maxSeq(m.pending)))
	if err != nil {
		return nil, err
	}
	if m.FailWrites != nil {
		return nil, &PersistenceError{Key: keyPending, Err: m.FailWrites}
	}
	m.pending = clonePending(next)
	m.lastSeq = max(m.lastSeq, maxSeq(next))
	return clonePending(next), nil
}

func (m *MemoryStorage) SyncStats(_ context.Context) (SyncStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats, nil
}

func (m *MemoryStorage) SetSyncStats(_ context.Context, stats SyncStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return &PersistenceError{Key: keyStats, Err: m.FailWrites}
	}
	m.stats = stats
	return nil
}

func (m *MemoryStorage) AcquireLease(_ context.Context, name, owner string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if m.leases[name].heldByOther(owner, now) {
		return false, nil
	}
	m.leases[name] = lease{Owner: owner, Expires: now.Add(ttl)}
	return true, nil
}

func (m *MemoryStorage) ReleaseLease(_ context.Context, name, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leases[name].Owner == owner {
		delete(m.leases, name)
	}
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func cloneEvents(in []event.Event) []event.Event {
	out := make([]event.Event, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

func clonePending(in []event.PendingOp) []event.PendingOp {
	out := slices.Clone(in)
	if out == nil {
		out = []event.PendingOp{}
	}
	for i := range out {
		out[i].Event = out[i].Event.Clone()
	}
	return out
}

func maxSeq(ops []event.PendingOp) int64 {
	var seq int64
	for _, op := range ops {
		seq = max(seq, op.Seq)
	}
	return seq
}
