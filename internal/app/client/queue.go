package client

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

// Queue is the ordered, id-deduplicated list of unconfirmed mutations.
// Every change re-reads the stored queue, applies itself and writes back in one
// storage transaction, so processes sharing a cache never overwrite each other.
type Queue struct {
	mu    sync.Mutex
	ops   []event.PendingOp
	store Storage
	log   *slog.Logger
	now   func() time.Time
}

// NewQueue loads the persisted queue.
func NewQueue(ctx context.Context, store Storage, log *slog.Logger) (*Queue, error) {
	ops, err := store.PendingQueue(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pending queue: %w", err)
	}

	return &Queue{
		ops:   ops,
		store: store,
		log:   log.With("component", "pending_queue"),
		now:   time.Now,
	}, nil
}

// Reload replaces the in-memory copy with the stored queue.
func (q *Queue) Reload(ctx context.Context) error {
	ops, err := q.store.PendingQueue(ctx)
	if err != nil {
		return fmt.Errorf("load pending queue: %w", err)
	}

	q.mu.Lock()
	q.ops = ops
	q.mu.Unlock()
	return nil
}

// Enqueue inserts op, or replaces the entry with the same id in place.
// The returned op carries the assigned sequence number.
func (q *Queue) Enqueue(ctx context.Context, op event.PendingOp) (event.PendingOp, error) {
	if op.ID == "" {
		return event.PendingOp{}, fmt.Errorf("%w: pending operation without id", event.ErrInvalidData)
	}
	if !op.Intent.Valid() {
		return event.PendingOp{}, fmt.Errorf("%w: unknown intent %q", event.ErrInvalidData, op.Intent)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	op.QueuedAt = q.now().UTC()
	op.Attempts = 0
	op.LastError = ""

	err := q.update(ctx, func(ops []event.PendingOp, lastSeq int64) ([]event.PendingOp, error) {
		op.Seq = lastSeq + 1
		if i := indexOf(ops, op.ID); i >= 0 {
			ops[i] = op
		} else {
			ops = append(ops, op)
		}
		return ops, nil
	})
	if err != nil {
		return event.PendingOp{}, err
	}

	q.log.Debug("operation queued", "id", op.ID, "intent", op.Intent, "seq", op.Seq, "size", len(q.ops))
	return op, nil
}

// Remove drops the entry for id. Removing an absent id is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.update(ctx, func(ops []event.PendingOp, _ int64) ([]event.PendingOp, error) {
		if i := indexOf(ops, id); i >= 0 {
			ops = slices.Delete(ops, i, i+1)
		}
		return ops, nil
	})
}

// Ack removes op only if the queue still holds that exact entry.
// It reports false when a newer intent for the same id replaced or removed it meanwhile.
func (q *Queue) Ack(ctx context.Context, op event.PendingOp) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	removed := false
	err := q.update(ctx, func(ops []event.PendingOp, _ int64) ([]event.PendingOp, error) {
		i := indexOf(ops, op.ID)
		if i < 0 || ops[i].Seq != op.Seq {
			return ops, nil
		}
		removed = true
		return slices.Delete(ops, i, i+1), nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// MarkFailed records a failed delivery attempt on the entry that was sent.
func (q *Queue) MarkFailed(ctx context.Context, op event.PendingOp, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.update(ctx, func(ops []event.PendingOp, _ int64) ([]event.PendingOp, error) {
		i := indexOf(ops, op.ID)
		if i < 0 || ops[i].Seq != op.Seq {
			return ops, nil
		}
		ops[i].Attempts++
		ops[i].LastError = cause.Error()
		return ops, nil
	})
}

// Retarget moves the entry for fromID onto toID, the id the authority assigned
// to a created entity. A create intent becomes an update. It reports false when
// no entry for fromID was queued.
func (q *Queue) Retarget(ctx context.Context, fromID, toID string) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var moved *event.PendingOp
	err := q.update(ctx, func(ops []event.PendingOp, _ int64) ([]event.PendingOp, error) {
		i := indexOf(ops, fromID)
		if i < 0 {
			return ops, nil
		}

		op := ops[i]
		op.ID = toID
		if op.Intent == event.IntentCreate {
			op.Intent = event.IntentUpdate
		}
		if j := indexOf(ops, toID); j >= 0 {
			ops = slices.Delete(ops, j, j+1)
			if j < i {
				i--
			}
		}
		ops[i] = op
		moved = &op
		return ops, nil
	})
	if err != nil || moved == nil {
		return false, err
	}

	q.log.Debug("operation retargeted", "from", fromID, "to", toID, "intent", moved.Intent)
	return true, nil
}

// Get returns the entry for id.
func (q *Queue) Get(id string) (event.PendingOp, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if i := indexOf(q.ops, id); i >= 0 {
		return q.ops[i], true
	}
	return event.PendingOp{}, false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Snapshot returns a copy of the queue in insertion order.
func (q *Queue) Snapshot() []event.PendingOp {
	q.mu.Lock()
	defer q.mu.Unlock()
	return clonePending(q.ops)
}

// All yields the entries in insertion order. Each iteration walks a fresh snapshot,
// so the sequence can be ranged over again and tolerates concurrent changes.
func (q *Queue) All() iter.Seq[event.PendingOp] {
	return func(yield func(event.PendingOp) bool) {
		for _, op := range q.Snapshot() {
			if !yield(op) {
				return
			}
		}
	}
}

// update runs fn against the stored queue and adopts the written result.
// On failure the in-memory copy is left untouched.
func (q *Queue) update(ctx context.Context, fn PendingUpdate) error {
	ops, err := q.store.UpdatePendingQueue(ctx, fn)
	if err != nil {
		if IsPersistence(err) {
			return err
		}
		return &PersistenceError{Key: keyPending, Err: err}
	}
	q.ops = ops
	return nil
}

func indexOf(ops []event.PendingOp, id string) int {
	return slices.IndexFunc(ops, func(op event.PendingOp) bool { return op.ID == id })
}
