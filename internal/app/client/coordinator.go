package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

const provisionalPrefix = "local-"

// Confirmer asks the user whether id may really be deleted.
type Confirmer func(id string) bool

// Outcome tells the caller how a mutation was handled.
type Outcome struct {
	Event  event.Event
	Queued bool
	Notice string
}

// Deps are the collaborators a Coordinator works with.
type Deps struct {
	Authority Authority
	Queue     *Queue
	Replica   *Replica
	Monitor   *Monitor
	Log       *slog.Logger

	// RequestSync is called after a mutation fell back to the queue while online.
	RequestSync func()
	// NewID returns a provisional id for an entity created locally.
	NewID func() string
}

// Coordinator is the entry point for user mutations. It goes to the authority
// when reachable and falls back to the pending queue otherwise. The replica is
// only written with confirmed data.
type Coordinator struct {
	authority   Authority
	queue       *Queue
	replica     *Replica
	monitor     *Monitor
	log         *slog.Logger
	requestSync func()
	newID       func() string
}

func NewCoordinator(d Deps) *Coordinator {
	c := &Coordinator{
		authority:   d.Authority,
		queue:       d.Queue,
		replica:     d.Replica,
		monitor:     d.Monitor,
		log:         d.Log.With("component", "coordinator"),
		requestSync: d.RequestSync,
		newID:       d.NewID,
	}
	if c.newID == nil {
		c.newID = func() string { return provisionalPrefix + uuid.NewString() }
	}
	if c.requestSync == nil {
		c.requestSync = func() {}
	}
	return c
}

// IsProvisional reports whether id was assigned locally and is unknown to the authority.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// Events returns the effective view.
func (c *Coordinator) Events() []ViewEvent {
	return MergeView(c.replica.Snapshot(), c.queue.Snapshot())
}

// Pending returns the queued operations in drain order.
func (c *Coordinator) Pending() []event.PendingOp {
	return c.queue.Snapshot()
}

// Find looks id up in the effective view.
func (c *Coordinator) Find(id string) (ViewEvent, bool) {
	for _, v := range c.Events() {
		if v.ID == id {
			return v, true
		}
	}
	return ViewEvent{}, false
}

// Save creates or updates draft. A draft without id gets a provisional one.
func (c *Coordinator) Save(ctx context.Context, draft event.Event, isEdit bool) (Outcome, error) {
	draft = draft.Clone()
	draft.Participants = event.NormalizeParticipants(draft.Participants)

	if isEdit && draft.ID == "" {
		return Outcome{}, fmt.Errorf("%w: edit without id", event.ErrInvalidData)
	}
	if draft.ID == "" {
		draft.ID = c.newID()
	}

	intent := event.IntentUpdate
	if !isEdit || c.isPendingCreate(draft.ID) {
		// the authority has never seen this id
		intent = event.IntentCreate
	}

	if !c.monitor.IsOnline() {
		return c.enqueue(ctx, event.Upsert(draft, intent), "offline: change saved locally and will sync when back online")
	}

	var (
		confirmed event.Event
		err       error
	)
	if intent == event.IntentCreate {
		confirmed, err = c.authority.Create(ctx, draft)
	} else {
		confirmed, err = c.authority.Update(ctx, draft.ID, draft)
	}
	if err != nil {
		c.log.Warn("remote save failed, queuing", "id", draft.ID, "intent", intent, "error", err)
		out, qerr := c.enqueue(ctx, event.Upsert(draft, intent), "server unavailable: change queued for sync")
		if qerr == nil {
			c.requestSync()
		}
		return out, qerr
	}

	if err := c.replica.Upsert(ctx, confirmed); err != nil {
		return Outcome{}, err
	}
	// the confirmed copy supersedes any stale local intent for this id
	if err := c.queue.Remove(ctx, draft.ID); err != nil {
		return Outcome{}, err
	}
	c.refresh(ctx)

	return Outcome{Event: confirmed}, nil
}

// Delete removes id after confirm approved it.
func (c *Coordinator) Delete(ctx context.Context, id string, confirm Confirmer) (Outcome, error) {
	if confirm == nil || !confirm(id) {
		return Outcome{}, ErrNotConfirmed
	}

	// never reached the authority, nothing to delete remotely
	if c.isPendingCreate(id) {
		if err := c.queue.Remove(ctx, id); err != nil {
			return Outcome{}, err
		}
		return Outcome{Event: event.Event{ID: id}}, nil
	}

	if !c.monitor.IsOnline() {
		return c.enqueue(ctx, event.Tombstone(id), "offline: deletion saved locally and will sync when back online")
	}

	err := c.authority.Delete(ctx, id)
	if err != nil && !errors.Is(err, event.ErrNotFound) {
		c.log.Warn("remote delete failed, queuing", "id", id, "error", err)
		out, qerr := c.enqueue(ctx, event.Tombstone(id), "server unavailable: deletion queued for sync")
		if qerr == nil {
			c.requestSync()
		}
		return out, qerr
	}

	if err := c.replica.Drop(ctx, id); err != nil {
		return Outcome{}, err
	}
	if err := c.queue.Remove(ctx, id); err != nil {
		return Outcome{}, err
	}
	c.refresh(ctx)

	return Outcome{Event: event.Event{ID: id}}, nil
}

// ToggleCompletion flips the completed flag of id as currently seen by the user.
func (c *Coordinator) ToggleCompletion(ctx context.Context, id string) (Outcome, error) {
	current, ok := c.Find(id)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
	}

	draft := current.Event
	draft.Completed = !draft.Completed
	return c.Save(ctx, draft, true)
}

// Refresh re-fetches the authoritative set when online.
func (c *Coordinator) Refresh(ctx context.Context) error {
	if !c.monitor.IsOnline() {
		return nil
	}
	return c.replica.Refresh(ctx, c.authority)
}

func (c *Coordinator) enqueue(ctx context.Context, op event.PendingOp, notice string) (Outcome, error) {
	if _, err := c.queue.Enqueue(ctx, op); err != nil {
		return Outcome{}, err
	}
	return Outcome{Event: op.Event, Queued: true, Notice: notice}, nil
}

func (c *Coordinator) refresh(ctx context.Context) {
	if err := c.replica.Refresh(ctx, c.authority); err != nil {
		c.log.Warn("refresh after mutation failed", "error", err)
	}
}

func (c *Coordinator) isPendingCreate(id string) bool {
	op, ok := c.queue.Get(id)
	return ok && op.Intent == event.IntentCreate
}
