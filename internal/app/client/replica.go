package client

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

// Replica is the authoritative set: the last entity list the remote authority
// confirmed. It changes only in response to successful remote calls.
type Replica struct {
	mu     sync.RWMutex
	events []event.Event
	store  Storage
	log    *slog.Logger
}

func NewReplica(ctx context.Context, store Storage, log *slog.Logger) (*Replica, error) {
	events, err := store.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cached events: %w", err)
	}

	return &Replica{
		events: events,
		store:  store,
		log:    log.With("component", "replica"),
	}, nil
}

func (r *Replica) Snapshot() []event.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneEvents(r.events)
}

func (r *Replica) Get(id string) (event.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(id); i >= 0 {
		return r.events[i].Clone(), true
	}
	return event.Event{}, false
}

// Replace swaps in a full list fetched from the authority.
func (r *Replica) Replace(ctx context.Context, events []event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commit(ctx, cloneEvents(events))
}

// Upsert applies an entity returned by a confirmed create or update.
func (r *Replica) Upsert(ctx context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneEvents(r.events)
	if i := r.index(e.ID); i >= 0 {
		next[i] = e.Clone()
	} else {
		next = append(next, e.Clone())
	}
	return r.commit(ctx, next)
}

// Drop forgets an id whose deletion the authority confirmed.
func (r *Replica) Drop(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(id)
	if i < 0 {
		return nil
	}
	next := slices.Delete(cloneEvents(r.events), i, i+1)
	return r.commit(ctx, next)
}

// Refresh fetches the full list from the authority and replaces the set with it.
func (r *Replica) Refresh(ctx context.Context, authority Authority) error {
	events, err := authority.List(ctx)
	if err != nil {
		return err
	}
	if err := r.Replace(ctx, events); err != nil {
		return err
	}
	r.log.Debug("replica refreshed", "count", len(events))
	return nil
}

func (r *Replica) commit(ctx context.Context, next []event.Event) error {
	if err := r.store.SetEntities(ctx, next); err != nil {
		if IsPersistence(err) {
			return err
		}
		return &PersistenceError{Key: keyEntities, Err: err}
	}
	r.events = next
	return nil
}

func (r *Replica) index(id string) int {
	return slices.IndexFunc(r.events, func(e event.Event) bool { return e.ID == id })
}
