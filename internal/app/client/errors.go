package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotConfirmed    = errors.New("deletion not confirmed")
	ErrDrainInProgress = errors.New("sync already in progress")
	ErrUnknownEvent    = errors.New("event is not in the local view")
)

// TransportError reports that the remote authority could not be reached
// or answered with a failure status.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError means the durable cache rejected a write. It is never swallowed.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SyncWarning aggregates the items a drain could not deliver.
type SyncWarning struct {
	Failed []ItemResult
}

func (w *SyncWarning) Error() string {
	parts := make([]string, 0, len(w.Failed))
	for _, r := range w.Failed {
		parts = append(parts, fmt.Sprintf("%s %s: %v", r.Intent, r.ID, r.Err))
	}
	return fmt.Sprintf("%d pending change(s) not synced: %s", len(w.Failed), strings.Join(parts, "; "))
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
