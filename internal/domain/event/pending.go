package event

import "time"

// Intent is the remote operation a queued entry stands for.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentCreate, IntentUpdate, IntentDelete:
		return true
	}
	return false
}

// PendingOp is a locally recorded mutation not yet confirmed by the remote authority.
// For a tombstone only the ID is meaningful.
type PendingOp struct {
	Event
	Intent    Intent    `json:"intent"`
	Seq       int64     `json:"seq"`
	QueuedAt  time.Time `json:"queued_at"`
	Attempts  int       `json:"attempts,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

func (p PendingOp) IsTombstone() bool {
	return p.Intent == IntentDelete
}

// Tombstone builds a delete intent for id.
func Tombstone(id string) PendingOp {
	return PendingOp{Event: Event{ID: id}, Intent: IntentDelete}
}

// Upsert builds a create or update intent carrying a copy of e.
func Upsert(e Event, intent Intent) PendingOp {
	return PendingOp{Event: e.Clone(), Intent: intent}
}
