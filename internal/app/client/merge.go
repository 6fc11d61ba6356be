package client

import "eventkeeper/internal/domain/event"

// ViewEvent is an entry of the effective view shown to the user.
type ViewEvent struct {
	event.Event
	Pending bool         `json:"pending"`
	Intent  event.Intent `json:"intent,omitempty"`
}

// MergeView overlays the pending queue on the authoritative list.
// Tombstones hide their ids. Pending creates and updates replace the confirmed
// entity in place, and ids unknown to the authority follow in queue order.
// The result never holds a tombstoned or duplicated id.
func MergeView(authoritative []event.Event, pending []event.PendingOp) []ViewEvent {
	tombstoned := make(map[string]struct{})
	upserts := make(map[string]event.PendingOp)
	for _, op := range pending {
		if op.IsTombstone() {
			tombstoned[op.ID] = struct{}{}
			continue
		}
		upserts[op.ID] = op
	}

	view := make([]ViewEvent, 0, len(authoritative)+len(upserts))
	seen := make(map[string]struct{}, len(authoritative)+len(upserts))

	for _, e := range authoritative {
		if _, gone := tombstoned[e.ID]; gone {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}

		if op, ok := upserts[e.ID]; ok {
			view = append(view, ViewEvent{Event: op.Event.Clone(), Pending: true, Intent: op.Intent})
			continue
		}
		view = append(view, ViewEvent{Event: e.Clone()})
	}

	for _, op := range pending {
		if op.IsTombstone() {
			continue
		}
		if _, dup := seen[op.ID]; dup {
			continue
		}
		seen[op.ID] = struct{}{}
		view = append(view, ViewEvent{Event: op.Event.Clone(), Pending: true, Intent: op.Intent})
	}

	return view
}
