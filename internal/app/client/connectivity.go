package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Monitor tracks reachability of the remote authority and notifies
// listeners once per genuine transition.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	nextID    int
	listeners map[int]func(online bool)
	log       *slog.Logger
}

func NewMonitor(initial bool, log *slog.Logger) *Monitor {
	return &Monitor{
		online:    initial,
		listeners: make(map[int]func(bool)),
		log:       log.With("component", "connectivity"),
	}
}

func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange registers fn and returns a function that unregisters it.
func (m *Monitor) OnChange(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Set records the observed reachability. Listeners run only when the value changes.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	m.log.Info("connectivity changed", "online", online)
	for _, fn := range fns {
		fn(online)
	}
}

// Watch probes the authority every interval until ctx is done.
func (m *Monitor) Watch(ctx context.Context, probe func(context.Context) error, interval time.Duration) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := probe(pctx)
		if err != nil && ctx.Err() != nil {
			return
		}
		if err != nil {
			m.log.Debug("probe failed", "error", err)
		}
		m.Set(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
