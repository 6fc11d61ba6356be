package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

// ItemResult is the outcome of delivering one queued operation.
type ItemResult struct {
	ID       string       `json:"id"`
	Intent   event.Intent `json:"intent"`
	RemoteID string       `json:"remote_id,omitempty"`
	Err      error        `json:"-"`
}

// DrainReport collects the per-item results of one pass over the queue.
type DrainReport struct {
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Items    []ItemResult `json:"items"`
}

func (r *DrainReport) Synced() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

func (r *DrainReport) Failed() []ItemResult {
	var failed []ItemResult
	for _, it := range r.Items {
		if it.Err != nil {
			failed = append(failed, it)
		}
	}
	return failed
}

// Warning returns a single *SyncWarning when any item failed, nil otherwise.
func (r *DrainReport) Warning() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return &SyncWarning{Failed: failed}
}

// SyncStats are the cumulative drain counters, persisted across runs.
type SyncStats struct {
	TotalDrains    int       `json:"total_drains"`
	TotalSynced    int       `json:"total_synced"`
	TotalFailed    int       `json:"total_failed"`
	LastDrain      time.Time `json:"last_drain"`
	LastSuccessful time.Time `json:"last_successful"`
	LastFailed     time.Time `json:"last_failed"`
}

const (
	drainLease    = "drain"
	drainLeaseTTL = 2 * time.Minute
)

// Reconciler drains the pending queue against the remote authority.
// At most one drain runs at a time, across every process sharing the cache.
type Reconciler struct {
	authority Authority
	queue     *Queue
	replica   *Replica
	monitor   *Monitor
	store     Storage
	owner     string
	log       *slog.Logger

	running sync.Mutex
	wg      sync.WaitGroup

	mu       sync.Mutex
	stats    SyncStats
	onReport func(*DrainReport)
}

// NewReconciler loads the persisted sync stats from store.
func NewReconciler(ctx context.Context, authority Authority, queue *Queue, replica *Replica, monitor *Monitor, store Storage, log *slog.Logger) (*Reconciler, error) {
	stats, err := store.SyncStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sync stats: %w", err)
	}

	return &Reconciler{
		authority: authority,
		queue:     queue,
		replica:   replica,
		monitor:   monitor,
		store:     store,
		owner:     uuid.NewString(),
		log:       log.With("component", "reconciler"),
		stats:     stats,
	}, nil
}

// OnReport sets a callback invoked after every background drain that did some work.
func (r *Reconciler) OnReport(fn func(*DrainReport)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReport = fn
}

// Drain makes one pass over the queue in insertion order. A failing item stays
// queued and never stops the pass. It returns ErrDrainInProgress when another
// drain is running in this or another process.
func (r *Reconciler) Drain(ctx context.Context) (*DrainReport, error) {
	if !r.running.TryLock() {
		return nil, ErrDrainInProgress
	}
	defer r.running.Unlock()

	held, err := r.store.AcquireLease(ctx, drainLease, r.owner, drainLeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire drain lease: %w", err)
	}
	if !held {
		return nil, ErrDrainInProgress
	}
	defer func() {
		if err := r.store.ReleaseLease(context.WithoutCancel(ctx), drainLease, r.owner); err != nil {
			r.log.Error("release drain lease", "error", err)
		}
	}()

	// other processes may have queued changes since the last read
	if err := r.queue.Reload(ctx); err != nil {
		return nil, err
	}

	report := &DrainReport{Started: time.Now(), Items: []ItemResult{}}
	if r.queue.Len() == 0 {
		report.Finished = time.Now()
		return report, nil
	}

	for op := range r.queue.All() {
		if ctx.Err() != nil {
			break
		}
		res := r.deliver(ctx, op)
		report.Items = append(report.Items, res)
		if res.Err != nil {
			r.log.Warn("pending operation not synced", "id", op.ID, "intent", op.Intent, "error", res.Err)
			continue
		}
		if err := r.replica.Refresh(ctx, r.authority); err != nil {
			r.log.Warn("refresh after sync failed", "error", err)
		}
		if held, err := r.store.AcquireLease(ctx, drainLease, r.owner, drainLeaseTTL); err != nil || !held {
			r.log.Warn("drain lease lost, stopping pass", "error", err)
			break
		}
	}
	report.Finished = time.Now()

	r.record(context.WithoutCancel(ctx), report)
	r.log.Info("drain finished",
		"synced", report.Synced(),
		"failed", len(report.Failed()),
		"remaining", r.queue.Len(),
		"duration", report.Finished.Sub(report.Started),
	)
	return report, nil
}

func (r *Reconciler) deliver(ctx context.Context, op event.PendingOp) ItemResult {
	res := ItemResult{ID: op.ID, Intent: op.Intent}

	var err error
	switch op.Intent {
	case event.IntentDelete:
		err = r.authority.Delete(ctx, op.ID)
		if errors.Is(err, event.ErrNotFound) {
			err = nil
		}
		if err == nil {
			err = r.replica.Drop(ctx, op.ID)
		}

	case event.IntentUpdate:
		var updated event.Event
		updated, err = r.authority.Update(ctx, op.ID, op.Event)
		switch {
		case errors.Is(err, event.ErrNotFound):
			r.log.Info("updated event no longer exists remotely", "id", op.ID)
			err = r.replica.Drop(ctx, op.ID)
		case err == nil:
			res.RemoteID = updated.ID
			err = r.replica.Upsert(ctx, updated)
		}

	case event.IntentCreate:
		var created event.Event
		created, err = r.authority.Create(ctx, op.Event)
		if err == nil {
			res.RemoteID = created.ID
			err = r.replica.Upsert(ctx, created)
		}

	default:
		err = fmt.Errorf("%w: unknown intent %q", event.ErrInvalidData, op.Intent)
	}

	if err != nil {
		if merr := r.queue.MarkFailed(ctx, op, err); merr != nil {
			r.log.Error("record failed attempt", "id", op.ID, "error", merr)
		}
		res.Err = err
		return res
	}

	removed, err := r.queue.Ack(ctx, op)
	if err != nil {
		res.Err = err
		return res
	}
	if removed || op.Intent != event.IntentCreate || res.RemoteID == "" {
		return res
	}

	// a newer intent for a freshly created entity must follow the server id
	moved, err := r.queue.Retarget(ctx, op.ID, res.RemoteID)
	if err != nil {
		res.Err = err
		return res
	}
	if !moved {
		// deleted locally while the create was in flight
		r.log.Info("created event was deleted meanwhile, queuing removal", "id", op.ID, "remote_id", res.RemoteID)
		if _, err := r.queue.Enqueue(ctx, event.Tombstone(res.RemoteID)); err != nil {
			res.Err = err
		}
	}
	return res
}

// Trigger starts a drain in the background. It is ignored while a drain is running.
func (r *Reconciler) Trigger(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.drainAndReport(ctx)
	}()
}

// Run drains every interval and on every transition to online until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	logger := cronLogger{log: r.log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		if !r.monitor.IsOnline() {
			r.log.Debug("offline, periodic sync skipped")
			return
		}
		r.drainAndReport(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}

	unsubscribe := r.monitor.OnChange(func(online bool) {
		if online {
			r.Trigger(ctx)
		}
	})

	c.Start()
	<-ctx.Done()

	unsubscribe()
	<-c.Stop().Done()
	r.wg.Wait()
	return nil
}

// Wait blocks until background drains started by Trigger have finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) Stats() SyncStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// ResetStats clears the persisted counters.
func (r *Reconciler) ResetStats(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.SetSyncStats(ctx, SyncStats{}); err != nil {
		return err
	}
	r.stats = SyncStats{}
	return nil
}

func (r *Reconciler) drainAndReport(ctx context.Context) {
	report, err := r.Drain(ctx)
	if errors.Is(err, ErrDrainInProgress) {
		r.log.Debug("drain already running, trigger ignored")
		return
	}
	if err != nil {
		r.log.Error("drain failed", "error", err)
		return
	}
	if len(report.Items) == 0 {
		return
	}

	r.mu.Lock()
	fn := r.onReport
	r.mu.Unlock()
	if fn != nil {
		fn(report)
	}
}

// record adds report to the stored counters. The drain lease serializes callers
// across processes.
func (r *Reconciler) record(ctx context.Context, report *DrainReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, err := r.store.SyncStats(ctx)
	if err != nil {
		r.log.Warn("load sync stats", "error", err)
		stats = r.stats
	}

	failed := len(report.Failed())
	stats.TotalDrains++
	stats.TotalSynced += report.Synced()
	stats.TotalFailed += failed
	stats.LastDrain = report.Finished
	if failed == 0 {
		stats.LastSuccessful = report.Finished
	} else {
		stats.LastFailed = report.Finished
	}
	r.stats = stats

	if err := r.store.SetSyncStats(ctx, stats); err != nil {
		r.log.Warn("save sync stats", "error", err)
	}
}

// cronLogger routes cron's own logging into slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
