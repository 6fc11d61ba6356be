package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/client/config"
)

// App wires the sync core to its local cache and the remote authority.
type App struct {
	config      *config.Config
	log         *slog.Logger
	httpClient  *HTTPClient
	storage     Storage
	queue       *Queue
	replica     *Replica
	monitor     *Monitor
	reconciler  *Reconciler
	coordinator *Coordinator

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	httpCl := NewHTTPClient(cfg, log)

	var storage Storage
	sqliteStorage, err := NewSQLiteStorage(cfg.CachePath)
	if err != nil {
		log.Warn("sqlite cache unavailable, using memory; changes will not survive a restart", "error", err)
		storage = NewMemoryStorage()
	} else {
		storage = sqliteStorage
	}

	return newApp(ctx, cfg, log, httpCl, storage)
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger, httpCl *HTTPClient, storage Storage) (*App, error) {
	queue, err := NewQueue(ctx, storage, log)
	if err != nil {
		storage.Close()
		return nil, err
	}
	replica, err := NewReplica(ctx, storage, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		config:     cfg,
		log:        log,
		httpClient: httpCl,
		storage:    storage,
		queue:      queue,
		replica:    replica,
		monitor:    NewMonitor(false, log),
		baseCtx:    baseCtx,
		cancel:     cancel,
	}
	a.reconciler, err = NewReconciler(ctx, httpCl, queue, replica, a.monitor, storage, log)
	if err != nil {
		cancel()
		storage.Close()
		return nil, err
	}
	a.coordinator = NewCoordinator(Deps{
		Authority:   httpCl,
		Queue:       queue,
		Replica:     replica,
		Monitor:     a.monitor,
		Log:         log,
		RequestSync: func() { a.reconciler.Trigger(a.baseCtx) },
	})

	if token, err := a.GetToken(); err == nil && token != "" {
		httpCl.SetToken(token)
		log.Debug("token loaded from file")
	}

	a.CheckConnection(ctx)
	return a, nil
}

func (a *App) Coordinator() *Coordinator {
	return a.coordinator
}

func (a *App) Reconciler() *Reconciler {
	return a.reconciler
}

func (a *App) Monitor() *Monitor {
	return a.monitor
}

func (a *App) IsOnline() bool {
	return a.monitor.IsOnline()
}

// CheckConnection probes the server once and updates the monitor.
func (a *App) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	err := a.httpClient.HealthCheck(ctx)
	if err != nil {
		a.log.Debug("server unreachable", "error", err)
	}
	a.monitor.Set(err == nil)
	return err == nil
}

// Sync drains the queue once and then refreshes the confirmed set.
func (a *App) Sync(ctx context.Context) (*DrainReport, error) {
	if !a.IsOnline() {
		return nil, &TransportError{Op: "sync", Err: errors.New("server unreachable")}
	}

	report, err := a.reconciler.Drain(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.coordinator.Refresh(ctx); err != nil {
		if IsPersistence(err) {
			return report, err
		}
		a.log.Warn("refresh failed", "error", err)
	}
	return report, nil
}

// Run probes connectivity and drains the queue in the background until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.monitor.Watch(ctx, a.httpClient.HealthCheck, a.config.ProbeInterval)
	}()

	a.log.Info("client started",
		"server", a.config.ServerAddress,
		"env", a.config.Env,
		"sync_interval", a.config.SyncInterval,
	)

	err := a.reconciler.Run(ctx, a.config.SyncInterval)
	cancel()
	a.wg.Wait()
	return err
}

// Shutdown waits for background drains and closes the cache.
func (a *App) Shutdown() error {
	a.cancel()
	a.reconciler.Wait()
	a.wg.Wait()
	return a.storage.Close()
}

func (a *App) GetToken() (string, error) {
	data, err := os.ReadFile(a.config.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("token not found, run: eventkeeper auth login")
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *App) SaveToken(token string) error {
	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	a.httpClient.SetToken(token)
	return nil
}

func (a *App) ClearToken() error {
	a.httpClient.SetToken("")
	if err := os.Remove(a.config.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (a *App) IsAuthenticated() bool {
	return a.httpClient.HasToken()
}

func (a *App) Register(ctx context.Context, login, password string) error {
	if err := a.httpClient.Register(ctx, login, password); err != nil {
		return err
	}
	a.log.Info("user registered", "login", login)
	return nil
}

func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.httpClient.Login(ctx, login, password)
	if err != nil {
		return err
	}
	if err := a.SaveToken(token); err != nil {
		return err
	}
	a.log.Info("logged in", "login", login)
	return nil
}
