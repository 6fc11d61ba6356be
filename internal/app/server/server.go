// Package server assembles the remote authority: storage, domain services,
// HTTP router and the session janitor.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/app/server/api"
	"eventkeeper/internal/app/server/config"
	"eventkeeper/internal/domain/event"
	"eventkeeper/internal/domain/session"
	"eventkeeper/internal/domain/user"
	"eventkeeper/internal/infrastructure/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

// SessionPurger drops expired sessions.
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type App struct {
	cfg     *config.Config
	log     *slog.Logger
	storage *postgres.Storage
	http    *http.Server
	cron    *cron.Cron
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	pool := storage.Pool()

	sessionRepo := postgres.NewSessionRepository(pool, log)
	svc := api.Services{
		Users:    user.NewService(postgres.NewUserRepository(pool, log), user.NewPasswordValidator(), log),
		Sessions: session.NewService(sessionRepo, cfg.Auth.SessionTTL, log),
		Events:   event.NewService(postgres.NewEventRepository(pool, log), log),
	}

	janitor, err := newJanitor(cfg.Auth.PurgeSpec, sessionRepo, log)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		storage: storage,
		cron:    janitor,
		http: &http.Server{
			Addr:              cfg.Server.RunAddress,
			Handler:           api.New(svc, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func newJanitor(spec string, purger SessionPurger, log *slog.Logger) (*cron.Cron, error) {
	log = log.With("component", "session_janitor")
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})))
	_, err := c.AddFunc(spec, func() {
		n, err := purger.PurgeExpired(context.Background())
		if err != nil {
			log.Error("purge expired sessions", "error", err)
			return
		}
		if n > 0 {
			log.Info("expired sessions purged", "count", n)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session purge schedule %q: %w", spec, err)
	}
	return c, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server started", "address", a.http.Addr, "env", a.cfg.Env)
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.http.Shutdown(shutdownCtx)
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	<-a.cron.Stop().Done()
	if err := a.storage.Close(); err != nil {
		a.log.Error("close storage", "error", err)
	}
}

type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
