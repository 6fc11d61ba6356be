package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"eventkeeper/internal/domain/event"
)

// SQLiteStorage keeps the cache documents as JSON values in a key/value table.
// Read-modify-write cycles run in BEGIN IMMEDIATE transactions, so several
// processes can share one cache file.
type SQLiteStorage struct {
	db *sql.DB
}

type kvQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache tables: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStorage) Entities(ctx context.Context) ([]event.Event, error) {
	events := []event.Event{}
	if err := kvGet(ctx, s.db, keyEntities, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *SQLiteStorage) SetEntities(ctx context.Context, events []event.Event) error {
	if events == nil {
		events = []event.Event{}
	}
	return kvPut(ctx, s.db, keyEntities, events)
}

func (s *SQLiteStorage) PendingQueue(ctx context.Context) ([]event.PendingOp, error) {
	ops := []event.PendingOp{}
	if err := kvGet(ctx, s.db, keyPending, &ops); err != nil {
		return nil, err
	}
	return ops, nil
}

func (s *SQLiteStorage) SetPendingQueue(ctx context.Context, ops []event.PendingOp) error {
	_, err := s.UpdatePendingQueue(ctx, func([]event.PendingOp, int64) ([]event.PendingOp, error) {
		return ops, nil
	})
	return err
}

func (s *SQLiteStorage) UpdatePendingQueue(ctx context.Context, fn PendingUpdate) ([]event.PendingOp, error) {
	var out []event.PendingOp
	err := s.withTx(ctx, keyPending, func(tx *sql.Tx) error {
		ops := []event.PendingOp{}
		if err := kvGet(ctx, tx, keyPending, &ops); err != nil {
			return &PersistenceError{Key: keyPending, Err: err}
		}
		var lastSeq int64
		if err := kvGet(ctx, tx, keySeq, &lastSeq); err != nil {
			return &PersistenceError{Key: keySeq, Err: err}
		}
		lastSeq = max(lastSeq, maxSeq(ops))

		next, err := fn(ops, lastSeq)
		if err != nil {
			return err
		}
		if next == nil {
			next = []event.PendingOp{}
		}

		if err := kvPut(ctx, tx, keyPending, next); err != nil {
			return err
		}
		if err := kvPut(ctx, tx, keySeq, max(lastSeq, maxSeq(next))); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStorage) SyncStats(ctx context.Context) (SyncStats, error) {
	var stats SyncStats
	if err := kvGet(ctx, s.db, keyStats, &stats); err != nil {
		return SyncStats{}, err
	}
	return stats, nil
}

func (s *SQLiteStorage) SetSyncStats(ctx context.Context, stats SyncStats) error {
	return kvPut(ctx, s.db, keyStats, stats)
}

func (s *SQLiteStorage) AcquireLease(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	key := leasePrefix + name
	acquired := false
	err := s.withTx(ctx, key, func(tx *sql.Tx) error {
		var current lease
		if err := kvGet(ctx, tx, key, &current); err != nil {
			return &PersistenceError{Key: key, Err: err}
		}
		now := time.Now().UTC()
		if current.heldByOther(owner, now) {
			return nil
		}
		acquired = true
		return kvPut(ctx, tx, key, lease{Owner: owner, Expires: now.Add(ttl)})
	})
	return acquired, err
}

func (s *SQLiteStorage) ReleaseLease(ctx context.Context, name, owner string) error {
	key := leasePrefix + name
	return s.withTx(ctx, key, func(tx *sql.Tx) error {
		var current lease
		if err := kvGet(ctx, tx, key, &current); err != nil {
			return &PersistenceError{Key: key, Err: err}
		}
		if current.Owner != owner {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
			return &PersistenceError{Key: key, Err: err}
		}
		return nil
	})
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) withTx(ctx context.Context, key string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Key: key, Err: fmt.Errorf("begin: %w", err)}
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Key: key, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

func kvGet(ctx context.Context, q kvQuerier, key string, dst any) error {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func kvPut(ctx context.Context, q kvQuerier, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Key: key, Err: err}
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC())
	if err != nil {
		return &PersistenceError{Key: key, Err: err}
	}
	return nil
}
