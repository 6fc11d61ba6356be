package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"eventkeeper/internal/domain/event"
)

type EventRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewEventRepository(pool *pgxpool.Pool, log *slog.Logger) *EventRepository {
	return &EventRepository{
		pool: pool,
		log:  log.With("component", "event_repository"),
	}
}

const eventColumns = `id, name, start_date, end_date, completed, participants`

func (r *EventRepository) List(ctx context.Context, userID int) ([]event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY start_date, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list events", "user_id", userID, "error", err)
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *EventRepository) Find(ctx context.Context, userID int, eventID int64) (event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`

	e, err := scanEvent(r.pool.QueryRow(ctx, query, eventID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to find event", "event_id", eventID, "user_id", userID, "error", err)
		return event.Event{}, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, userID int, e event.Event) (event.Event, error) {
	query := `
		INSERT INTO events (user_id, name, start_date, end_date, completed, participants)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.pool.QueryRow(ctx, query,
		userID, e.Name, e.StartDate, e.EndDate, e.Completed, participants(e)))
	if err != nil {
		r.log.Error("failed to create event", "user_id", userID, "error", err)
		return event.Event{}, fmt.Errorf("create event: %w", err)
	}
	return created, nil
}

func (r *EventRepository) Update(ctx context.Context, userID int, eventID int64, e event.Event) (event.Event, error) {
	query := `
		UPDATE events
		SET name = $3, start_date = $4, end_date = $5, completed = $6, participants = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + eventColumns

	updated, err := scanEvent(r.pool.QueryRow(ctx, query,
		eventID, userID, e.Name, e.StartDate, e.EndDate, e.Completed, participants(e)))
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	if err != nil {
		r.log.Error("failed to update event", "event_id", eventID, "user_id", userID, "error", err)
		return event.Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (r *EventRepository) Delete(ctx context.Context, userID int, eventID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		r.log.Error("failed to delete event", "event_id", eventID, "user_id", userID, "error", err)
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var (
		e  event.Event
		id int64
	)
	if err := row.Scan(&id, &e.Name, &e.StartDate, &e.EndDate, &e.Completed, &e.Participants); err != nil {
		return event.Event{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	if e.Participants == nil {
		e.Participants = []string{}
	}
	return e, nil
}

func participants(e event.Event) []string {
	if e.Participants == nil {
		return []string{}
	}
	return e.Participants
}
