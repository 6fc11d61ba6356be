package event

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slog"
)

type Servicer interface {
	List(ctx context.Context, userID int) ([]Event, error)
	Find(ctx context.Context, userID int, id string) (Event, error)
	Create(ctx context.Context, userID int, draft Event) (Event, error)
	Update(ctx context.Context, userID int, id string, draft Event) (Event, error)
	Delete(ctx context.Context, userID int, id string) error
}

// Service is the server side of the remote authority. Every call is scoped to one user.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "event_service"),
	}
}

func (s *Service) List(ctx context.Context, userID int) ([]Event, error) {
	events, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

func (s *Service) Find(ctx context.Context, userID int, id string) (Event, error) {
	eventID, err := parseID(id)
	if err != nil {
		return Event{}, err
	}

	e, err := s.repo.Find(ctx, userID, eventID)
	if err != nil {
		return Event{}, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

func (s *Service) Create(ctx context.Context, userID int, draft Event) (Event, error) {
	draft = prepare(draft)
	if err := draft.Validate(); err != nil {
		s.log.Debug("validation failed", "user_id", userID, "error", err)
		return Event{}, err
	}

	// the authority assigns ids, a provisional client id is discarded
	draft.ID = ""
	created, err := s.repo.Create(ctx, userID, draft)
	if err != nil {
		return Event{}, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("event created", "user_id", userID, "event_id", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, userID int, id string, draft Event) (Event, error) {
	eventID, err := parseID(id)
	if err != nil {
		return Event{}, err
	}

	draft = prepare(draft)
	if err := draft.Validate(); err != nil {
		return Event{}, err
	}

	updated, err := s.repo.Update(ctx, userID, eventID, draft)
	if err != nil {
		return Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID int, id string) error {
	eventID, err := parseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func prepare(draft Event) Event {
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Participants = NormalizeParticipants(draft.Participants)
	return draft
}

// parseID maps ids the authority never issued, provisional ones included, to ErrNotFound.
func parseID(id string) (int64, error) {
	eventID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || eventID <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return eventID, nil
}
