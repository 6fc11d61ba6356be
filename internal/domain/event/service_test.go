package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, userID int) ([]Event, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Event), args.Error(1)
}

func (m *MockRepository) Find(ctx context.Context, userID int, eventID int64) (Event, error) {
	args := m.Called(ctx, userID, eventID)
	return args.Get(0).(Event), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, userID int, e Event) (Event, error) {
	args := m.Called(ctx, userID, e)
	return args.Get(0).(Event), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, userID int, eventID int64, e Event) (Event, error) {
	args := m.Called(ctx, userID, eventID, e)
	return args.Get(0).(Event), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, userID int, eventID int64) error {
	args := m.Called(ctx, userID, eventID)
	return args.Error(0)
}

func TestService_Create(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("normalizes and drops provisional id", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, slog.Default())

		draft := Event{
			ID:           "local-1",
			Name:         "  Standup ",
			StartDate:    start,
			EndDate:      start.Add(time.Hour),
			Participants: []string{" ann ", "", "bob"},
		}

		repo.On("Create", mock.Anything, 7, mock.MatchedBy(func(e Event) bool {
			return e.ID == "" && e.Name == "Standup" && assert.ObjectsAreEqual([]string{"ann", "bob"}, e.Participants)
		})).Return(Event{ID: "12", Name: "Standup"}, nil)

		created, err := svc.Create(context.Background(), 7, draft)
		require.NoError(t, err)
		assert.Equal(t, "12", created.ID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, slog.Default())

		_, err := svc.Create(context.Background(), 7, Event{Name: "x", StartDate: start, EndDate: start.Add(-time.Hour)})
		assert.ErrorIs(t, err, ErrInvalidData)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, slog.Default())

		_, err := svc.Create(context.Background(), 7, Event{Name: "   "})
		assert.ErrorIs(t, err, ErrInvalidData)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, slog.Default())

		repo.On("Create", mock.Anything, 7, mock.Anything).Return(Event{}, errors.New("database error"))

		_, err := svc.Create(context.Background(), 7, Event{Name: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create event")
		assert.Contains(t, err.Error(), "database error")
	})
}

func TestService_UnknownIDs(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "provisional id", id: "local-4f1c"},
		{name: "empty id", id: ""},
		{name: "zero id", id: "0"},
		{name: "negative id", id: "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := NewService(repo, slog.Default())
			ctx := context.Background()

			_, err := svc.Find(ctx, 1, tt.id)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = svc.Update(ctx, 1, tt.id, Event{Name: "x"})
			assert.ErrorIs(t, err, ErrNotFound)

			err = svc.Delete(ctx, 1, tt.id)
			assert.ErrorIs(t, err, ErrNotFound)

			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())
	ctx := context.Background()

	repo.On("Update", mock.Anything, 3, int64(42), mock.AnythingOfType("event.Event")).
		Return(Event{ID: "42", Name: "renamed", Completed: true}, nil)
	repo.On("Delete", mock.Anything, 3, int64(42)).Return(ErrNotFound)

	updated, err := svc.Update(ctx, 3, "42", Event{Name: "renamed", Completed: true})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	err = svc.Delete(ctx, 3, "42")
	assert.ErrorIs(t, err, ErrNotFound)

	repo.AssertExpectations(t)
}

func TestService_ListNeverNil(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, slog.Default())

	repo.On("List", mock.Anything, 5).Return(nil, nil)

	events, err := svc.List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}
