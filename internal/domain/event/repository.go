package event

import "context"

type Repository interface {
	List(ctx context.Context, userID int) ([]Event, error)
	Find(ctx context.Context, userID int, eventID int64) (Event, error)
	Create(ctx context.Context, userID int, e Event) (Event, error)
	Update(ctx context.Context, userID int, eventID int64, e Event) (Event, error)
	Delete(ctx context.Context, userID int, eventID int64) error
}
