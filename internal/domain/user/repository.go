package user

import "context"

type Repository interface {
	// Create returns ErrLoginTaken when the login already exists.
	Create(ctx context.Context, login, passwordHash string) (int, error)
	// FindByLogin returns ErrNotFound for unknown logins.
	FindByLogin(ctx context.Context, login string) (User, error)
}
