package repositories

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

// UserReader defines read operations for user data.
type UserReader interface {
	// FindUserByID retrieves a user by their unique identifier.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByName retrieves a user by their login name.
	FindUserByName(ctx context.Context, name string) (*domain.User, error)

	// ListUsers retrieves a page of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data.
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdateUser persists changes to an existing user.
	UpdateUser(ctx context.Context, user domain.User) error

	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, deletedBy string) error
}

// UserRepositoryFacade combines all user repository interfaces.
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
