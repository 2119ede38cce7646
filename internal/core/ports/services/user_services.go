package services

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/dto"
)

// RoleDirectorySvc is the lookup surface the workflow engine consumes: it
// resolves a user ID to their role for transition permission checks.
type RoleDirectorySvc interface {
	// GetUserByID retrieves one user.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// RoleOf resolves a user's role. Unknown users fail with ErrNotFound.
	RoleOf(ctx context.Context, userID string) (domain.UserRole, error)
}

// UserAdminSvc defines user account administration operations.
type UserAdminSvc interface {
	// CreateUser registers a new user with a hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// ListUsers retrieves a page of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)

	// UpdateUser edits a user's name and/or role.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// DeleteUser soft-deletes a user.
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// UserAuthenticatorSvc verifies credentials for login.
type UserAuthenticatorSvc interface {
	// Authenticate verifies name/password and returns the user on success.
	Authenticate(ctx context.Context, name string, password string) (*domain.User, error)
}

// UserSvcFacade combines all user service interfaces.
type UserSvcFacade interface {
	RoleDirectorySvc
	UserAdminSvc
	UserAuthenticatorSvc
}
