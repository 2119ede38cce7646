package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
	"github.com/opentally/bookkeeping_app/internal/utils"
)

// userService manages user accounts and serves as the role directory for
// workflow permission checks.
type userService struct {
	userRepo portsrepo.UserRepositoryFacade
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID implements portssvc.RoleDirectorySvc.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// RoleOf implements portssvc.RoleDirectorySvc.
func (s *userService) RoleOf(ctx context.Context, userID string) (domain.UserRole, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// requireAdmin gates user administration to the ADMIN role.
func (s *userService) requireAdmin(ctx context.Context, userID string) error {
	role, err := s.RoleOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: unknown actor", apperrors.ErrForbidden)
	}
	if role != domain.RoleAdmin {
		return fmt.Errorf("%w: role %s may not manage users", apperrors.ErrForbidden, role)
	}
	return nil
}

// CreateUser implements portssvc.UserAdminSvc.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Name:         req.Name,
		Role:         domain.UserRole(req.Role),
		PasswordHash: hash,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		logger.Error("Failed to save user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

// ListUsers implements portssvc.UserAdminSvc.
func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.userRepo.ListUsers(ctx, limit, offset)
}

// UpdateUser implements portssvc.UserAdminSvc.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		user.Name = *req.Name
		updated = true
	}
	if req.Role != nil {
		user.Role = domain.UserRole(*req.Role)
		updated = true
	}
	if !updated {
		return user, nil
	}

	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = requestingUserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		logger.Error("Failed to update user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.Info("User updated", slog.String("user_id", userID))
	return user, nil
}

// DeleteUser implements portssvc.UserAdminSvc.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, requestingUserID); err != nil {
		return err
	}

	if err := s.userRepo.DeleteUser(ctx, userID, requestingUserID); err != nil {
		logger.Error("Failed to delete user", slog.String("error", err.Error()), slog.String("user_id", userID))
		return err
	}

	logger.Info("User deleted", slog.String("user_id", userID))
	return nil
}

// Authenticate implements portssvc.UserAuthenticatorSvc. A wrong name and a
// wrong password produce the same error so callers cannot probe for users.
func (s *userService) Authenticate(ctx context.Context, name string, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrForbidden)
	}
	return user, nil
}
