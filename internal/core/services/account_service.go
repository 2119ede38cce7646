package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
)

// accountService maintains the chart of accounts and serves as the account
// directory for entry line validation.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	userSvc     portssvc.RoleDirectorySvc
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, userSvc portssvc.RoleDirectorySvc) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, userSvc: userSvc}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// requireAdmin rejects chart maintenance by non-admin roles. Reading the
// directory is open to any authenticated user.
func (s *accountService) requireAdmin(ctx context.Context, userID string) error {
	role, err := s.userSvc.RoleOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: unknown actor", apperrors.ErrForbidden)
	}
	if role != domain.RoleAdmin {
		return fmt.Errorf("%w: role %s may not maintain the chart of accounts", apperrors.ErrForbidden, role)
	}
	return nil
}

// GetAccountByCode implements portssvc.AccountDirectorySvc.
func (s *accountService) GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByCode(ctx, accountCode)
}

// GetAccountsByCodes implements portssvc.AccountDirectorySvc.
func (s *accountService) GetAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, accountCodes)
}

// CreateAccount implements portssvc.AccountAdminSvc.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountCode: req.AccountCode,
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s already exists", apperrors.ErrDuplicate, req.AccountCode)
		}
		logger.Error("Failed to save account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	logger.Info("Account created", slog.String("account_code", account.AccountCode))
	return &account, nil
}

// ListAccounts implements portssvc.AccountAdminSvc.
func (s *accountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.accountRepo.ListAccounts(ctx, limit, offset)
}

// UpdateAccount implements portssvc.AccountAdminSvc.
func (s *accountService) UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_code", accountCode))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account updated", slog.String("account_code", accountCode))
	return account, nil
}

// DeactivateAccount implements portssvc.AccountAdminSvc.
func (s *accountService) DeactivateAccount(ctx context.Context, accountCode string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.requireAdmin(ctx, requestingUserID); err != nil {
		return err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, accountCode)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil // already inactive
	}

	account.IsActive = false
	account.LastUpdatedAt = time.Now().UTC()
	account.LastUpdatedBy = requestingUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to deactivate account", slog.String("error", err.Error()), slog.String("account_code", accountCode))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated", slog.String("account_code", accountCode))
	return nil
}
