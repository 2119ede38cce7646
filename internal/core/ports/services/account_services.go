package services

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/dto"
)

// AccountDirectorySvc is the lookup surface the entry engine consumes: it
// resolves account codes to their type and active flag during line validation.
type AccountDirectorySvc interface {
	// GetAccountByCode retrieves one account by code.
	GetAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// GetAccountsByCodes retrieves several accounts at once, keyed by code.
	GetAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)
}

// AccountAdminSvc defines chart-of-accounts maintenance operations.
type AccountAdminSvc interface {
	// CreateAccount adds a new account to the chart.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)

	// UpdateAccount edits an account's name/description.
	UpdateAccount(ctx context.Context, accountCode string, req dto.UpdateAccountRequest, requestingUserID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive so new lines cannot use it.
	DeactivateAccount(ctx context.Context, accountCode string, requestingUserID string) error
}

// AccountSvcFacade combines the account service interfaces.
type AccountSvcFacade interface {
	AccountDirectorySvc
	AccountAdminSvc
}
