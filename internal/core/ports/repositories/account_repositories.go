package repositories

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByCode retrieves a single account by its code.
	FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error)

	// FindAccountsByCodes retrieves multiple accounts keyed by code.
	// Codes with no matching account are simply absent from the map.
	FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate code fails with ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount persists changes to an existing account's mutable fields.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
