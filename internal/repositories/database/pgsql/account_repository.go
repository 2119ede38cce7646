package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	"github.com/opentally/bookkeeping_app/internal/models"
	"github.com/opentally/bookkeeping_app/internal/utils/mapping"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for chart of accounts data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_code, name, account_type, description, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountCode,
		&m.Name,
		&m.AccountType,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveAccount persists a new account. A duplicate code fails with ErrDuplicate.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountCode,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.Description,
		modelAcc.IsActive,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: account with code %s already exists", apperrors.ErrDuplicate, modelAcc.AccountCode)
		}
		return apperrors.NewAppError(500, "failed to insert account "+modelAcc.AccountCode, err)
	}
	return nil
}

// UpdateAccount persists changes to an existing account's mutable fields.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $1, account_type = $2, description = $3, is_active = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE account_code = $7;
	`
	tag, err := r.Pool.Exec(ctx, query,
		modelAcc.Name,
		modelAcc.AccountType,
		modelAcc.Description,
		modelAcc.IsActive,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
		modelAcc.AccountCode,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update account "+modelAcc.AccountCode, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", apperrors.ErrNotFound, modelAcc.AccountCode)
	}
	return nil
}

// FindAccountByCode retrieves a single account by its code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, accountCode string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_code = $1;
	`
	m, err := scanAccount(r.Pool.QueryRow(ctx, query, accountCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountCode)
		}
		return nil, apperrors.NewAppError(500, "failed to find account by code "+accountCode, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByCodes retrieves multiple accounts keyed by code. Codes with no
// matching account are simply absent from the result.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, accountCodes []string) (map[string]domain.Account, error) {
	if len(accountCodes) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_code = ANY($1);
	`
	rows, err := r.Pool.Query(ctx, query, accountCodes)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts by codes", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Account, len(accountCodes))
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		result[m.AccountCode] = mapping.ToDomainAccount(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return result, nil
}

// ListAccounts retrieves a page of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY account_code
		LIMIT $1 OFFSET $2;
	`
	rows, err := r.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query accounts", err)
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account row", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account rows", err)
	}
	return mapping.ToDomainAccountSlice(accounts), nil
}
