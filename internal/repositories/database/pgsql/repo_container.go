package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EntryRepo:   newPgxEntryRepository(dbPool),
		AccountRepo: newPgxAccountRepository(dbPool),
		UserRepo:    newPgxUserRepository(dbPool),
		AuditRepo:   newPgxAuditRepository(dbPool),
	}
}
