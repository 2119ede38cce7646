package repositories

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

// AuditReader defines read operations for the transition audit trail.
type AuditReader interface {
	// ListTransitionsByEntryID retrieves all audit records for one entry,
	// oldest first.
	ListTransitionsByEntryID(ctx context.Context, entryID string) ([]domain.TransitionRecord, error)
}

// AuditWriter defines write operations for the transition audit trail.
// Records are append-only; there is no update or delete.
type AuditWriter interface {
	SaveTransitionRecord(ctx context.Context, record domain.TransitionRecord) error
}

// AuditRepositoryFacade combines the audit repository interfaces.
type AuditRepositoryFacade interface {
	AuditReader
	AuditWriter
}
