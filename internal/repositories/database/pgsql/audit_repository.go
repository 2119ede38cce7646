package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	"github.com/opentally/bookkeeping_app/internal/models"
	"github.com/opentally/bookkeeping_app/internal/utils/mapping"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the transition audit trail.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepositoryFacade {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxAuditRepository implements portsrepo.AuditRepositoryFacade
var _ portsrepo.AuditRepositoryFacade = (*PgxAuditRepository)(nil)

// execer is satisfied by both pgxpool.Pool and pgx.Tx, so the audit insert can
// ride inside an entry repository transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// insertTransitionRecord appends one audit row through the given executor.
func insertTransitionRecord(ctx context.Context, db execer, record models.TransitionRecord) error {
	query := `
		INSERT INTO entry_audit_log (record_id, entry_id, event, actor, from_status, to_status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := db.Exec(ctx, query,
		record.RecordID,
		record.EntryID,
		record.Event,
		record.Actor,
		record.FromStatus,
		record.ToStatus,
		record.OccurredAt,
	)
	return err
}

// SaveTransitionRecord appends one audit row outside any entry transaction.
func (r *PgxAuditRepository) SaveTransitionRecord(ctx context.Context, record domain.TransitionRecord) error {
	if err := insertTransitionRecord(ctx, r.Pool, mapping.ToModelTransitionRecord(record)); err != nil {
		return apperrors.NewAppError(500, "failed to insert audit record for entry "+record.EntryID, err)
	}
	return nil
}

// ListTransitionsByEntryID retrieves all audit records for one entry, oldest first.
func (r *PgxAuditRepository) ListTransitionsByEntryID(ctx context.Context, entryID string) ([]domain.TransitionRecord, error) {
	query := `
		SELECT record_id, entry_id, event, actor, from_status, to_status, occurred_at
		FROM entry_audit_log
		WHERE entry_id = $1
		ORDER BY occurred_at, record_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query audit records for entry "+entryID, err)
	}
	defer rows.Close()

	records := []models.TransitionRecord{}
	for rows.Next() {
		var m models.TransitionRecord
		err := rows.Scan(
			&m.RecordID,
			&m.EntryID,
			&m.Event,
			&m.Actor,
			&m.FromStatus,
			&m.ToStatus,
			&m.OccurredAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit row for entry "+entryID, err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating audit rows for entry "+entryID, err)
	}
	return mapping.ToDomainTransitionRecordSlice(records), nil
}
