package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	"github.com/opentally/bookkeeping_app/internal/models"
	"github.com/opentally/bookkeeping_app/internal/utils/mapping"
	"github.com/opentally/bookkeeping_app/internal/utils/pagination"
)

type PgxEntryRepository struct {
	BaseRepository
}

// newPgxEntryRepository creates a new repository for journal entry and line data.
func newPgxEntryRepository(pool *pgxpool.Pool) portsrepo.EntryRepositoryFacade {
	return &PgxEntryRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxEntryRepository implements portsrepo.EntryRepositoryFacade
var _ portsrepo.EntryRepositoryFacade = (*PgxEntryRepository)(nil)

const entryColumns = `entry_id, entry_date, description, status, version,
	approved_by, approved_at, confirmed_by, confirmed_at, rejected_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const lineInsertQuery = `
	INSERT INTO entry_lines (line_id, entry_id, account_code, debit_amount, credit_amount, notes,
		created_at, created_by, last_updated_at, last_updated_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

// SaveNewEntry persists a new entry and its lines within a DB transaction.
func (r *PgxEntryRepository) SaveNewEntry(ctx context.Context, entry domain.JournalEntry) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored if the transaction commits

	modelEntry := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = tx.Exec(ctx, entryQuery,
		modelEntry.EntryID,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.Status,
		modelEntry.Version,
		modelEntry.ApprovedBy,
		modelEntry.ApprovedAt,
		modelEntry.ConfirmedBy,
		modelEntry.ConfirmedAt,
		modelEntry.RejectedReason,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert entry "+modelEntry.EntryID, err)
	}

	if err := insertLines(ctx, tx, entry.Lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for entry "+modelEntry.EntryID, err)
	}

	return r.Commit(ctx, tx)
}

// insertLines batch-inserts the given line set.
func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.LineItem) error {
	batch := &pgx.Batch{}
	for _, line := range lines {
		modelLine := mapping.ToModelLineItem(line)
		batch.Queue(lineInsertQuery,
			modelLine.LineID,
			modelLine.EntryID,
			modelLine.AccountCode,
			modelLine.DebitAmount,
			modelLine.CreditAmount,
			modelLine.Notes,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	return br.Close()
}

// UpdateEntry persists the entry with version expectedVersion+1 iff the stored
// version still equals expectedVersion. The line set is replaced wholesale and
// an optional audit record is appended, all in one database transaction.
func (r *PgxEntryRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64, record *domain.TransitionRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	modelEntry := mapping.ToModelEntry(entry)
	updateQuery := `
		UPDATE journal_entries
		SET entry_date = $1, description = $2, status = $3, version = $4,
			approved_by = $5, approved_at = $6, confirmed_by = $7, confirmed_at = $8,
			rejected_reason = $9, last_updated_at = $10, last_updated_by = $11
		WHERE entry_id = $12 AND version = $13;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		modelEntry.EntryDate,
		modelEntry.Description,
		modelEntry.Status,
		expectedVersion+1,
		modelEntry.ApprovedBy,
		modelEntry.ApprovedAt,
		modelEntry.ConfirmedBy,
		modelEntry.ConfirmedAt,
		modelEntry.RejectedReason,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
		modelEntry.EntryID,
		expectedVersion,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update entry "+modelEntry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMissedWrite(ctx, modelEntry.EntryID, expectedVersion)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE entry_id = $1;`, modelEntry.EntryID); err != nil {
		return apperrors.NewAppError(500, "failed to clear lines for entry "+modelEntry.EntryID, err)
	}
	if err := insertLines(ctx, tx, entry.Lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert lines for entry "+modelEntry.EntryID, err)
	}

	if record != nil {
		if err := insertTransitionRecord(ctx, tx, mapping.ToModelTransitionRecord(*record)); err != nil {
			return apperrors.NewAppError(500, "failed to append audit record for entry "+modelEntry.EntryID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteEntry removes the entry and its lines iff the stored version still
// equals expectedVersion.
func (r *PgxEntryRepository) DeleteEntry(ctx context.Context, entryID string, expectedVersion int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM entry_lines WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for entry "+entryID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1 AND version = $2;`, entryID, expectedVersion)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete entry "+entryID, err)
	}
	if tag.RowsAffected() == 0 {
		// Rolls back the line delete above as well
		return r.classifyMissedWrite(ctx, entryID, expectedVersion)
	}

	return r.Commit(ctx, tx)
}

// classifyMissedWrite distinguishes a missing row from a version mismatch
// after a guarded write touched zero rows.
func (r *PgxEntryRepository) classifyMissedWrite(ctx context.Context, entryID string, expectedVersion int64) error {
	var storedVersion int64
	err := r.Pool.QueryRow(ctx, `SELECT version FROM journal_entries WHERE entry_id = $1;`, entryID).Scan(&storedVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
	}
	if err != nil {
		return apperrors.NewAppError(500, "failed to check entry "+entryID+" after guarded write", err)
	}
	return fmt.Errorf("%w: entry %s is at version %d, expected %d", apperrors.ErrConflict, entryID, storedVersion, expectedVersion)
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxEntryRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE entry_id = $1;
	`
	var modelEntry models.JournalEntry
	err := r.Pool.QueryRow(ctx, query, entryID).Scan(
		&modelEntry.EntryID,
		&modelEntry.EntryDate,
		&modelEntry.Description,
		&modelEntry.Status,
		&modelEntry.Version,
		&modelEntry.ApprovedBy,
		&modelEntry.ApprovedAt,
		&modelEntry.ConfirmedBy,
		&modelEntry.ConfirmedAt,
		&modelEntry.RejectedReason,
		&modelEntry.CreatedAt,
		&modelEntry.CreatedBy,
		&modelEntry.LastUpdatedAt,
		&modelEntry.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}

	lines, err := r.findLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	domainEntry := mapping.ToDomainEntry(modelEntry)
	domainEntry.Lines = lines
	return &domainEntry, nil
}

// findLinesByEntryID retrieves all lines of one entry in insertion order.
func (r *PgxEntryRepository) findLinesByEntryID(ctx context.Context, entryID string) ([]domain.LineItem, error) {
	query := `
		SELECT line_id, entry_id, account_code, debit_amount, credit_amount, notes,
			created_at, created_by, last_updated_at, last_updated_by
		FROM entry_lines
		WHERE entry_id = $1
		ORDER BY created_at, line_id;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.LineItem{}
	for rows.Next() {
		var l models.LineItem
		err := rows.Scan(
			&l.LineID,
			&l.EntryID,
			&l.AccountCode,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.Notes,
			&l.CreatedAt,
			&l.CreatedBy,
			&l.LastUpdatedAt,
			&l.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}

	return mapping.ToDomainLineItemSlice(lines), nil
}

// ListEntries retrieves a filtered page of entry summaries using token-based
// pagination. Ordering is entry_date DESC with created_at DESC as tie-breaker;
// the returned entries do not carry their lines.
func (r *PgxEntryRepository) ListEntries(ctx context.Context, filter portsrepo.EntryListFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to determine whether there is a next page.
	fetchLimit := limit + 1

	conditions := []string{}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		conditions = append(conditions, "e.status = "+addArg(string(*filter.Status)))
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "e.entry_date >= "+addArg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "e.entry_date <= "+addArg(*filter.DateTo))
	}
	if filter.Description != "" {
		conditions = append(conditions, "e.description ILIKE "+addArg("%"+filter.Description+"%"))
	}
	if filter.AccountCode != "" {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM entry_lines l WHERE l.entry_id = e.entry_id AND l.account_code = "+addArg(filter.AccountCode)+")")
	}
	if filter.AmountFrom != nil {
		conditions = append(conditions,
			"(SELECT COALESCE(SUM(l.debit_amount), 0) FROM entry_lines l WHERE l.entry_id = e.entry_id) >= "+addArg(*filter.AmountFrom))
	}
	if filter.AmountTo != nil {
		conditions = append(conditions,
			"(SELECT COALESCE(SUM(l.debit_amount), 0) FROM entry_lines l WHERE l.entry_id = e.entry_id) <= "+addArg(*filter.AmountTo))
	}

	if nextToken != nil && *nextToken != "" {
		lastEntryDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
		// Tuple comparison keeps the cursor stable under the DESC ordering
		conditions = append(conditions,
			"(e.entry_date, e.created_at) < ("+addArg(lastEntryDate)+", "+addArg(lastCreatedAt)+")")
	}

	query := `
		SELECT ` + strings.ReplaceAll(entryColumns, "entry_id", "e.entry_id") + `
		FROM journal_entries e
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.entry_date DESC, e.created_at DESC LIMIT " + addArg(fetchLimit) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries", err)
	}
	defer rows.Close()

	entries := []models.JournalEntry{}
	for rows.Next() {
		var m models.JournalEntry
		err := rows.Scan(
			&m.EntryID,
			&m.EntryDate,
			&m.Description,
			&m.Status,
			&m.Version,
			&m.ApprovedBy,
			&m.ApprovedAt,
			&m.ConfirmedBy,
			&m.ConfirmedAt,
			&m.RejectedReason,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}

	var newNextToken *string
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		newNextToken = &token
	}

	result := make([]domain.JournalEntry, len(entries))
	for i, m := range entries {
		result[i] = mapping.ToDomainEntry(m)
	}
	return result, newNextToken, nil
}
