package repositories

import (
	"context"
	"time"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryListFilter narrows a paginated entry listing. Zero values mean
// "no constraint" for every field.
type EntryListFilter struct {
	Status      *domain.EntryStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Description string // substring match, case-insensitive
	AccountCode string // entries with at least one line on this account
	AmountFrom  *decimal.Decimal // total debits lower bound
	AmountTo    *decimal.Decimal // total debits upper bound
}

// EntryReader defines read operations for journal entry data.
type EntryReader interface {
	// FindEntryByID retrieves an entry with its lines by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, paginated list of entry summaries
	// (lines not populated) using token-based pagination.
	ListEntries(ctx context.Context, filter EntryListFilter, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)
}

// EntryWriter defines write operations for journal entry data. Every mutation
// of an existing entry is a compare-and-swap keyed on the version column:
// the row is updated only if its stored version equals expectedVersion, and a
// mismatch surfaces as apperrors.ErrConflict with no partial write.
type EntryWriter interface {
	// SaveNewEntry persists a freshly created entry and its lines.
	SaveNewEntry(ctx context.Context, entry domain.JournalEntry) error

	// UpdateEntry persists the entry's current state (header, lines, status,
	// workflow fields) with version expectedVersion+1, atomically replacing
	// the line set, iff the stored version still equals expectedVersion.
	// A non-nil record is appended to the audit trail in the same database
	// transaction so the transition and its audit row commit or fail together.
	UpdateEntry(ctx context.Context, entry domain.JournalEntry, expectedVersion int64, record *domain.TransitionRecord) error

	// DeleteEntry removes the entry and its lines iff the stored version
	// still equals expectedVersion.
	DeleteEntry(ctx context.Context, entryID string, expectedVersion int64) error
}

// EntryRepositoryFacade combines all entry-related repository interfaces.
type EntryRepositoryFacade interface {
	EntryReader
	EntryWriter
}
