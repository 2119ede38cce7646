package services

import (
	"context"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/core/workflow"
	"github.com/opentally/bookkeeping_app/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries.
type EntryReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, entryID string, requestingUserID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a filtered, paginated list of entry summaries.
	ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListEntryAudit retrieves the transition audit trail for one entry.
	ListEntryAudit(ctx context.Context, entryID string, requestingUserID string) ([]domain.TransitionRecord, error)
}

// EntryWriterSvc defines mutations of DRAFT entries. All of them run through
// the same optimistic-lock discipline as workflow transitions.
type EntryWriterSvc interface {
	// CreateEntry validates and persists a new DRAFT entry.
	CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateEntry edits a DRAFT entry's header and/or lines.
	UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error)

	// DeleteEntry removes a DRAFT entry.
	DeleteEntry(ctx context.Context, entryID string, expectedVersion int64, requestingUserID string) error
}

// EntryWorkflowSvc applies workflow transitions to entries.
type EntryWorkflowSvc interface {
	// Transition loads the entry, checks version, role, state and balance in
	// that order, applies the event, and persists atomically. The updated
	// entry is returned on success.
	Transition(ctx context.Context, entryID string, expectedVersion int64, event workflow.Event, actorUserID string, reason string) (*domain.JournalEntry, error)
}

// EntrySvcFacade combines all journal-entry service interfaces.
type EntrySvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
	EntryWorkflowSvc
}
