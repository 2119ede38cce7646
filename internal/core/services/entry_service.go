package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/core/ports/messaging"
	portsrepo "github.com/opentally/bookkeeping_app/internal/core/ports/repositories"
	portssvc "github.com/opentally/bookkeeping_app/internal/core/ports/services"
	"github.com/opentally/bookkeeping_app/internal/core/workflow"
	"github.com/opentally/bookkeeping_app/internal/dto"
	"github.com/opentally/bookkeeping_app/internal/middleware"
	"github.com/opentally/bookkeeping_app/internal/utils/accounting"
)

var (
	ErrUnknownAccount  = errors.New("line references an unknown account")
	ErrInactiveAccount = errors.New("line references an inactive account")
)

const defaultListLimit = 20

// entryService orchestrates journal entry operations: aggregate validation,
// the workflow state machine, and the optimistic-lock persistence protocol.
type entryService struct {
	entryRepo  portsrepo.EntryRepositoryFacade
	auditRepo  portsrepo.AuditRepositoryFacade
	accountSvc portssvc.AccountDirectorySvc
	userSvc    portssvc.RoleDirectorySvc
	publisher  messaging.AuditPublisher // may be nil when no broker is configured
}

// NewEntryService creates a new journal entry service.
func NewEntryService(
	entryRepo portsrepo.EntryRepositoryFacade,
	auditRepo portsrepo.AuditRepositoryFacade,
	accountSvc portssvc.AccountDirectorySvc,
	userSvc portssvc.RoleDirectorySvc,
	publisher messaging.AuditPublisher,
) portssvc.EntrySvcFacade {
	return &entryService{
		entryRepo:  entryRepo,
		auditRepo:  auditRepo,
		accountSvc: accountSvc,
		userSvc:    userSvc,
		publisher:  publisher,
	}
}

var _ portssvc.EntrySvcFacade = (*entryService)(nil)

// validateLineAccounts checks every referenced account code against the
// account directory: the code must exist and the account must be active.
func (s *entryService) validateLineAccounts(ctx context.Context, lines []domain.LineItem) error {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountCode]; !ok {
			seen[line.AccountCode] = struct{}{}
			codes = append(codes, line.AccountCode)
		}
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, codes)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts for line validation: %w", err)
	}

	for _, code := range codes {
		acc, found := accounts[code]
		if !found {
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrUnknownAccount, code)
		}
		if !acc.IsActive {
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, ErrInactiveAccount, code)
		}
	}
	return nil
}

// buildLines converts request lines to domain lines owned by entryID.
func buildLines(entryID string, reqLines []dto.CreateLineRequest, actorUserID string, now time.Time) []domain.LineItem {
	lines := make([]domain.LineItem, len(reqLines))
	for i, lr := range reqLines {
		lines[i] = domain.LineItem{
			LineID:       uuid.NewString(),
			EntryID:      entryID,
			AccountCode:  lr.AccountCode,
			DebitAmount:  lr.DebitAmount,
			CreditAmount: lr.CreditAmount,
			Notes:        lr.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorUserID,
			},
		}
	}
	return lines
}

// CreateEntry validates and persists a new DRAFT entry.
// Implements portssvc.EntryWriterSvc.
func (s *entryService) CreateEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	entryID := uuid.NewString()

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.EntryDate,
		Description: req.Description,
		Lines:       buildLines(entryID, req.Lines, creatorUserID, now),
		Status:      domain.StatusDraft,
		Version:     1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateLineAccounts(ctx, entry.Lines); err != nil {
		return nil, err
	}

	if err := s.entryRepo.SaveNewEntry(ctx, entry); err != nil {
		logger.Error("Failed to save new entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Entry created", slog.String("entry_id", entry.EntryID))
	return &entry, nil
}

// GetEntryByID retrieves an entry with its lines.
// Implements portssvc.EntryReaderSvc.
func (s *entryService) GetEntryByID(ctx context.Context, entryID string, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a filtered, paginated list of entry summaries.
// Implements portssvc.EntryReaderSvc.
func (s *entryService) ListEntries(ctx context.Context, userID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	filter := portsrepo.EntryListFilter{
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		Description: params.Description,
		AccountCode: params.AccountCode,
		AmountFrom:  params.AmountFrom,
		AmountTo:    params.AmountTo,
	}
	if params.Status != nil {
		status := domain.EntryStatus(*params.Status)
		switch status {
		case domain.StatusDraft, domain.StatusPending, domain.StatusApproved, domain.StatusConfirmed:
			filter.Status = &status
		default:
			return nil, fmt.Errorf("%w: unknown status filter %q", apperrors.ErrValidation, *params.Status)
		}
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, filter, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToEntryResponse(&entries[i], decimal.Zero)
	}

	logger.Info("Entries listed successfully", "count", len(entries))
	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// ListEntryAudit retrieves the transition audit trail for one entry.
// Implements portssvc.EntryReaderSvc.
func (s *entryService) ListEntryAudit(ctx context.Context, entryID string, requestingUserID string) ([]domain.TransitionRecord, error) {
	if _, err := s.entryRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListTransitionsByEntryID(ctx, entryID)
}

// UpdateEntry edits a DRAFT entry's header and/or lines under the same
// version-check-then-persist discipline as workflow transitions.
// Implements portssvc.EntryWriterSvc.
func (s *entryService) UpdateEntry(ctx context.Context, entryID string, req dto.UpdateEntryRequest, requestingUserID string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Version != req.ExpectedVersion {
		return nil, fmt.Errorf("%w: entry %s is at version %d, request presented %d", apperrors.ErrConflict, entryID, entry.Version, req.ExpectedVersion)
	}

	now := time.Now().UTC()

	if err := entry.UpdateHeader(req.EntryDate, req.Description); err != nil {
		return nil, err
	}
	if req.Lines != nil {
		newLines := buildLines(entry.EntryID, *req.Lines, requestingUserID, now)
		if err := entry.ReplaceLines(newLines); err != nil {
			return nil, err
		}
		if err := s.validateLineAccounts(ctx, entry.Lines); err != nil {
			return nil, err
		}
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = requestingUserID

	if err := s.entryRepo.UpdateEntry(ctx, *entry, req.ExpectedVersion, nil); err != nil {
		logger.Error("Failed to save entry update", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, err
	}
	entry.Version = req.ExpectedVersion + 1

	logger.Info("Entry updated", slog.String("entry_id", entryID), slog.Int64("version", entry.Version))
	return entry, nil
}

// DeleteEntry removes a DRAFT entry under the optimistic-lock discipline.
// Implements portssvc.EntryWriterSvc.
func (s *entryService) DeleteEntry(ctx context.Context, entryID string, expectedVersion int64, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}

	if entry.Version != expectedVersion {
		return fmt.Errorf("%w: entry %s is at version %d, request presented %d", apperrors.ErrConflict, entryID, entry.Version, expectedVersion)
	}
	if err := entry.MutableCheck(); err != nil {
		return err
	}

	if err := s.entryRepo.DeleteEntry(ctx, entryID, expectedVersion); err != nil {
		logger.Error("Failed to delete entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return err
	}

	logger.Info("Entry deleted", slog.String("entry_id", entryID))
	return nil
}

// Transition applies a workflow event to an entry. Checks run in a fixed
// order: load, version, role, state, balance/reason; then the status change
// and its audit record persist in one atomic compare-and-swap. A raced
// concurrent writer surfaces as ErrConflict with no partial mutation.
// Implements portssvc.EntryWorkflowSvc.
func (s *entryService) Transition(ctx context.Context, entryID string, expectedVersion int64, event workflow.Event, actorUserID string, reason string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if entry.Version != expectedVersion {
		return nil, fmt.Errorf("%w: entry %s is at version %d, request presented %d", apperrors.ErrConflict, entryID, entry.Version, expectedVersion)
	}

	actor, err := s.userSvc.GetUserByID(ctx, actorUserID)
	if err != nil {
		logger.Warn("Transition actor lookup failed", slog.String("actor", actorUserID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: unknown actor", apperrors.ErrForbidden)
	}

	now := time.Now().UTC()
	imbalance := accounting.ComputeImbalance(entry.Lines)

	record, err := workflow.Apply(entry, event, *actor, reason, imbalance, now)
	if err != nil {
		return nil, err
	}
	record.RecordID = uuid.NewString()

	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorUserID

	if err := s.entryRepo.UpdateEntry(ctx, *entry, expectedVersion, record); err != nil {
		logger.Error("Failed to persist transition", slog.String("error", err.Error()), slog.String("entry_id", entryID), slog.String("event", string(event)))
		return nil, err
	}
	entry.Version = expectedVersion + 1

	if s.publisher != nil {
		// The database audit row is the durable record; stream delivery is
		// best-effort and must not fail a committed transition.
		if err := s.publisher.PublishTransition(ctx, *record); err != nil {
			logger.Warn("Failed to publish audit event", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
	}

	logger.Info("Entry transitioned",
		slog.String("entry_id", entryID),
		slog.String("event", string(event)),
		slog.String("from", string(record.FromStatus)),
		slog.String("to", string(record.ToStatus)),
	)
	return entry, nil
}
