package dto

import (
	"time"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineRequest is one debit or credit line in a create/update payload.
// Exactly one of debitAmount/creditAmount must be non-zero; the aggregate
// enforces that, binding only checks shape.
type CreateLineRequest struct {
	AccountCode  string          `json:"accountCode" binding:"required"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"`
}

// CreateEntryRequest is the payload for creating a journal entry.
type CreateEntryRequest struct {
	EntryDate   time.Time           `json:"entryDate" binding:"required"`
	Description string              `json:"description" binding:"required"`
	Lines       []CreateLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// UpdateEntryRequest is the payload for editing a DRAFT entry's header and/or
// lines. ExpectedVersion carries the optimistic lock; a stale value is
// rejected with a conflict.
type UpdateEntryRequest struct {
	ExpectedVersion int64                `json:"expectedVersion" binding:"required,min=1"`
	EntryDate       *time.Time           `json:"entryDate"`
	Description     *string              `json:"description"`
	Lines           *[]CreateLineRequest `json:"lines" binding:"omitempty,min=1,dive"`
}

// TransitionRequest is the payload for a workflow transition.
type TransitionRequest struct {
	ExpectedVersion int64  `json:"expectedVersion" binding:"required,min=1"`
	Event           string `json:"event" binding:"required,transitionevent"`
	Reason          string `json:"reason"` // Required for REJECT only
}

// LineResponse defines the data returned for one entry line.
type LineResponse struct {
	LineID       string          `json:"lineID"`
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID        string          `json:"entryID"`
	EntryDate      time.Time       `json:"entryDate"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	Version        int64           `json:"version"`
	Lines          []LineResponse  `json:"lines,omitempty"`
	Imbalance      decimal.Decimal `json:"imbalance"`
	ApprovedBy     *string         `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time      `json:"approvedAt,omitempty"`
	ConfirmedBy    *string         `json:"confirmedBy,omitempty"`
	ConfirmedAt    *time.Time      `json:"confirmedAt,omitempty"`
	RejectedReason string          `json:"rejectedReason,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ListEntriesParams holds the query parameters for listing entries.
type ListEntriesParams struct {
	Status      *string          `form:"status"`
	DateFrom    *time.Time       `form:"dateFrom" time_format:"2006-01-02"`
	DateTo      *time.Time       `form:"dateTo" time_format:"2006-01-02"`
	Description string           `form:"description"`
	AccountCode string           `form:"accountCode"`
	AmountFrom  *decimal.Decimal `form:"amountFrom"`
	AmountTo    *decimal.Decimal `form:"amountTo"`
	Limit       int              `form:"limit"`
	NextToken   *string          `form:"nextToken"`
}

// ListEntriesResponse is a page of entry summaries plus the token for the
// next page, if any.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// TransitionRecordResponse defines the data returned for one audit record.
type TransitionRecordResponse struct {
	Event      string    `json:"event"`
	Actor      string    `json:"actor"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ToLineResponses converts domain lines to their response shape.
func ToLineResponses(lines []domain.LineItem) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i, line := range lines {
		responses[i] = LineResponse{
			LineID:       line.LineID,
			AccountCode:  line.AccountCode,
			DebitAmount:  line.DebitAmount,
			CreditAmount: line.CreditAmount,
			Notes:        line.Notes,
		}
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
// imbalance is computed by the caller so the DTO layer stays free of
// accounting logic.
func ToEntryResponse(e *domain.JournalEntry, imbalance decimal.Decimal) EntryResponse {
	return EntryResponse{
		EntryID:        e.EntryID,
		EntryDate:      e.EntryDate,
		Description:    e.Description,
		Status:         string(e.Status),
		Version:        e.Version,
		Lines:          ToLineResponses(e.Lines),
		Imbalance:      imbalance,
		ApprovedBy:     e.ApprovedBy,
		ApprovedAt:     e.ApprovedAt,
		ConfirmedBy:    e.ConfirmedBy,
		ConfirmedAt:    e.ConfirmedAt,
		RejectedReason: e.RejectedReason,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
}

// ToTransitionRecordResponses converts audit records to their response shape.
func ToTransitionRecordResponses(records []domain.TransitionRecord) []TransitionRecordResponse {
	responses := make([]TransitionRecordResponse, len(records))
	for i, r := range records {
		responses[i] = TransitionRecordResponse{
			Event:      r.Event,
			Actor:      r.Actor,
			FromStatus: string(r.FromStatus),
			ToStatus:   string(r.ToStatus),
			OccurredAt: r.OccurredAt,
		}
	}
	return responses
}
