package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// EntryStatus indicates where a journal entry sits in the approval workflow.
type EntryStatus string

const (
	StatusDraft     EntryStatus = "DRAFT"
	StatusPending   EntryStatus = "PENDING"
	StatusApproved  EntryStatus = "APPROVED"
	StatusConfirmed EntryStatus = "CONFIRMED"
)

// LineItem represents a single debit or credit posting within a journal entry,
// tied to one account. Exactly one of DebitAmount/CreditAmount is non-zero.
type LineItem struct {
	LineID       string          `json:"lineID"`  // Primary Key (e.g., UUID)
	EntryID      string          `json:"entryID"` // FK -> JournalEntry.EntryID
	AccountCode  string          `json:"accountCode"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Notes        string          `json:"notes"` // Nullable
	AuditFields
}

// IsDebit reports whether the line posts to the debit side.
func (l LineItem) IsDebit() bool {
	return l.DebitAmount.IsPositive()
}

// Validate checks the line's own invariants: amounts must be non-negative and
// exactly one of the debit/credit pair must be non-zero.
func (l LineItem) Validate() error {
	if l.AccountCode == "" {
		return fmt.Errorf("%w: line is missing an account code", apperrors.ErrValidation)
	}
	if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: line amounts must be non-negative for account %s", apperrors.ErrValidation, l.AccountCode)
	}
	debitSet := !l.DebitAmount.IsZero()
	creditSet := !l.CreditAmount.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("%w: line for account %s must have exactly one of debit or credit set", apperrors.ErrValidation, l.AccountCode)
	}
	return nil
}

// JournalEntry is the aggregate root for one double-entry bookkeeping record.
// Status only moves along the workflow's transition table; Version increments
// by exactly one per successful persisted mutation and backs the optimistic lock.
type JournalEntry struct {
	EntryID     string      `json:"entryID"` // Primary Key (e.g., UUID), immutable
	EntryDate   time.Time   `json:"entryDate"`
	Description string      `json:"description"`
	Lines       []LineItem  `json:"lines,omitempty"` // Insertion order preserved for display
	Status      EntryStatus `json:"status"`
	Version     int64       `json:"version"`

	ApprovedBy     *string    `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	ConfirmedBy    *string    `json:"confirmedBy,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmedAt,omitempty"`
	RejectedReason string     `json:"rejectedReason,omitempty"`

	AuditFields
}

// Validate checks the entry's own field invariants, independent of workflow
// status: required header fields and per-line validity. Account existence is
// the account directory's concern, not the aggregate's.
func (e *JournalEntry) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}
	if e.EntryDate.IsZero() {
		return fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if len(e.Lines) < 1 {
		return fmt.Errorf("%w: entry must have at least one line", apperrors.ErrValidation)
	}
	for _, line := range e.Lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceLines swaps the entry's line set. Permitted only while DRAFT.
func (e *JournalEntry) ReplaceLines(lines []LineItem) error {
	if err := e.MutableCheck(); err != nil {
		return err
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	e.Lines = lines
	return nil
}

// UpdateHeader applies header changes. Permitted only while DRAFT.
func (e *JournalEntry) UpdateHeader(entryDate *time.Time, description *string) error {
	if err := e.MutableCheck(); err != nil {
		return err
	}
	if entryDate != nil {
		if entryDate.IsZero() {
			return fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
		}
		e.EntryDate = *entryDate
	}
	if description != nil {
		if strings.TrimSpace(*description) == "" {
			return fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
		}
		e.Description = *description
	}
	return nil
}

// MutableCheck returns ErrInvalidState unless the entry is still a draft.
// Pending, approved and confirmed entries only change through workflow events.
func (e *JournalEntry) MutableCheck() error {
	if e.Status != StatusDraft {
		return fmt.Errorf("%w: entry %s is %s, only DRAFT entries may be edited or deleted", apperrors.ErrInvalidState, e.EntryID, e.Status)
	}
	return nil
}
