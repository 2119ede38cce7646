package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus mirrors the workflow status column of a journal entry row.
type EntryStatus string

const (
	Draft     EntryStatus = "DRAFT"
	Pending   EntryStatus = "PENDING"
	Approved  EntryStatus = "APPROVED"
	Confirmed EntryStatus = "CONFIRMED"
)

// JournalEntry is the journal_entries table row.
type JournalEntry struct {
	EntryID     string      `db:"entry_id"`
	EntryDate   time.Time   `db:"entry_date"`
	Description string      `db:"description"`
	Status      EntryStatus `db:"status"`
	Version     int64       `db:"version"`

	ApprovedBy     *string    `db:"approved_by"`
	ApprovedAt     *time.Time `db:"approved_at"`
	ConfirmedBy    *string    `db:"confirmed_by"`
	ConfirmedAt    *time.Time `db:"confirmed_at"`
	RejectedReason string     `db:"rejected_reason"`

	AuditFields
}

// LineItem is the entry_lines table row. Amounts use a precise decimal type;
// exactly one of debit_amount/credit_amount is non-zero per row.
type LineItem struct {
	LineID       string          `db:"line_id"`
	EntryID      string          `db:"entry_id"`
	AccountCode  string          `db:"account_code"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Notes        string          `db:"notes"`
	AuditFields
}
