package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
)

func debitLine(account string, amount int64) domain.LineItem {
	return domain.LineItem{
		LineID:      "line-d",
		AccountCode: account,
		DebitAmount: decimal.NewFromInt(amount),
	}
}

func creditLine(account string, amount int64) domain.LineItem {
	return domain.LineItem{
		LineID:       "line-c",
		AccountCode:  account,
		CreditAmount: decimal.NewFromInt(amount),
	}
}

func validEntry() domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:     "entry-1",
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Description: "Office rent for March",
		Lines:       []domain.LineItem{debitLine("6000", 100), creditLine("1000", 100)},
		Status:      domain.StatusDraft,
		Version:     1,
	}
}

func TestLineItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    domain.LineItem
		wantErr bool
	}{
		{"debit only", debitLine("1000", 50), false},
		{"credit only", creditLine("1000", 50), false},
		{"missing account", domain.LineItem{DebitAmount: decimal.NewFromInt(1)}, true},
		{"both sides zero", domain.LineItem{AccountCode: "1000"}, true},
		{"both sides set", domain.LineItem{AccountCode: "1000", DebitAmount: decimal.NewFromInt(1), CreditAmount: decimal.NewFromInt(1)}, true},
		{"negative debit", domain.LineItem{AccountCode: "1000", DebitAmount: decimal.NewFromInt(-5)}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.line.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJournalEntryValidate(t *testing.T) {
	entry := validEntry()
	assert.NoError(t, entry.Validate())

	blank := validEntry()
	blank.Description = "   "
	assert.ErrorIs(t, blank.Validate(), apperrors.ErrValidation)

	noDate := validEntry()
	noDate.EntryDate = time.Time{}
	assert.ErrorIs(t, noDate.Validate(), apperrors.ErrValidation)

	noLines := validEntry()
	noLines.Lines = nil
	assert.ErrorIs(t, noLines.Validate(), apperrors.ErrValidation)
}

func TestMutableCheckByStatus(t *testing.T) {
	for _, status := range []domain.EntryStatus{domain.StatusPending, domain.StatusApproved, domain.StatusConfirmed} {
		entry := validEntry()
		entry.Status = status
		assert.ErrorIs(t, entry.MutableCheck(), apperrors.ErrInvalidState, "status %s must be immutable", status)
	}

	entry := validEntry()
	assert.NoError(t, entry.MutableCheck())
}

func TestReplaceLinesOnlyWhileDraft(t *testing.T) {
	entry := validEntry()
	newLines := []domain.LineItem{debitLine("5000", 30), creditLine("2000", 30)}

	require.NoError(t, entry.ReplaceLines(newLines))
	assert.Equal(t, newLines, entry.Lines)

	entry.Status = domain.StatusPending
	err := entry.ReplaceLines([]domain.LineItem{debitLine("5000", 99), creditLine("2000", 99)})
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.Equal(t, newLines, entry.Lines, "lines must be untouched after a rejected replace")
}

func TestUpdateHeaderValidatesInput(t *testing.T) {
	entry := validEntry()
	newDate := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	newDesc := "Rent, corrected"

	require.NoError(t, entry.UpdateHeader(&newDate, &newDesc))
	assert.Equal(t, newDate, entry.EntryDate)
	assert.Equal(t, newDesc, entry.Description)

	empty := ""
	assert.ErrorIs(t, entry.UpdateHeader(nil, &empty), apperrors.ErrValidation)

	entry.Status = domain.StatusConfirmed
	assert.ErrorIs(t, entry.UpdateHeader(&newDate, nil), apperrors.ErrInvalidState)
}
