package mapping

import (
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/models"
)

// ToModelEntry converts a domain JournalEntry to a model JournalEntry.
// Lines are mapped separately; they live in their own table.
func ToModelEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:        d.EntryID,
		EntryDate:      d.EntryDate,
		Description:    d.Description,
		Status:         models.EntryStatus(d.Status),
		Version:        d.Version,
		ApprovedBy:     d.ApprovedBy,
		ApprovedAt:     d.ApprovedAt,
		ConfirmedBy:    d.ConfirmedBy,
		ConfirmedAt:    d.ConfirmedAt,
		RejectedReason: d.RejectedReason,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:        m.EntryID,
		EntryDate:      m.EntryDate,
		Description:    m.Description,
		Status:         domain.EntryStatus(m.Status),
		Version:        m.Version,
		ApprovedBy:     m.ApprovedBy,
		ApprovedAt:     m.ApprovedAt,
		ConfirmedBy:    m.ConfirmedBy,
		ConfirmedAt:    m.ConfirmedAt,
		RejectedReason: m.RejectedReason,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model LineItem
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		LineID:       d.LineID,
		EntryID:      d.EntryID,
		AccountCode:  d.AccountCode,
		DebitAmount:  d.DebitAmount,
		CreditAmount: d.CreditAmount,
		Notes:        d.Notes,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLineItem converts a model LineItem to a domain LineItem
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineID:       m.LineID,
		EntryID:      m.EntryID,
		AccountCode:  m.AccountCode,
		DebitAmount:  m.DebitAmount,
		CreditAmount: m.CreditAmount,
		Notes:        m.Notes,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineItemSlice converts a slice of model LineItems to domain LineItems
func ToDomainLineItemSlice(ms []models.LineItem) []domain.LineItem {
	ds := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}
