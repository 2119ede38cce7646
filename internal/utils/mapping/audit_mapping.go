package mapping

import (
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/models"
)

// ToModelTransitionRecord converts a domain TransitionRecord to a model TransitionRecord
func ToModelTransitionRecord(d domain.TransitionRecord) models.TransitionRecord {
	return models.TransitionRecord{
		RecordID:   d.RecordID,
		EntryID:    d.EntryID,
		Event:      d.Event,
		Actor:      d.Actor,
		FromStatus: models.EntryStatus(d.FromStatus),
		ToStatus:   models.EntryStatus(d.ToStatus),
		OccurredAt: d.OccurredAt,
	}
}

// ToDomainTransitionRecord converts a model TransitionRecord to a domain TransitionRecord
func ToDomainTransitionRecord(m models.TransitionRecord) domain.TransitionRecord {
	return domain.TransitionRecord{
		RecordID:   m.RecordID,
		EntryID:    m.EntryID,
		Event:      m.Event,
		Actor:      m.Actor,
		FromStatus: domain.EntryStatus(m.FromStatus),
		ToStatus:   domain.EntryStatus(m.ToStatus),
		OccurredAt: m.OccurredAt,
	}
}

// ToDomainTransitionRecordSlice converts a slice of model TransitionRecords to domain TransitionRecords
func ToDomainTransitionRecordSlice(ms []models.TransitionRecord) []domain.TransitionRecord {
	ds := make([]domain.TransitionRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransitionRecord(m)
	}
	return ds
}
