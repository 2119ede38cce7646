package domain

import "time"

// TransitionRecord is one immutable row of the entry audit trail, written on
// every successful workflow transition.
type TransitionRecord struct {
	RecordID   string      `json:"recordID"` // Primary Key (e.g., UUID)
	EntryID    string      `json:"entryID"`
	Event      string      `json:"event"` // SUBMIT, APPROVE, REJECT, CONFIRM
	Actor      string      `json:"actor"` // UserID that triggered the event
	FromStatus EntryStatus `json:"fromStatus"`
	ToStatus   EntryStatus `json:"toStatus"`
	OccurredAt time.Time   `json:"occurredAt"`
}
