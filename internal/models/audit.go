package models

import "time"

// TransitionRecord is the entry_audit_log table row. Rows are append-only.
type TransitionRecord struct {
	RecordID   string      `db:"record_id"`
	EntryID    string      `db:"entry_id"`
	Event      string      `db:"event"`
	Actor      string      `db:"actor"`
	FromStatus EntryStatus `db:"from_status"`
	ToStatus   EntryStatus `db:"to_status"`
	OccurredAt time.Time   `db:"occurred_at"`
}
