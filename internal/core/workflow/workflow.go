// Package workflow implements the journal entry approval state machine as a
// pure, data-driven transition table. The table is the single source of truth
// for which (event, status, role) combinations are legal.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Event identifies a requested workflow transition.
type Event string

const (
	EventSubmit  Event = "SUBMIT"
	EventApprove Event = "APPROVE"
	EventReject  Event = "REJECT"
	EventConfirm Event = "CONFIRM"
)

// ParseEvent validates a raw event string from the transport layer.
func ParseEvent(raw string) (Event, error) {
	switch Event(strings.ToUpper(strings.TrimSpace(raw))) {
	case EventSubmit:
		return EventSubmit, nil
	case EventApprove:
		return EventApprove, nil
	case EventReject:
		return EventReject, nil
	case EventConfirm:
		return EventConfirm, nil
	default:
		return "", fmt.Errorf("%w: unknown transition event %q", apperrors.ErrValidation, raw)
	}
}

// Transition is one row of the state machine table.
type Transition struct {
	Event           Event
	From            domain.EntryStatus
	To              domain.EntryStatus
	AllowedRoles    []domain.UserRole
	RequiresBalance bool // the entry's imbalance must be exactly zero
	RequiresReason  bool // a non-empty reason string must accompany the event
}

var anyRole = []domain.UserRole{domain.RoleUser, domain.RoleManager, domain.RoleAdmin}
var reviewerRoles = []domain.UserRole{domain.RoleManager, domain.RoleAdmin}

// Table is the complete set of legal transitions. Both the engine and its
// tests are driven from this slice; adding a transition means adding a row,
// not new branching code.
var Table = []Transition{
	{Event: EventSubmit, From: domain.StatusDraft, To: domain.StatusPending, AllowedRoles: anyRole, RequiresBalance: true},
	{Event: EventApprove, From: domain.StatusPending, To: domain.StatusApproved, AllowedRoles: reviewerRoles},
	{Event: EventReject, From: domain.StatusPending, To: domain.StatusDraft, AllowedRoles: reviewerRoles, RequiresReason: true},
	{Event: EventConfirm, From: domain.StatusApproved, To: domain.StatusConfirmed, AllowedRoles: reviewerRoles},
}

// Authorize checks the actor role against every table row for the event.
// It runs before any state or balance check so that an unauthorized actor
// receives a uniform forbidden result regardless of the entry's status.
func Authorize(event Event, role domain.UserRole) error {
	for _, t := range Table {
		if t.Event != event {
			continue
		}
		for _, allowed := range t.AllowedRoles {
			if allowed == role {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: role %s may not %s entries", apperrors.ErrForbidden, role, event)
}

// Resolve finds the table row for (event, from). A missing row means the
// transition is not legal from the entry's current status.
func Resolve(event Event, from domain.EntryStatus) (Transition, error) {
	for _, t := range Table {
		if t.Event == event && t.From == from {
			return t, nil
		}
	}
	return Transition{}, fmt.Errorf("%w: cannot %s an entry in status %s", apperrors.ErrInvalidState, event, from)
}

// Apply runs the full transition against the entry in place: role check,
// state check, balance and reason preconditions, then the status change and
// the event's side effects. It returns the audit record of what happened.
// The caller owns persistence; a returned error leaves the entry unchanged.
func Apply(entry *domain.JournalEntry, event Event, actor domain.User, reason string, imbalance decimal.Decimal, now time.Time) (*domain.TransitionRecord, error) {
	if err := Authorize(event, actor.Role); err != nil {
		return nil, err
	}

	t, err := Resolve(event, entry.Status)
	if err != nil {
		return nil, err
	}

	if t.RequiresBalance && !imbalance.IsZero() {
		return nil, fmt.Errorf("%w: entry does not balance, debits minus credits is %s", apperrors.ErrValidation, imbalance.String())
	}
	if t.RequiresReason && strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: a non-empty reason is required to %s", apperrors.ErrValidation, event)
	}

	from := entry.Status
	entry.Status = t.To

	switch event {
	case EventApprove:
		entry.ApprovedBy = &actor.UserID
		approvedAt := now
		entry.ApprovedAt = &approvedAt
	case EventReject:
		entry.RejectedReason = strings.TrimSpace(reason)
		entry.ApprovedBy = nil
		entry.ApprovedAt = nil
	case EventConfirm:
		entry.ConfirmedBy = &actor.UserID
		confirmedAt := now
		entry.ConfirmedAt = &confirmedAt
	}

	return &domain.TransitionRecord{
		EntryID:    entry.EntryID,
		Event:      string(event),
		Actor:      actor.UserID,
		FromStatus: from,
		ToStatus:   entry.Status,
		OccurredAt: now,
	}, nil
}
