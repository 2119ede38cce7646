package workflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opentally/bookkeeping_app/internal/apperrors"
	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/core/workflow"
)

var allStatuses = []domain.EntryStatus{
	domain.StatusDraft,
	domain.StatusPending,
	domain.StatusApproved,
	domain.StatusConfirmed,
}

var allEvents = []workflow.Event{
	workflow.EventSubmit,
	workflow.EventApprove,
	workflow.EventReject,
	workflow.EventConfirm,
}

func testUser(role domain.UserRole) domain.User {
	return domain.User{UserID: "user-" + string(role), Role: role}
}

func draftEntry(status domain.EntryStatus) *domain.JournalEntry {
	return &domain.JournalEntry{
		EntryID: "entry-1",
		Status:  status,
		Version: 1,
	}
}

func TestParseEvent(t *testing.T) {
	event, err := workflow.ParseEvent(" submit ")
	require.NoError(t, err)
	assert.Equal(t, workflow.EventSubmit, event)

	_, err = workflow.ParseEvent("PUBLISH")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// TestResolveGrid exercises every (event, status) pair against the table so a
// new transition row cannot silently widen the legal set.
func TestResolveGrid(t *testing.T) {
	legal := map[workflow.Event]domain.EntryStatus{
		workflow.EventSubmit:  domain.StatusDraft,
		workflow.EventApprove: domain.StatusPending,
		workflow.EventReject:  domain.StatusPending,
		workflow.EventConfirm: domain.StatusApproved,
	}

	for _, event := range allEvents {
		for _, status := range allStatuses {
			t.Run(string(event)+"_from_"+string(status), func(t *testing.T) {
				transition, err := workflow.Resolve(event, status)
				if legal[event] == status {
					require.NoError(t, err)
					assert.Equal(t, event, transition.Event)
					assert.Equal(t, status, transition.From)
				} else {
					assert.ErrorIs(t, err, apperrors.ErrInvalidState)
				}
			})
		}
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		event   workflow.Event
		role    domain.UserRole
		allowed bool
	}{
		{workflow.EventSubmit, domain.RoleUser, true},
		{workflow.EventSubmit, domain.RoleManager, true},
		{workflow.EventSubmit, domain.RoleAdmin, true},
		{workflow.EventApprove, domain.RoleUser, false},
		{workflow.EventApprove, domain.RoleManager, true},
		{workflow.EventApprove, domain.RoleAdmin, true},
		{workflow.EventReject, domain.RoleUser, false},
		{workflow.EventReject, domain.RoleManager, true},
		{workflow.EventConfirm, domain.RoleUser, false},
		{workflow.EventConfirm, domain.RoleAdmin, true},
	}

	for _, tc := range tests {
		err := workflow.Authorize(tc.event, tc.role)
		if tc.allowed {
			assert.NoError(t, err, "%s by %s should be allowed", tc.event, tc.role)
		} else {
			assert.ErrorIs(t, err, apperrors.ErrForbidden, "%s by %s should be forbidden", tc.event, tc.role)
		}
	}
}

// Role check must run before the state check: a plain user confirming a DRAFT
// entry gets forbidden, not invalid-state.
func TestApplyRoleCheckedBeforeState(t *testing.T) {
	entry := draftEntry(domain.StatusDraft)

	_, err := workflow.Apply(entry, workflow.EventConfirm, testUser(domain.RoleUser), "", decimal.Zero, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, domain.StatusDraft, entry.Status, "entry must be unchanged on error")
}

func TestApplySubmitRequiresBalance(t *testing.T) {
	entry := draftEntry(domain.StatusDraft)

	_, err := workflow.Apply(entry, workflow.EventSubmit, testUser(domain.RoleUser), "", decimal.NewFromInt(5), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, domain.StatusDraft, entry.Status)

	record, err := workflow.Apply(entry, workflow.EventSubmit, testUser(domain.RoleUser), "", decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, entry.Status)
	assert.Equal(t, domain.StatusDraft, record.FromStatus)
	assert.Equal(t, domain.StatusPending, record.ToStatus)
}

func TestApplyApproveSetsApprover(t *testing.T) {
	entry := draftEntry(domain.StatusPending)
	manager := testUser(domain.RoleManager)
	now := time.Now().UTC()

	record, err := workflow.Apply(entry, workflow.EventApprove, manager, "", decimal.Zero, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, entry.Status)
	require.NotNil(t, entry.ApprovedBy)
	assert.Equal(t, manager.UserID, *entry.ApprovedBy)
	require.NotNil(t, entry.ApprovedAt)
	assert.Equal(t, now, *entry.ApprovedAt)
	assert.Equal(t, manager.UserID, record.Actor)
}

func TestApplyRejectRequiresReasonAndClearsApproval(t *testing.T) {
	entry := draftEntry(domain.StatusPending)
	approver := "prior-approver"
	entry.ApprovedBy = &approver
	manager := testUser(domain.RoleManager)

	_, err := workflow.Apply(entry, workflow.EventReject, manager, "   ", decimal.Zero, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, domain.StatusPending, entry.Status)

	record, err := workflow.Apply(entry, workflow.EventReject, manager, "amounts look wrong", decimal.Zero, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, entry.Status)
	assert.Equal(t, "amounts look wrong", entry.RejectedReason)
	assert.Nil(t, entry.ApprovedBy, "rejection must clear any prior approval")
	assert.Nil(t, entry.ApprovedAt)
	assert.Equal(t, domain.StatusDraft, record.ToStatus)
}

func TestApplyConfirmIsTerminal(t *testing.T) {
	entry := draftEntry(domain.StatusApproved)
	admin := testUser(domain.RoleAdmin)
	now := time.Now().UTC()

	record, err := workflow.Apply(entry, workflow.EventConfirm, admin, "", decimal.Zero, now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, entry.Status)
	require.NotNil(t, entry.ConfirmedBy)
	assert.Equal(t, admin.UserID, *entry.ConfirmedBy)
	assert.Equal(t, now, record.OccurredAt)

	// No event leaves CONFIRMED
	for _, event := range allEvents {
		_, err := workflow.Apply(entry, event, admin, "reason", decimal.Zero, time.Now())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, "%s must not leave CONFIRMED", event)
	}
	assert.Equal(t, domain.StatusConfirmed, entry.Status)
}
