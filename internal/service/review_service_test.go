package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rptas/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func permSetFor(role model.Role, municipality string) *PermissionSet {
	return &PermissionSet{
		UserID:       uuid.New(),
		Known:        true,
		Role:         role,
		Municipality: municipality,
		Permissions:  model.DefaultPermissions(role),
	}
}

func draftSummary(kind model.RecordKind, id uint, municipality string) *model.RecordSummary {
	return &model.RecordSummary{
		Kind:         kind,
		ID:           id,
		OwnerName:    "Juan Dela Cruz",
		Municipality: municipality,
		Barangay:     "Poblacion",
		Status:       model.StatusDraft,
	}
}

func TestPerformActionSubmitFromDraft(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)
	notifier := &fakeNotifier{}
	invalidator := &fakeInvalidator{}

	actor := permSetFor(model.RoleEncoder, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 42, "Bontoc")
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(42)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindBuilding, uint(42), model.StatusDraft,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			_, hasSubmittedAt := updates["submitted_at"]
			return updates["status"] == "submitted" && hasSubmittedAt
		})).Return(true, nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *model.ReviewHistory) bool {
		return e.FromStatus == "draft" && e.ToStatus == "submitted" && e.Note == model.NoteInitialSubmission
	})).Return(nil)

	svc := NewReviewService(records, history, resolver, notifier, invalidator)
	updated, err := svc.PerformAction(context.Background(), model.KindBuilding, 42, actor.UserID.String(), model.ActionSubmit, "")

	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, updated.Status)
	require.NotNil(t, updated.SubmittedAt)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "record_submitted", notifier.events[0].Type)
	assert.Equal(t, "Bontoc", notifier.events[0].Municipality)
	assert.Equal(t, []model.RecordKind{model.KindBuilding}, invalidator.kinds)
	records.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestPerformActionResubmitNotesResubmission(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleEncoder, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindLand, 7, "Sagada")
	record.Status = model.StatusReturned
	records.On("GetSummary", mock.Anything, model.KindLand, uint(7)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindLand, uint(7), model.StatusReturned, mock.Anything).Return(true, nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *model.ReviewHistory) bool {
		return e.Note == model.NoteResubmitted
	})).Return(nil)

	svc := NewReviewService(records, history, resolver, nil, nil)
	updated, err := svc.PerformAction(context.Background(), model.KindLand, 7, actor.UserID.String(), model.ActionSubmit, "")

	require.NoError(t, err)
	assert.Equal(t, model.StatusSubmitted, updated.Status)
	history.AssertExpectations(t)
}

func TestPerformActionClaimStampsReviewer(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)
	notifier := &fakeNotifier{}

	actor := permSetFor(model.RoleLAOO, "Bontoc")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 3, "Bontoc")
	record.Status = model.StatusSubmitted
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(3)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindBuilding, uint(3), model.StatusSubmitted,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			return updates["status"] == "under_review" && updates["reviewer_id"] == actor.UserID
		})).Return(true, nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *model.ReviewHistory) bool {
		return e.FromStatus == "submitted" && e.ToStatus == "under_review" &&
			e.ActorID != nil && *e.ActorID == actor.UserID && e.ActorRole == "laoo"
	})).Return(nil)

	svc := NewReviewService(records, history, resolver, notifier, nil)
	updated, err := svc.PerformAction(context.Background(), model.KindBuilding, 3, actor.UserID.String(), model.ActionClaim, "")

	require.NoError(t, err)
	assert.Equal(t, model.StatusUnderReview, updated.Status)
	require.NotNil(t, updated.ReviewerID)
	assert.Equal(t, actor.UserID, *updated.ReviewerID)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "record_reviewed", notifier.events[0].Type)
	history.AssertExpectations(t)
}

func TestPerformActionApproveStampsTimestamp(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindLand, 9, "Sagada")
	record.Status = model.StatusUnderReview
	records.On("GetSummary", mock.Anything, model.KindLand, uint(9)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindLand, uint(9), model.StatusUnderReview,
		mock.MatchedBy(func(updates map[string]interface{}) bool {
			_, hasApprovedAt := updates["approved_at"]
			return updates["status"] == "approved" && hasApprovedAt
		})).Return(true, nil)
	history.On("Append", mock.Anything, mock.Anything).Return(nil)

	svc := NewReviewService(records, history, resolver, nil, nil)
	updated, err := svc.PerformAction(context.Background(), model.KindLand, 9, actor.UserID.String(), model.ActionApprove, "all checks passed")

	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovedAt)
}

func TestPerformActionEligibility(t *testing.T) {
	tests := []struct {
		name   string
		role   model.Role
		action model.ReviewAction
	}{
		{"laoo cannot submit", model.RoleLAOO, model.ActionSubmit},
		{"provincial cannot submit", model.RoleProvincial, model.ActionSubmit},
		{"encoder cannot claim", model.RoleEncoder, model.ActionClaim},
		{"encoder cannot return", model.RoleEncoder, model.ActionReturn},
		{"encoder cannot approve", model.RoleEncoder, model.ActionApprove},
		{"user cannot submit", model.RoleUser, model.ActionSubmit},
		{"user cannot approve", model.RoleUser, model.ActionApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := new(MockRecordRepository)
			history := new(MockHistoryRepository)
			resolver := new(MockPermissionService)

			actor := permSetFor(tt.role, "")
			resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

			svc := NewReviewService(records, history, resolver, nil, nil)
			_, err := svc.PerformAction(context.Background(), model.KindBuilding, 1, actor.UserID.String(), tt.action, "")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrForbidden)
			records.AssertNotCalled(t, "UpdateReviewState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestPerformActionUnknownActor(t *testing.T) {
	resolver := new(MockPermissionService)
	resolver.On("Resolve", mock.Anything, "ghost").Return(&PermissionSet{Known: false, Role: model.RoleUser}, nil)

	svc := NewReviewService(new(MockRecordRepository), new(MockHistoryRepository), resolver, nil, nil)
	_, err := svc.PerformAction(context.Background(), model.KindBuilding, 1, "ghost", model.ActionSubmit, "")

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPerformActionRecordNotFound(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleEncoder, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewReviewService(records, new(MockHistoryRepository), resolver, nil, nil)
	_, err := svc.PerformAction(context.Background(), model.KindBuilding, 404, actor.UserID.String(), model.ActionSubmit, "")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPerformActionMunicipalityScope(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleLAOO, "Bontoc")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 5, "Sagada")
	record.Status = model.StatusSubmitted
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(5)).Return(record, nil)

	svc := NewReviewService(records, new(MockHistoryRepository), resolver, nil, nil)
	_, err := svc.PerformAction(context.Background(), model.KindBuilding, 5, actor.UserID.String(), model.ActionClaim, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	records.AssertNotCalled(t, "UpdateReviewState", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPerformActionIllegalTransitionIsConflict(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 8, "Bontoc")
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(8)).Return(record, nil)

	svc := NewReviewService(records, new(MockHistoryRepository), resolver, nil, nil)
	_, err := svc.PerformAction(context.Background(), model.KindBuilding, 8, actor.UserID.String(), model.ActionApprove, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "cannot approve a record in status 'draft'")
}

func TestPerformActionLostRaceIsConflict(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)
	notifier := &fakeNotifier{}

	actor := permSetFor(model.RoleLAOO, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 6, "Bontoc")
	record.Status = model.StatusSubmitted
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(6)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindBuilding, uint(6), model.StatusSubmitted, mock.Anything).Return(false, nil)

	svc := NewReviewService(records, new(MockHistoryRepository), resolver, notifier, nil)
	_, err := svc.PerformAction(context.Background(), model.KindBuilding, 6, actor.UserID.String(), model.ActionClaim, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, notifier.events, "a lost race must not notify the queue")
}

func TestPerformActionHistoryFailureIsSwallowed(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleEncoder, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 2, "Bontoc")
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(2)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindBuilding, uint(2), model.StatusDraft, mock.Anything).Return(true, nil)
	history.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit table unavailable"))

	svc := NewReviewService(records, history, resolver, nil, nil)
	updated, err := svc.PerformAction(context.Background(), model.KindBuilding, 2, actor.UserID.String(), model.ActionSubmit, "")

	require.NoError(t, err, "the transition stands even when the audit write fails")
	assert.Equal(t, model.StatusSubmitted, updated.Status)
	history.AssertExpectations(t)
}

func TestPerformActionAdminBypassesScope(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleAdmin, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindLand, 11, "Sagada")
	record.Status = model.StatusUnderReview
	records.On("GetSummary", mock.Anything, model.KindLand, uint(11)).Return(record, nil)
	records.On("UpdateReviewState", mock.Anything, model.KindLand, uint(11), model.StatusUnderReview, mock.Anything).Return(true, nil)
	history.On("Append", mock.Anything, mock.MatchedBy(func(e *model.ReviewHistory) bool {
		return e.Note == "missing survey number"
	})).Return(nil)

	svc := NewReviewService(records, history, resolver, nil, nil)
	updated, err := svc.PerformAction(context.Background(), model.KindLand, 11, actor.UserID.String(), model.ActionReturn, "missing survey number")

	require.NoError(t, err)
	assert.Equal(t, model.StatusReturned, updated.Status)
}

func TestGetHistoryRequiresFeature(t *testing.T) {
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleEncoder, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	svc := NewReviewService(new(MockRecordRepository), new(MockHistoryRepository), resolver, nil, nil)
	_, err := svc.GetHistory(context.Background(), model.KindBuilding, 1, actor.UserID.String())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListHistoryRequiresFeature(t *testing.T) {
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleUser, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	svc := NewReviewService(new(MockRecordRepository), new(MockHistoryRepository), resolver, nil, nil)
	_, _, err := svc.ListHistory(context.Background(), actor.UserID.String(), 1, 20)

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListHistoryPaginates(t *testing.T) {
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleAdmin, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)
	history.On("List", mock.Anything, 2, 10).Return([]model.ReviewHistory{
		{ID: uuid.New(), RecordKind: "land", RecordID: 1, FromStatus: "submitted", ToStatus: "under_review", ActorRole: "laoo"},
	}, int64(11), nil)

	svc := NewReviewService(new(MockRecordRepository), history, resolver, nil, nil)
	entries, total, err := svc.ListHistory(context.Background(), actor.UserID.String(), 2, 10)

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "under_review", entries[0].ToStatus)
}

func TestGetHistoryEnrichesActorName(t *testing.T) {
	records := new(MockRecordRepository)
	history := new(MockHistoryRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleLAOO, "Bontoc")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	record := draftSummary(model.KindBuilding, 4, "Bontoc")
	record.Status = model.StatusUnderReview
	records.On("GetSummary", mock.Anything, model.KindBuilding, uint(4)).Return(record, nil)

	actorID := uuid.New()
	history.On("ListByRecord", mock.Anything, model.KindBuilding, uint(4)).Return([]model.ReviewHistory{
		{
			ID:         uuid.New(),
			RecordKind: "building",
			RecordID:   4,
			FromStatus: "draft",
			ToStatus:   "submitted",
			ActorID:    &actorID,
			Actor:      &model.User{ID: actorID, Username: "encoder1", FullName: "Maria Santos"},
			ActorRole:  "encoder",
			Note:       model.NoteInitialSubmission,
			CreatedAt:  time.Now(),
		},
		{
			ID:         uuid.New(),
			RecordKind: "building",
			RecordID:   4,
			FromStatus: "submitted",
			ToStatus:   "under_review",
			ActorRole:  "laoo",
			CreatedAt:  time.Now(),
		},
	}, nil)

	svc := NewReviewService(records, history, resolver, nil, nil)
	entries, err := svc.GetHistory(context.Background(), model.KindBuilding, 4, actor.UserID.String())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Maria Santos", entries[0].ActorName)
	assert.Equal(t, model.NoteInitialSubmission, entries[0].Note)
	assert.Equal(t, "System", entries[1].ActorName, "a missing actor renders as System")
}
