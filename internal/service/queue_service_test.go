package service

import (
	"context"
	"testing"
	"time"

	"rptas/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func summaryAt(kind model.RecordKind, id uint, submitted *time.Time) model.RecordSummary {
	return model.RecordSummary{
		Kind:        kind,
		ID:          id,
		Status:      model.StatusSubmitted,
		SubmittedAt: submitted,
	}
}

func TestGetQueueMergesKindsOldestFirst(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	t1 := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	records.On("ListSummaries", mock.Anything, model.KindBuilding, defaultQueueStatuses, "").
		Return([]model.RecordSummary{summaryAt(model.KindBuilding, 1, &t3), summaryAt(model.KindBuilding, 2, &t1)}, nil)
	records.On("ListSummaries", mock.Anything, model.KindLand, defaultQueueStatuses, "").
		Return([]model.RecordSummary{summaryAt(model.KindLand, 3, &t2), summaryAt(model.KindLand, 4, nil)}, nil)

	svc := NewQueueService(records, resolver)
	items, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")

	require.NoError(t, err)
	require.Len(t, items, 4)
	// nil submission timestamp sorts earliest, then ascending.
	assert.Equal(t, uint(4), items[0].ID)
	assert.Equal(t, uint(2), items[1].ID)
	assert.Equal(t, uint(3), items[2].ID)
	assert.Equal(t, uint(1), items[3].ID)
}

func TestGetQueueScopesToMunicipality(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleLAOO, "Sagada")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	records.On("ListSummaries", mock.Anything, model.KindBuilding, defaultQueueStatuses, "Sagada").
		Return([]model.RecordSummary{}, nil)
	records.On("ListSummaries", mock.Anything, model.KindLand, defaultQueueStatuses, "Sagada").
		Return([]model.RecordSummary{}, nil)

	svc := NewQueueService(records, resolver)
	_, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")

	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestGetQueueKindFilter(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	records.On("ListSummaries", mock.Anything, model.KindLand, defaultQueueStatuses, "").
		Return([]model.RecordSummary{summaryAt(model.KindLand, 1, nil)}, nil)

	svc := NewQueueService(records, resolver)
	items, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "land")

	require.NoError(t, err)
	require.Len(t, items, 1)
	records.AssertNotCalled(t, "ListSummaries", mock.Anything, model.KindBuilding, mock.Anything, mock.Anything)
}

func TestGetQueueUnknownKindIsBadRequest(t *testing.T) {
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	svc := NewQueueService(new(MockRecordRepository), resolver)
	_, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "vehicle")

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestGetQueueForbiddenForNonReviewers(t *testing.T) {
	for _, role := range []model.Role{model.RoleUser, model.RoleEncoder} {
		resolver := new(MockPermissionService)
		actor := permSetFor(role, "")
		resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

		svc := NewQueueService(new(MockRecordRepository), resolver)
		_, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")

		assert.ErrorIs(t, err, ErrForbidden, "role %s", role)
	}
}

func TestGetQueueStatusFilterOverridesDefault(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	statuses := []model.RecordStatus{model.StatusApproved}
	records.On("ListSummaries", mock.Anything, model.KindBuilding, statuses, "").Return([]model.RecordSummary{}, nil)
	records.On("ListSummaries", mock.Anything, model.KindLand, statuses, "").Return([]model.RecordSummary{}, nil)

	svc := NewQueueService(records, resolver)
	_, err := svc.GetQueue(context.Background(), actor.UserID.String(), statuses, "")

	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestGetQueueCachesAndInvalidates(t *testing.T) {
	records := new(MockRecordRepository)
	resolver := new(MockPermissionService)

	actor := permSetFor(model.RoleProvincial, "")
	resolver.On("Resolve", mock.Anything, actor.UserID.String()).Return(actor, nil)

	records.On("ListSummaries", mock.Anything, model.KindBuilding, defaultQueueStatuses, "").
		Return([]model.RecordSummary{}, nil).Twice()
	records.On("ListSummaries", mock.Anything, model.KindLand, defaultQueueStatuses, "").
		Return([]model.RecordSummary{}, nil).Twice()

	svc := NewQueueService(records, resolver)

	_, err := svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")
	require.NoError(t, err)
	_, err = svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")
	require.NoError(t, err)

	// Second call inside the TTL is served from the cache.
	records.AssertNumberOfCalls(t, "ListSummaries", 2)

	svc.InvalidateKind(model.KindBuilding)
	_, err = svc.GetQueue(context.Background(), actor.UserID.String(), nil, "")
	require.NoError(t, err)
	records.AssertNumberOfCalls(t, "ListSummaries", 4)
}
