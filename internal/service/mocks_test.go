package service

import (
	"context"

	"rptas/internal/model"
	"rptas/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- repository mocks ---

type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) CreateBuilding(ctx context.Context, rec *model.BuildingRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecordRepository) GetBuilding(ctx context.Context, id uint) (*model.BuildingRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BuildingRecord), args.Error(1)
}

func (m *MockRecordRepository) UpdateBuilding(ctx context.Context, rec *model.BuildingRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecordRepository) ListBuildings(ctx context.Context, filter repository.RecordFilter, page, limit int) ([]model.BuildingRecord, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.BuildingRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecordRepository) CreateLand(ctx context.Context, rec *model.LandRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecordRepository) GetLand(ctx context.Context, id uint) (*model.LandRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LandRecord), args.Error(1)
}

func (m *MockRecordRepository) UpdateLand(ctx context.Context, rec *model.LandRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockRecordRepository) ListLands(ctx context.Context, filter repository.RecordFilter, page, limit int) ([]model.LandRecord, int64, error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.LandRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecordRepository) Delete(ctx context.Context, kind model.RecordKind, id uint) error {
	return m.Called(ctx, kind, id).Error(0)
}

func (m *MockRecordRepository) GetSummary(ctx context.Context, kind model.RecordKind, id uint) (*model.RecordSummary, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecordSummary), args.Error(1)
}

func (m *MockRecordRepository) UpdateReviewState(ctx context.Context, kind model.RecordKind, id uint, expected model.RecordStatus, updates map[string]interface{}) (bool, error) {
	args := m.Called(ctx, kind, id, expected, updates)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordRepository) ListSummaries(ctx context.Context, kind model.RecordKind, statuses []model.RecordStatus, municipality string) ([]model.RecordSummary, error) {
	args := m.Called(ctx, kind, statuses, municipality)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecordSummary), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *model.ReviewHistory) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockHistoryRepository) ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewHistory, error) {
	args := m.Called(ctx, kind, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReviewHistory), args.Error(1)
}

func (m *MockHistoryRepository) List(ctx context.Context, page, limit int) ([]model.ReviewHistory, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.ReviewHistory), args.Get(1).(int64), args.Error(2)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *model.ReviewComment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ReviewComment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReviewComment), args.Error(1)
}

func (m *MockCommentRepository) ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewComment, error) {
	args := m.Called(ctx, kind, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReviewComment), args.Error(1)
}

func (m *MockCommentRepository) MarkResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	return m.Called(ctx, id, resolved).Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockPermissionRepository struct {
	mock.Mock
}

func (m *MockPermissionRepository) ListByRole(ctx context.Context, role string) ([]model.RolePermissionOverride, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RolePermissionOverride), args.Error(1)
}

func (m *MockPermissionRepository) ListAll(ctx context.Context) ([]model.RolePermissionOverride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RolePermissionOverride), args.Error(1)
}

func (m *MockPermissionRepository) Set(ctx context.Context, role, feature string, enabled bool) error {
	return m.Called(ctx, role, feature, enabled).Error(0)
}

func (m *MockPermissionRepository) DeleteByRole(ctx context.Context, role string) error {
	return m.Called(ctx, role).Error(0)
}

// --- service mocks ---

type MockPermissionService struct {
	mock.Mock
}

func (m *MockPermissionService) Resolve(ctx context.Context, principalID string) (*PermissionSet, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PermissionSet), args.Error(1)
}

func (m *MockPermissionService) ListOverrides(ctx context.Context) ([]model.RolePermissionOverride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RolePermissionOverride), args.Error(1)
}

func (m *MockPermissionService) SetOverride(ctx context.Context, role, feature string, enabled bool) error {
	return m.Called(ctx, role, feature, enabled).Error(0)
}

func (m *MockPermissionService) ResetOverrides(ctx context.Context, role string) error {
	return m.Called(ctx, role).Error(0)
}

func (m *MockPermissionService) Invalidate(principalID string) {
	m.Called(principalID)
}

func (m *MockPermissionService) InvalidateAll() {
	m.Called()
}

// --- fakes ---

// fakeTxManager runs the function directly, no transaction.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeNotifier struct {
	events []QueueEvent
}

func (f *fakeNotifier) NotifyQueueEvent(event QueueEvent) {
	f.events = append(f.events, event)
}

type fakeInvalidator struct {
	kinds []model.RecordKind
}

func (f *fakeInvalidator) InvalidateKind(kind model.RecordKind) {
	f.kinds = append(f.kinds, kind)
}
