package service

import (
	"context"
	"fmt"

	"rptas/internal/model"
	"rptas/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type BuildingRecordRequest struct {
	OwnerName    string `json:"owner_name" binding:"required"`
	OwnerAddress string `json:"owner_address"`
	Municipality string `json:"municipality" binding:"required"`
	Barangay     string `json:"barangay" binding:"required"`
	Street       string `json:"street"`

	BuildingType    string          `json:"building_type"`
	StructuralType  string          `json:"structural_type"`
	NumberOfStoreys int             `json:"number_of_storeys"`
	YearBuilt       int             `json:"year_built"`
	FloorArea       decimal.Decimal `json:"floor_area"`
	MarketValue     decimal.Decimal `json:"market_value"`
	AssessmentLevel decimal.Decimal `json:"assessment_level"`
}

type LandRecordRequest struct {
	OwnerName    string `json:"owner_name" binding:"required"`
	OwnerAddress string `json:"owner_address"`
	Municipality string `json:"municipality" binding:"required"`
	Barangay     string `json:"barangay" binding:"required"`
	Street       string `json:"street"`

	Classification  string          `json:"classification"`
	SubClass        string          `json:"sub_class"`
	SurveyNumber    string          `json:"survey_number"`
	Area            decimal.Decimal `json:"area"`
	UnitValue       decimal.Decimal `json:"unit_value"`
	AssessmentLevel decimal.Decimal `json:"assessment_level"`
}

type ListRecordsFilter struct {
	Municipality string
	Status       string
	Mine         bool
	Page         int
	Limit        int
}

// RecordService is the CRUD surface for draft editing. Status is never
// touched here; all lifecycle moves go through the review service.
type RecordService interface {
	CreateBuilding(ctx context.Context, actorID string, req BuildingRecordRequest) (*model.BuildingRecord, error)
	GetBuilding(ctx context.Context, actorID string, id uint) (*model.BuildingRecord, error)
	UpdateBuilding(ctx context.Context, actorID string, id uint, req BuildingRecordRequest) (*model.BuildingRecord, error)
	ListBuildings(ctx context.Context, actorID string, filter ListRecordsFilter) ([]model.BuildingRecord, int64, error)

	CreateLand(ctx context.Context, actorID string, req LandRecordRequest) (*model.LandRecord, error)
	GetLand(ctx context.Context, actorID string, id uint) (*model.LandRecord, error)
	UpdateLand(ctx context.Context, actorID string, id uint, req LandRecordRequest) (*model.LandRecord, error)
	ListLands(ctx context.Context, actorID string, filter ListRecordsFilter) ([]model.LandRecord, int64, error)

	Delete(ctx context.Context, actorID string, kind model.RecordKind, id uint) error
}

type recordService struct {
	records  repository.RecordRepository
	resolver PermissionService
}

func NewRecordService(records repository.RecordRepository, resolver PermissionService) RecordService {
	return &recordService{records: records, resolver: resolver}
}

var hundred = decimal.NewFromInt(100)

// editableStatuses are the lifecycle positions in which field edits are legal.
var editableStatuses = map[model.RecordStatus]bool{
	model.StatusDraft:    true,
	model.StatusReturned: true,
}

func (s *recordService) requireFeature(ctx context.Context, actorID, feature string) (*PermissionSet, error) {
	actor, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !actor.Known {
		return nil, fmt.Errorf("%w: actor could not be identified", ErrUnauthorized)
	}
	if !actor.Permissions[feature] {
		return nil, fmt.Errorf("%w: role '%s' lacks '%s'", ErrForbidden, actor.Role, feature)
	}
	return actor, nil
}

func (s *recordService) checkScope(actor *PermissionSet, municipality string) error {
	if actor.Municipality != "" && municipality != actor.Municipality {
		return fmt.Errorf("%w: record is outside municipality '%s'", ErrForbidden, actor.Municipality)
	}
	return nil
}

func (s *recordService) CreateBuilding(ctx context.Context, actorID string, req BuildingRecordRequest) (*model.BuildingRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsCreate)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(actor, req.Municipality); err != nil {
		return nil, err
	}

	rec := &model.BuildingRecord{}
	applyBuildingRequest(rec, req)
	rec.Status = string(model.StatusDraft)
	actorUUID := actor.UserID
	rec.CreatedBy = &actorUUID

	if err := s.records.CreateBuilding(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create building record: %w", err)
	}
	return rec, nil
}

func (s *recordService) GetBuilding(ctx context.Context, actorID string, id uint) (*model.BuildingRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsView)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetBuilding(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("building record %d", id))
	}
	if err := s.checkScope(actor, rec.Municipality); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) UpdateBuilding(ctx context.Context, actorID string, id uint, req BuildingRecordRequest) (*model.BuildingRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsEdit)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetBuilding(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("building record %d", id))
	}
	if err := s.checkScope(actor, rec.Municipality); err != nil {
		return nil, err
	}
	if !editableStatuses[model.RecordStatus(rec.Status)] {
		return nil, fmt.Errorf("%w: cannot edit a record in status '%s'", ErrConflict, rec.Status)
	}

	applyBuildingRequest(rec, req)
	if err := s.records.UpdateBuilding(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update building record: %w", err)
	}
	return rec, nil
}

func (s *recordService) ListBuildings(ctx context.Context, actorID string, filter ListRecordsFilter) ([]model.BuildingRecord, int64, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsView)
	if err != nil {
		return nil, 0, err
	}
	repoFilter, page, limit := s.buildFilter(actor, filter)
	return s.records.ListBuildings(ctx, repoFilter, page, limit)
}

func (s *recordService) CreateLand(ctx context.Context, actorID string, req LandRecordRequest) (*model.LandRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsCreate)
	if err != nil {
		return nil, err
	}
	if err := s.checkScope(actor, req.Municipality); err != nil {
		return nil, err
	}

	rec := &model.LandRecord{}
	applyLandRequest(rec, req)
	rec.Status = string(model.StatusDraft)
	actorUUID := actor.UserID
	rec.CreatedBy = &actorUUID

	if err := s.records.CreateLand(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create land record: %w", err)
	}
	return rec, nil
}

func (s *recordService) GetLand(ctx context.Context, actorID string, id uint) (*model.LandRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsView)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetLand(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("land record %d", id))
	}
	if err := s.checkScope(actor, rec.Municipality); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recordService) UpdateLand(ctx context.Context, actorID string, id uint, req LandRecordRequest) (*model.LandRecord, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsEdit)
	if err != nil {
		return nil, err
	}
	rec, err := s.records.GetLand(ctx, id)
	if err != nil {
		return nil, notFoundOrStore(err, fmt.Sprintf("land record %d", id))
	}
	if err := s.checkScope(actor, rec.Municipality); err != nil {
		return nil, err
	}
	if !editableStatuses[model.RecordStatus(rec.Status)] {
		return nil, fmt.Errorf("%w: cannot edit a record in status '%s'", ErrConflict, rec.Status)
	}

	applyLandRequest(rec, req)
	if err := s.records.UpdateLand(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to update land record: %w", err)
	}
	return rec, nil
}

func (s *recordService) ListLands(ctx context.Context, actorID string, filter ListRecordsFilter) ([]model.LandRecord, int64, error) {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsView)
	if err != nil {
		return nil, 0, err
	}
	repoFilter, page, limit := s.buildFilter(actor, filter)
	return s.records.ListLands(ctx, repoFilter, page, limit)
}

func (s *recordService) Delete(ctx context.Context, actorID string, kind model.RecordKind, id uint) error {
	actor, err := s.requireFeature(ctx, actorID, model.FeatureRecordsDelete)
	if err != nil {
		return err
	}
	summary, err := s.records.GetSummary(ctx, kind, id)
	if err != nil {
		return notFoundOrStore(err, fmt.Sprintf("%s record %d", kind, id))
	}
	if err := s.checkScope(actor, summary.Municipality); err != nil {
		return err
	}
	if summary.Status != model.StatusDraft {
		return fmt.Errorf("%w: only draft records can be deleted, record is '%s'", ErrConflict, summary.Status)
	}
	if err := s.records.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete %s record %d: %w", kind, id, err)
	}
	return nil
}

func (s *recordService) buildFilter(actor *PermissionSet, filter ListRecordsFilter) (repository.RecordFilter, int, int) {
	repoFilter := repository.RecordFilter{
		Municipality: filter.Municipality,
		Status:       filter.Status,
	}
	// Scoped roles only ever see their own municipality.
	if actor.Municipality != "" {
		repoFilter.Municipality = actor.Municipality
	}
	if filter.Mine {
		actorUUID := actor.UserID
		repoFilter.CreatedBy = &actorUUID
	}

	page := filter.Page
	limit := filter.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return repoFilter, page, limit
}

func applyBuildingRequest(rec *model.BuildingRecord, req BuildingRecordRequest) {
	rec.OwnerName = req.OwnerName
	rec.OwnerAddress = req.OwnerAddress
	rec.Municipality = req.Municipality
	rec.Barangay = req.Barangay
	rec.Street = req.Street
	rec.BuildingType = req.BuildingType
	rec.StructuralType = req.StructuralType
	rec.NumberOfStoreys = req.NumberOfStoreys
	rec.YearBuilt = req.YearBuilt
	rec.FloorArea = req.FloorArea
	rec.MarketValue = req.MarketValue
	rec.AssessmentLevel = req.AssessmentLevel
	rec.AssessedValue = assessedValue(req.MarketValue, req.AssessmentLevel)
}

func applyLandRequest(rec *model.LandRecord, req LandRecordRequest) {
	rec.OwnerName = req.OwnerName
	rec.OwnerAddress = req.OwnerAddress
	rec.Municipality = req.Municipality
	rec.Barangay = req.Barangay
	rec.Street = req.Street
	rec.Classification = req.Classification
	rec.SubClass = req.SubClass
	rec.SurveyNumber = req.SurveyNumber
	rec.Area = req.Area
	rec.UnitValue = req.UnitValue
	rec.MarketValue = req.Area.Mul(req.UnitValue)
	rec.AssessmentLevel = req.AssessmentLevel
	rec.AssessedValue = assessedValue(rec.MarketValue, req.AssessmentLevel)
}

// assessedValue applies the assessment level percentage to the market value,
// rounded to centavos.
func assessedValue(market, levelPercent decimal.Decimal) decimal.Decimal {
	return market.Mul(levelPercent).Div(hundred).Round(2)
}
