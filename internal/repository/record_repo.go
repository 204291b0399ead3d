package repository

import (
	"context"
	"fmt"

	"rptas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordFilter narrows CRUD listings.
type RecordFilter struct {
	Municipality string
	Status       string
	CreatedBy    *uuid.UUID
}

// RecordRepository is the data-access boundary for both record kinds.
// Kind-dispatched methods keep the review service ignorant of which table a
// record lives in.
type RecordRepository interface {
	CreateBuilding(ctx context.Context, rec *model.BuildingRecord) error
	GetBuilding(ctx context.Context, id uint) (*model.BuildingRecord, error)
	UpdateBuilding(ctx context.Context, rec *model.BuildingRecord) error
	ListBuildings(ctx context.Context, filter RecordFilter, page, limit int) ([]model.BuildingRecord, int64, error)

	CreateLand(ctx context.Context, rec *model.LandRecord) error
	GetLand(ctx context.Context, id uint) (*model.LandRecord, error)
	UpdateLand(ctx context.Context, rec *model.LandRecord) error
	ListLands(ctx context.Context, filter RecordFilter, page, limit int) ([]model.LandRecord, int64, error)

	Delete(ctx context.Context, kind model.RecordKind, id uint) error

	// GetSummary returns the kind-neutral review projection of one record.
	GetSummary(ctx context.Context, kind model.RecordKind, id uint) (*model.RecordSummary, error)

	// UpdateReviewState applies the given column updates only if the record is
	// still in the expected status. Returns false when another transition won
	// the race.
	UpdateReviewState(ctx context.Context, kind model.RecordKind, id uint, expected model.RecordStatus, updates map[string]interface{}) (bool, error)

	// ListSummaries returns review projections of one kind matching the given
	// statuses, optionally restricted to a municipality. Ordering is left to
	// the caller, which merges kinds.
	ListSummaries(ctx context.Context, kind model.RecordKind, statuses []model.RecordStatus, municipality string) ([]model.RecordSummary, error)
}

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) modelFor(kind model.RecordKind) (interface{}, error) {
	switch kind {
	case model.KindBuilding:
		return &model.BuildingRecord{}, nil
	case model.KindLand:
		return &model.LandRecord{}, nil
	default:
		return nil, fmt.Errorf("unknown record kind '%s'", kind)
	}
}

func (r *recordRepository) CreateBuilding(ctx context.Context, rec *model.BuildingRecord) error {
	return GetDB(ctx, r.db).Create(rec).Error
}

func (r *recordRepository) GetBuilding(ctx context.Context, id uint) (*model.BuildingRecord, error) {
	var rec model.BuildingRecord
	if err := GetDB(ctx, r.db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) UpdateBuilding(ctx context.Context, rec *model.BuildingRecord) error {
	return GetDB(ctx, r.db).Save(rec).Error
}

func (r *recordRepository) ListBuildings(ctx context.Context, filter RecordFilter, page, limit int) ([]model.BuildingRecord, int64, error) {
	var recs []model.BuildingRecord
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.BuildingRecord{})
	query = applyRecordFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := applyRecordFilter(db.Model(&model.BuildingRecord{}), filter)
	if err := fetch.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *recordRepository) CreateLand(ctx context.Context, rec *model.LandRecord) error {
	return GetDB(ctx, r.db).Create(rec).Error
}

func (r *recordRepository) GetLand(ctx context.Context, id uint) (*model.LandRecord, error) {
	var rec model.LandRecord
	if err := GetDB(ctx, r.db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recordRepository) UpdateLand(ctx context.Context, rec *model.LandRecord) error {
	return GetDB(ctx, r.db).Save(rec).Error
}

func (r *recordRepository) ListLands(ctx context.Context, filter RecordFilter, page, limit int) ([]model.LandRecord, int64, error) {
	var recs []model.LandRecord
	var total int64

	db := GetDB(ctx, r.db)
	query := applyRecordFilter(db.Model(&model.LandRecord{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetch := applyRecordFilter(db.Model(&model.LandRecord{}), filter)
	if err := fetch.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&recs).Error; err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *recordRepository) Delete(ctx context.Context, kind model.RecordKind, id uint) error {
	m, err := r.modelFor(kind)
	if err != nil {
		return err
	}
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(m).Error
}

func (r *recordRepository) GetSummary(ctx context.Context, kind model.RecordKind, id uint) (*model.RecordSummary, error) {
	switch kind {
	case model.KindBuilding:
		rec, err := r.GetBuilding(ctx, id)
		if err != nil {
			return nil, err
		}
		return buildingSummary(rec), nil
	case model.KindLand:
		rec, err := r.GetLand(ctx, id)
		if err != nil {
			return nil, err
		}
		return landSummary(rec), nil
	default:
		return nil, fmt.Errorf("unknown record kind '%s'", kind)
	}
}

func (r *recordRepository) UpdateReviewState(ctx context.Context, kind model.RecordKind, id uint, expected model.RecordStatus, updates map[string]interface{}) (bool, error) {
	m, err := r.modelFor(kind)
	if err != nil {
		return false, err
	}
	// Conditional on the status read during validation: a concurrent
	// transition makes this a no-op instead of a silent last-write-wins.
	tx := GetDB(ctx, r.db).Model(m).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *recordRepository) ListSummaries(ctx context.Context, kind model.RecordKind, statuses []model.RecordStatus, municipality string) ([]model.RecordSummary, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, string(s))
	}

	db := GetDB(ctx, r.db)
	out := []model.RecordSummary{}

	switch kind {
	case model.KindBuilding:
		var recs []model.BuildingRecord
		query := db.Where("status IN ?", statusStrings)
		if municipality != "" {
			query = query.Where("municipality = ?", municipality)
		}
		if err := query.Find(&recs).Error; err != nil {
			return nil, err
		}
		for i := range recs {
			out = append(out, *buildingSummary(&recs[i]))
		}
	case model.KindLand:
		var recs []model.LandRecord
		query := db.Where("status IN ?", statusStrings)
		if municipality != "" {
			query = query.Where("municipality = ?", municipality)
		}
		if err := query.Find(&recs).Error; err != nil {
			return nil, err
		}
		for i := range recs {
			out = append(out, *landSummary(&recs[i]))
		}
	default:
		return nil, fmt.Errorf("unknown record kind '%s'", kind)
	}

	return out, nil
}

func buildingSummary(rec *model.BuildingRecord) *model.RecordSummary {
	return &model.RecordSummary{
		Kind:         model.KindBuilding,
		ID:           rec.ID,
		OwnerName:    rec.OwnerName,
		Municipality: rec.Municipality,
		Barangay:     rec.Barangay,
		Status:       model.RecordStatus(rec.Status),
		SubmittedAt:  rec.SubmittedAt,
		ReviewerID:   rec.ReviewerID,
		ApprovedAt:   rec.ApprovedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func landSummary(rec *model.LandRecord) *model.RecordSummary {
	return &model.RecordSummary{
		Kind:         model.KindLand,
		ID:           rec.ID,
		OwnerName:    rec.OwnerName,
		Municipality: rec.Municipality,
		Barangay:     rec.Barangay,
		Status:       model.RecordStatus(rec.Status),
		SubmittedAt:  rec.SubmittedAt,
		ReviewerID:   rec.ReviewerID,
		ApprovedAt:   rec.ApprovedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func applyRecordFilter(query *gorm.DB, filter RecordFilter) *gorm.DB {
	if filter.Municipality != "" {
		query = query.Where("municipality = ?", filter.Municipality)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}
