package repository

import (
	"context"

	"rptas/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository appends and reads the review audit trail. Rows are
// append-only; there is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.ReviewHistory) error
	ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewHistory, error)
	List(ctx context.Context, page, limit int) ([]model.ReviewHistory, int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.ReviewHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historyRepository) ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewHistory, error) {
	var entries []model.ReviewHistory
	err := GetDB(ctx, r.db).
		Preload("Actor").
		Where("record_kind = ? AND record_id = ?", string(kind), recordID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) List(ctx context.Context, page, limit int) ([]model.ReviewHistory, int64, error) {
	var entries []model.ReviewHistory
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ReviewHistory{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Actor").Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
