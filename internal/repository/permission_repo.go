package repository

import (
	"context"

	"rptas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PermissionRepository is the override store: persisted per-role per-feature
// flags layered on top of the hardcoded defaults.
type PermissionRepository interface {
	ListByRole(ctx context.Context, role string) ([]model.RolePermissionOverride, error)
	ListAll(ctx context.Context) ([]model.RolePermissionOverride, error)
	Set(ctx context.Context, role, feature string, enabled bool) error
	DeleteByRole(ctx context.Context, role string) error
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) ListByRole(ctx context.Context, role string) ([]model.RolePermissionOverride, error) {
	var overrides []model.RolePermissionOverride
	if err := GetDB(ctx, r.db).Where("role = ?", role).Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *permissionRepository) ListAll(ctx context.Context) ([]model.RolePermissionOverride, error) {
	var overrides []model.RolePermissionOverride
	if err := GetDB(ctx, r.db).Order("role ASC, feature ASC").Find(&overrides).Error; err != nil {
		return nil, err
	}
	return overrides, nil
}

func (r *permissionRepository) Set(ctx context.Context, role, feature string, enabled bool) error {
	override := model.RolePermissionOverride{Role: role, Feature: feature, Enabled: enabled}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role"}, {Name: "feature"}},
		DoUpdates: clause.AssignmentColumns([]string{"enabled"}),
	}).Create(&override).Error
}

func (r *permissionRepository) DeleteByRole(ctx context.Context, role string) error {
	return GetDB(ctx, r.db).Where("role = ?", role).Delete(&model.RolePermissionOverride{}).Error
}
