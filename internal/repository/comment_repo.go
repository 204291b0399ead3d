package repository

import (
	"context"

	"rptas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentRepository stores field-level review comments. ParentID is stored
// as given; the repository does not validate it against an existing comment.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.ReviewComment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ReviewComment, error)
	ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewComment, error)
	MarkResolved(ctx context.Context, id uuid.UUID, resolved bool) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.ReviewComment) error {
	return GetDB(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ReviewComment, error) {
	var comment model.ReviewComment
	if err := GetDB(ctx, r.db).Preload("Author").First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByRecord(ctx context.Context, kind model.RecordKind, recordID uint) ([]model.ReviewComment, error) {
	var comments []model.ReviewComment
	err := GetDB(ctx, r.db).
		Preload("Author").
		Where("record_kind = ? AND record_id = ?", string(kind), recordID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) MarkResolved(ctx context.Context, id uuid.UUID, resolved bool) error {
	return GetDB(ctx, r.db).Model(&model.ReviewComment{}).
		Where("id = ?", id).
		Update("resolved", resolved).Error
}
