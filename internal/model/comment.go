package model

import (
	"time"

	"github.com/google/uuid"
)

// ReviewComment is a field-level annotation attached to one record. Reviewers
// use comments to flag issues, submitters reply; a comment is never mutated
// after creation except to mark it resolved. Replies are one level deep at
// most; ParentID pointing at another reply is caller discipline, the store
// does not enforce it.
type ReviewComment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordKind string    `gorm:"type:varchar(20);not null;index:idx_comment_record" json:"record_kind"`
	RecordID   uint      `gorm:"not null;index:idx_comment_record" json:"record_id"`

	AuthorID uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	// AuthorRole is snapshotted at creation so historical comments show the
	// role the author held when written.
	AuthorRole string `gorm:"type:varchar(30);not null" json:"author_role"`

	Body           string     `gorm:"type:text;not null" json:"body"`
	FieldRefs      string     `gorm:"type:varchar(500)" json:"field_refs"` // comma-separated field identifiers
	SuggestedValue string     `gorm:"type:text" json:"suggested_value"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Resolved       bool       `gorm:"not null;default:false" json:"resolved"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ReviewComment) TableName() string {
	return "review_comments"
}
