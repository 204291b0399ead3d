package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit notes stamped per transition.
const (
	NoteInitialSubmission = "initial submission"
	NoteResubmitted       = "re-submitted"
)

// ReviewHistory is one append-only row describing a status transition.
// Rows are never updated or deleted; a failed insert is logged by the caller
// and does not fail the transition that produced it.
type ReviewHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordKind string     `gorm:"type:varchar(20);not null;index:idx_history_record" json:"record_kind"`
	RecordID   uint       `gorm:"not null;index:idx_history_record" json:"record_id"`
	FromStatus string     `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string     `gorm:"type:varchar(20);not null" json:"to_status"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"`
	Actor      *User      `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	ActorRole  string     `gorm:"type:varchar(30);not null" json:"actor_role"`
	Note       string     `gorm:"type:text" json:"note"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (ReviewHistory) TableName() string {
	return "review_history"
}
