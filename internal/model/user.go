package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an authenticated assessor-office principal.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Username string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	FullName string    `gorm:"type:varchar(255)" json:"full_name"`
	Email    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	Role     string    `gorm:"type:varchar(30);not null;default:'user'" json:"role"`

	// Municipality restricts which records a scoped reviewer may act on.
	// Empty means unscoped (provincial and administrative tiers).
	Municipality string `gorm:"type:varchar(100)" json:"municipality"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
