package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecordKind distinguishes the two assessment form types. They live in
// separate tables but share the same review lifecycle.
type RecordKind string

const (
	KindBuilding RecordKind = "building"
	KindLand     RecordKind = "land"
)

// ParseRecordKind validates a wire string against the closed kind set.
func ParseRecordKind(s string) (RecordKind, bool) {
	switch RecordKind(s) {
	case KindBuilding, KindLand:
		return RecordKind(s), true
	}
	return "", false
}

// ReviewState holds the shared review lifecycle columns embedded in both
// record kinds. Status is only ever written through the review service;
// direct field edits never touch it.
type ReviewState struct {
	Status      string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	SubmittedAt *time.Time `gorm:"index" json:"submitted_at"`
	ReviewerID  *uuid.UUID `gorm:"type:uuid" json:"reviewer_id"`
	ApprovedAt  *time.Time `json:"approved_at"`
}

// BuildingRecord is a building/structure assessment form (FAAS).
type BuildingRecord struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	OwnerName    string `gorm:"type:varchar(255);not null;index" json:"owner_name"`
	OwnerAddress string `gorm:"type:text" json:"owner_address"`
	Municipality string `gorm:"type:varchar(100);not null;index" json:"municipality"`
	Barangay     string `gorm:"type:varchar(100);not null" json:"barangay"`
	Street       string `gorm:"type:varchar(255)" json:"street"`

	BuildingType    string `gorm:"type:varchar(100)" json:"building_type"`    // residential, commercial, ...
	StructuralType  string `gorm:"type:varchar(100)" json:"structural_type"`  // concrete, wood, mixed
	NumberOfStoreys int    `gorm:"default:1" json:"number_of_storeys"`
	YearBuilt       int    `json:"year_built"`

	FloorArea       decimal.Decimal `gorm:"type:numeric(12,2)" json:"floor_area"`
	MarketValue     decimal.Decimal `gorm:"type:numeric(14,2)" json:"market_value"`
	AssessmentLevel decimal.Decimal `gorm:"type:numeric(5,2)" json:"assessment_level"` // percent
	AssessedValue   decimal.Decimal `gorm:"type:numeric(14,2)" json:"assessed_value"`

	ReviewState `gorm:"embedded"`

	CreatedBy *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BuildingRecord) TableName() string {
	return "building_records"
}

// LandRecord is a land/improvement assessment form (FAAS).
type LandRecord struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	OwnerName    string `gorm:"type:varchar(255);not null;index" json:"owner_name"`
	OwnerAddress string `gorm:"type:text" json:"owner_address"`
	Municipality string `gorm:"type:varchar(100);not null;index" json:"municipality"`
	Barangay     string `gorm:"type:varchar(100);not null" json:"barangay"`
	Street       string `gorm:"type:varchar(255)" json:"street"`

	Classification string `gorm:"type:varchar(100)" json:"classification"` // residential, agricultural, ...
	SubClass       string `gorm:"type:varchar(100)" json:"sub_class"`
	SurveyNumber   string `gorm:"type:varchar(100)" json:"survey_number"`

	Area            decimal.Decimal `gorm:"type:numeric(14,2)" json:"area"` // sqm
	UnitValue       decimal.Decimal `gorm:"type:numeric(14,2)" json:"unit_value"`
	MarketValue     decimal.Decimal `gorm:"type:numeric(14,2)" json:"market_value"`
	AssessmentLevel decimal.Decimal `gorm:"type:numeric(5,2)" json:"assessment_level"`
	AssessedValue   decimal.Decimal `gorm:"type:numeric(14,2)" json:"assessed_value"`

	ReviewState `gorm:"embedded"`

	CreatedBy *uuid.UUID     `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LandRecord) TableName() string {
	return "land_records"
}

// RecordSummary is the kind-neutral projection of one record's review-relevant
// fields, used by the review service and the queue.
type RecordSummary struct {
	Kind         RecordKind   `json:"kind"`
	ID           uint         `json:"id"`
	OwnerName    string       `json:"owner_name"`
	Municipality string       `json:"municipality"`
	Barangay     string       `json:"barangay"`
	Status       RecordStatus `json:"status"`
	SubmittedAt  *time.Time   `json:"submitted_at"`
	ReviewerID   *uuid.UUID   `json:"reviewer_id"`
	ApprovedAt   *time.Time   `json:"approved_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
