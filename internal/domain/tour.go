package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TourStatus tour lifecycle status
type TourStatus string

const (
	TourStatusDraft     TourStatus = "DRAFT"
	TourStatusPublished TourStatus = "PUBLISHED"
	TourStatusArchived  TourStatus = "ARCHIVED"
)

// Tour a bookable trip offered by a host.
// CurrentGroupSize is a denormalized sum of numberOfPeople over CONFIRMED
// bookings; the booking repository is the only writer.
type Tour struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	HostID      string     `gorm:"column:host_id;size:36;index;not null" json:"host_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Destination string     `gorm:"size:255;not null" json:"destination"`
	City        string     `gorm:"size:100" json:"city,omitempty"`
	Price       float64    `gorm:"type:decimal(12,2);not null" json:"price"`
	Status      TourStatus `gorm:"size:20;not null;default:'PUBLISHED'" json:"status"`

	MaxGroupSize     int `gorm:"column:max_group_size;not null" json:"max_group_size"`
	CurrentGroupSize int `gorm:"column:current_group_size;not null;default:0" json:"current_group_size"`

	StartDate *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	// Relations
	Host *Host `gorm:"foreignKey:HostID" json:"host,omitempty"`
}

// TableName GORM table name
func (Tour) TableName() string {
	return "tours"
}

// BeforeCreate assigns a UUID primary key
func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// CreateTourRequest tour creation payload
type CreateTourRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Destination  string     `json:"destination" binding:"required"`
	City         string     `json:"city"`
	Price        float64    `json:"price" binding:"required,gt=0"`
	MaxGroupSize int        `json:"max_group_size" binding:"required,gt=0"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// UpdateTourRequest tour update payload; nil fields are left unchanged
type UpdateTourRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Destination  *string    `json:"destination"`
	City         *string    `json:"city"`
	Price        *float64   `json:"price" binding:"omitempty,gt=0"`
	MaxGroupSize *int       `json:"max_group_size" binding:"omitempty,gt=0"`
	Status       *string    `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// TourListRequest tour list filters
type TourListRequest struct {
	SearchTerm string
	HostID     string
	MinPrice   *float64
	MaxPrice   *float64
	Status     string
}
