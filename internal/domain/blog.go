package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogStatus blog post lifecycle status
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "DRAFT"
	BlogStatusPublished BlogStatus = "PUBLISHED"
)

// Blog a host-authored post, capped per plan by BlogLimit
type Blog struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	HostID string `gorm:"column:host_id;size:36;index;not null" json:"host_id"`

	Title   string     `gorm:"size:200;not null" json:"title"`
	Content string     `gorm:"type:text;not null" json:"content"`
	Summary string     `gorm:"size:500" json:"summary,omitempty"`
	Status  BlogStatus `gorm:"size:20;not null;default:'DRAFT'" json:"status"`

	ViewCount int `gorm:"column:view_count;not null;default:0" json:"view_count"`

	PublishedAt *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Host *Host `gorm:"foreignKey:HostID" json:"host,omitempty"`
}

// TableName GORM table name
func (Blog) TableName() string {
	return "blogs"
}

// BeforeCreate assigns a UUID primary key
func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// CreateBlogRequest blog creation payload
type CreateBlogRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
	Summary string `json:"summary" binding:"max=500"`
	Status  string `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdateBlogRequest blog update payload
type UpdateBlogRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Content *string `json:"content"`
	Summary *string `json:"summary" binding:"omitempty,max=500"`
	Status  *string `json:"status" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}
