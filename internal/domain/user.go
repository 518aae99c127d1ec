package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRole user role
type UserRole string

const (
	UserRoleTourist UserRole = "TOURIST"
	UserRoleHost    UserRole = "HOST"
	UserRoleAdmin   UserRole = "ADMIN"
)

// UserStatus account status
type UserStatus string

const (
	UserStatusActive  UserStatus = "ACTIVE"
	UserStatusBlocked UserStatus = "BLOCKED"
)

// User account entity
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:'TOURIST'" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Tourist *Tourist `gorm:"foreignKey:UserID" json:"tourist,omitempty"`
	Host    *Host    `gorm:"foreignKey:UserID" json:"host,omitempty"`
}

// TableName GORM table name
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// Tourist profile for users who book tours
type Tourist struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	UserID   string `gorm:"column:user_id;size:36;uniqueIndex;not null" json:"user_id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Phone    string `gorm:"size:20" json:"phone,omitempty"`
	Location string `gorm:"size:255" json:"location,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM table name
func (Tourist) TableName() string {
	return "tourists"
}

// BeforeCreate assigns a UUID primary key
func (t *Tourist) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// Default quota applied to hosts without an active subscription
const BasicTourLimit = 4

// Host profile for users who list tours, subject to subscription quotas
type Host struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"column:user_id;size:36;uniqueIndex;not null" json:"user_id"`
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone string `gorm:"size:20" json:"phone,omitempty"`
	Bio   string `gorm:"type:text" json:"bio,omitempty"`

	// Quota state maintained by the subscription reconciler
	TourLimit        int     `gorm:"column:tour_limit;not null;default:4" json:"tour_limit"`
	CurrentTourCount int     `gorm:"column:current_tour_count;not null;default:0" json:"current_tour_count"`
	SubscriptionID   *string `gorm:"column:subscription_id;size:36" json:"subscription_id,omitempty"`
	StripeCustomerID string  `gorm:"column:stripe_customer_id;size:64;index" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM table name
func (Host) TableName() string {
	return "hosts"
}

// BeforeCreate assigns a UUID primary key
func (h *Host) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// RegisterRequest signup payload
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=TOURIST HOST"`
}

// LoginRequest login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse token pair returned on login
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}
