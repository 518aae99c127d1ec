package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookingStatus booking lifecycle status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// IsTerminal reports whether the status admits no further transitions
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

// BookingPaymentStatus settlement state tracked separately from the
// booking status; payment success never auto-confirms a booking.
type BookingPaymentStatus string

const (
	BookingPaymentPending   BookingPaymentStatus = "PENDING"
	BookingPaymentCompleted BookingPaymentStatus = "COMPLETED"
	BookingPaymentFailed    BookingPaymentStatus = "FAILED"
	BookingPaymentRefunded  BookingPaymentStatus = "REFUNDED"
)

// Booking a tourist's reservation against a tour
type Booking struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	TourID    string `gorm:"column:tour_id;size:36;index;not null" json:"tour_id"`
	UserID    string `gorm:"column:user_id;size:36;index;not null" json:"user_id"`
	TouristID string `gorm:"column:tourist_id;size:36;index;not null" json:"tourist_id"`

	NumberOfPeople  int     `gorm:"column:number_of_people;not null" json:"number_of_people"`
	TotalAmount     float64 `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	SpecialRequests string  `gorm:"column:special_requests;size:1000" json:"special_requests,omitempty"`

	Status        BookingStatus        `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	PaymentStatus BookingPaymentStatus `gorm:"column:payment_status;size:20;not null;default:'PENDING'" json:"payment_status"`

	BookingDate time.Time `gorm:"column:booking_date;not null" json:"booking_date"`
	IsReviewed  bool      `gorm:"column:is_reviewed;not null;default:false" json:"is_reviewed"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Tour    *Tour    `gorm:"foreignKey:TourID" json:"tour,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Tourist *Tourist `gorm:"foreignKey:TouristID" json:"tourist,omitempty"`
}

// TableName GORM table name
func (Booking) TableName() string {
	return "bookings"
}

// BeforeCreate assigns a UUID primary key
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// CreateBookingRequest booking creation payload
type CreateBookingRequest struct {
	TourID          string  `json:"tour_id" binding:"required"`
	NumberOfPeople  int     `json:"number_of_people" binding:"required,gt=0"`
	TotalAmount     float64 `json:"total_amount" binding:"required,gte=0"`
	SpecialRequests string  `json:"special_requests"`
	Status          string  `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED"`
}

// UpdateBookingRequest booking update payload
type UpdateBookingRequest struct {
	NumberOfPeople  *int    `json:"number_of_people" binding:"omitempty,gt=0"`
	SpecialRequests *string `json:"special_requests"`
}

// UpdateBookingStatusRequest host/admin status transition payload
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

// BookingListRequest booking list filters
type BookingListRequest struct {
	SearchTerm    string
	Status        string
	PaymentStatus string
	TourID        string
	MinPrice      *float64
	MaxPrice      *float64
	StartDate     *time.Time
	EndDate       *time.Time
}

// BookingStats aggregate booking figures for dashboards
type BookingStats struct {
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	PendingBookings   int64   `json:"pending_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	CompletedBookings int64   `json:"completed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	UpcomingBookings  int64   `json:"upcoming_bookings"`

	BookingsByMonth []MonthlyBookingStat `json:"bookings_by_month,omitempty"`
	RecentBookings  []*Booking           `json:"recent_bookings,omitempty"`
}

// MonthlyBookingStat bookings grouped by calendar month
type MonthlyBookingStat struct {
	Month   string  `json:"month"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// TouristBookingStats trip figures shown on the tourist dashboard
type TouristBookingStats struct {
	TotalBookings  int64   `json:"total_bookings"`
	UpcomingTrips  int64   `json:"upcoming_trips"`
	CompletedTrips int64   `json:"completed_trips"`
	TotalSpent     float64 `json:"total_spent"`
}
