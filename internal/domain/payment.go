package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentStatus settlement status of a gateway charge
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusCompleted         PaymentStatus = "COMPLETED"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// PaymentType what the charge paid for
type PaymentType string

const (
	PaymentTypeSubscription PaymentType = "SUBSCRIPTION"
	PaymentTypeBooking      PaymentType = "BOOKING"
)

// Payment a charge record reconciled against gateway webhooks.
// TransactionID is the gateway identifier (payment intent or invoice);
// the unique index makes webhook replays upsert instead of duplicate.
type Payment struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	UserID string `gorm:"column:user_id;size:36;index;not null" json:"user_id"`

	SubscriptionID *string `gorm:"column:subscription_id;size:36;index" json:"subscription_id,omitempty"`
	BookingID      *string `gorm:"column:booking_id;size:36;index" json:"booking_id,omitempty"`

	Type     PaymentType   `gorm:"size:20;not null" json:"type"`
	Status   PaymentStatus `gorm:"size:25;not null;default:'PENDING'" json:"status"`
	Amount   float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency string        `gorm:"size:3;not null;default:'USD'" json:"currency"`

	TransactionID string `gorm:"column:transaction_id;size:100;uniqueIndex;not null" json:"transaction_id"`
	Method        string `gorm:"size:30" json:"method,omitempty"`
	FailureReason string `gorm:"column:failure_reason;size:500" json:"failure_reason,omitempty"`

	// GatewayResponse stores the raw gateway object snapshot for audits.
	GatewayResponse string `gorm:"column:gateway_response;type:text" json:"-"`

	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	RefundedAt *time.Time `gorm:"column:refunded_at" json:"refunded_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subscription *Subscription `gorm:"foreignKey:SubscriptionID" json:"subscription,omitempty"`
	Booking      *Booking      `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// TableName GORM table name
func (Payment) TableName() string {
	return "payments"
}

// BeforeCreate assigns a UUID primary key
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// UnreconciledEvent a webhook event whose metadata could not be tied
// back to a local record. Stored for operator follow-up instead of
// being silently dropped.
type UnreconciledEvent struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	EventID   string    `gorm:"column:event_id;size:100;uniqueIndex;not null" json:"event_id"`
	EventType string    `gorm:"column:event_type;size:60;not null" json:"event_type"`
	Reason    string    `gorm:"size:500;not null" json:"reason"`
	Payload   string    `gorm:"type:text" json:"-"`
	Resolved  bool      `gorm:"not null;default:false" json:"resolved"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM table name
func (UnreconciledEvent) TableName() string {
	return "unreconciled_events"
}

// BeforeCreate assigns a UUID primary key
func (e *UnreconciledEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// CreatePaymentIntentRequest one-off booking payment intent payload
type CreatePaymentIntentRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

// CreatePaymentIntentResponse client secret handoff for the frontend
type CreatePaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

// PaymentListRequest payment list filters
type PaymentListRequest struct {
	Status string
	Type   string
	UserID string
}
