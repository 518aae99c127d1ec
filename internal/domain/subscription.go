package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionStatus subscription lifecycle status mirrored from the
// payment gateway and reconciled by webhooks.
type SubscriptionStatus string

const (
	// PENDING rows are created when checkout opens and flipped ACTIVE
	// by the webhook or the post-redirect verification.
	SubscriptionStatusPending   SubscriptionStatus = "PENDING"
	SubscriptionStatusActive    SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired   SubscriptionStatus = "EXPIRED"
	SubscriptionStatusPastDue   SubscriptionStatus = "PAST_DUE"
)

// BlogLimitUnlimited sentinel for plans without a blog cap
const BlogLimitUnlimited = -1

// SubscriptionPlan a purchasable tier controlling host entitlements
type SubscriptionPlan struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	Name        string  `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string  `gorm:"size:500" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Currency    string  `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Interval    string  `gorm:"size:10;not null;default:'month'" json:"interval"`

	TourLimit int `gorm:"column:tour_limit;not null" json:"tour_limit"`
	// BlogLimit is BlogLimitUnlimited (-1) when the plan has no cap.
	BlogLimit int `gorm:"column:blog_limit;not null" json:"blog_limit"`

	Features  string `gorm:"size:2000" json:"features,omitempty"`
	IsActive  bool   `gorm:"column:is_active;not null;default:true" json:"is_active"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0" json:"sort_order"`

	GatewayPriceID string `gorm:"column:gateway_price_id;size:100" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM table name
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// BeforeCreate assigns a UUID primary key
func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Subscription a host's paid subscription to a plan
type Subscription struct {
	ID     string `gorm:"primaryKey;size:36" json:"id"`
	HostID string `gorm:"column:host_id;size:36;index;not null" json:"host_id"`
	PlanID string `gorm:"column:plan_id;size:36;index;not null" json:"plan_id"`

	Status SubscriptionStatus `gorm:"size:20;not null;default:'ACTIVE'" json:"status"`

	GatewaySubscriptionID string `gorm:"column:gateway_subscription_id;size:100;index" json:"-"`
	GatewayCustomerID     string `gorm:"column:gateway_customer_id;size:100" json:"-"`

	StartDate          time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate            time.Time  `gorm:"column:end_date;not null" json:"end_date"`
	CancelAtPeriodEnd  bool       `gorm:"column:cancel_at_period_end;not null;default:false" json:"cancel_at_period_end"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	LastPaymentDate    *time.Time `gorm:"column:last_payment_date" json:"last_payment_date,omitempty"`
	LastPaymentFailure *time.Time `gorm:"column:last_payment_failure" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Host *Host             `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName GORM table name
func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate assigns a UUID primary key
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// IsCurrent reports whether the subscription grants entitlements now
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && now.Before(s.EndDate)
}

// CreatePlanRequest admin plan creation payload
type CreatePlanRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Currency    string  `json:"currency"`
	Interval    string  `json:"interval" binding:"omitempty,oneof=month year"`
	TourLimit   int     `json:"tour_limit" binding:"required,gt=0"`
	BlogLimit   int     `json:"blog_limit" binding:"gte=-1"`
	Features    string  `json:"features"`
	SortOrder   int     `json:"sort_order"`
}

// UpdatePlanRequest admin plan update payload
type UpdatePlanRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	TourLimit   *int     `json:"tour_limit" binding:"omitempty,gt=0"`
	BlogLimit   *int     `json:"blog_limit" binding:"omitempty,gte=-1"`
	Features    *string  `json:"features"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   *int     `json:"sort_order"`
}

// SubscribeRequest checkout session creation payload
type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// SubscribeResponse checkout session handoff returned to the client
type SubscribeResponse struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// VerifySessionRequest post-checkout verification payload
type VerifySessionRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SubscriptionAnalytics aggregate subscription figures for the admin dashboard
type SubscriptionAnalytics struct {
	TotalSubscriptions      int64                 `json:"total_subscriptions"`
	ActiveSubscriptions     int64                 `json:"active_subscriptions"`
	CancelledSubscriptions  int64                 `json:"cancelled_subscriptions"`
	ExpiredSubscriptions    int64                 `json:"expired_subscriptions"`
	PastDueSubscriptions    int64                 `json:"past_due_subscriptions"`
	MonthlyRecurringRevenue float64               `json:"monthly_recurring_revenue"`
	SubscriptionsByPlan     []PlanSubscriberCount `json:"subscriptions_by_plan"`
}

// PlanSubscriberCount active subscriber count per plan
type PlanSubscriberCount struct {
	PlanID   string `json:"plan_id"`
	PlanName string `json:"plan_name"`
	Count    int64  `json:"count"`
}

// DefaultPlans seed data for a fresh installation
func DefaultPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{
			Name:        "Basic",
			Description: "Get started with up to 4 tours",
			Price:       0,
			Currency:    "USD",
			Interval:    "month",
			TourLimit:   4,
			BlogLimit:   0,
			IsActive:    true,
			SortOrder:   1,
		},
		{
			Name:        "Standard",
			Description: "Grow your business with more tours and blog posts",
			Price:       9.99,
			Currency:    "USD",
			Interval:    "month",
			TourLimit:   8,
			BlogLimit:   10,
			IsActive:    true,
			SortOrder:   2,
		},
		{
			Name:        "Premium",
			Description: "Everything you need to scale, with unlimited blog posts",
			Price:       19.99,
			Currency:    "USD",
			Interval:    "month",
			TourLimit:   12,
			BlogLimit:   BlogLimitUnlimited,
			IsActive:    true,
			SortOrder:   3,
		},
	}
}
