package repository

import (
	"context"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// SubscriptionRepository subscription and plan data access interface
type SubscriptionRepository interface {
	// Plans
	FindPlans(ctx context.Context, activeOnly bool) ([]*domain.SubscriptionPlan, error)
	FindPlanByID(ctx context.Context, id string) (*domain.SubscriptionPlan, error)
	FindPlanByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error

	// Subscriptions
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	FindAll(ctx context.Context, p *common.Pagination) ([]*domain.Subscription, int64, error)
	FindActiveByHostID(ctx context.Context, hostID string) (*domain.Subscription, error)
	FindPendingByHostID(ctx context.Context, hostID string) (*domain.Subscription, error)
	FindByGatewayID(ctx context.Context, gatewaySubID string) (*domain.Subscription, error)
	Create(ctx context.Context, sub *domain.Subscription) error
	Update(ctx context.Context, sub *domain.Subscription) error

	// ActivateForHost persists the subscription and points the host's
	// quota state at its plan, in one transaction.
	ActivateForHost(ctx context.Context, sub *domain.Subscription, tourLimit int) error
	// DowngradeHost resets the host to the free-tier quota.
	DowngradeHost(ctx context.Context, sub *domain.Subscription, basicLimit int) error

	// ExpireLapsed marks ACTIVE subscriptions past their end date as
	// EXPIRED and returns them for quota downgrades.
	ExpireLapsed(ctx context.Context, now time.Time) ([]*domain.Subscription, error)

	Analytics(ctx context.Context) (*domain.SubscriptionAnalytics, error)

	// Unreconciled events
	CreateUnreconciledEvent(ctx context.Context, ev *domain.UnreconciledEvent) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// FindPlans lists plans ordered for display
func (r *subscriptionRepository) FindPlans(ctx context.Context, activeOnly bool) ([]*domain.SubscriptionPlan, error) {
	var plans []*domain.SubscriptionPlan
	query := r.db.WithContext(ctx).Model(&domain.SubscriptionPlan{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, price ASC").Find(&plans).Error
	return plans, err
}

// FindPlanByID finds a plan by ID
func (r *subscriptionRepository) FindPlanByID(ctx context.Context, id string) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindPlanByName finds a plan by its unique name
func (r *subscriptionRepository) FindPlanByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error) {
	var plan domain.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// CreatePlan creates a plan
func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// UpdatePlan updates a plan
func (r *subscriptionRepository) UpdatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// FindByID finds a subscription with its plan preloaded
func (r *subscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindAll lists subscriptions for the admin dashboard
func (r *subscriptionRepository) FindAll(ctx context.Context, p *common.Pagination) ([]*domain.Subscription, int64, error) {
	var subs []*domain.Subscription
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Subscription{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Plan").Preload("Host").
		Order(p.OrderClause()).
		Offset(p.Offset()).
		Limit(p.Limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// FindActiveByHostID finds the host's current ACTIVE subscription
func (r *subscriptionRepository) FindActiveByHostID(ctx context.Context, hostID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("host_id = ? AND status = ?", hostID, domain.SubscriptionStatusActive).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindPendingByHostID finds the host's PENDING subscription awaiting
// checkout completion
func (r *subscriptionRepository) FindPendingByHostID(ctx context.Context, hostID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("host_id = ? AND status = ?", hostID, domain.SubscriptionStatusPending).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByGatewayID finds a subscription by the gateway's subscription ID
func (r *subscriptionRepository) FindByGatewayID(ctx context.Context, gatewaySubID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("gateway_subscription_id = ?", gatewaySubID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create creates a subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Update updates a subscription
func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ActivateForHost saves the subscription and raises the host's quota
// to the plan's tour limit in one transaction
func (r *subscriptionRepository) ActivateForHost(ctx context.Context, sub *domain.Subscription, tourLimit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Host{}).
			Where("id = ?", sub.HostID).
			Updates(map[string]interface{}{
				"tour_limit":      tourLimit,
				"subscription_id": sub.ID,
			}).Error
	})
}

// DowngradeHost saves the subscription and resets the host to the
// free-tier quota in one transaction
func (r *subscriptionRepository) DowngradeHost(ctx context.Context, sub *domain.Subscription, basicLimit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(sub).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Host{}).
			Where("id = ?", sub.HostID).
			Updates(map[string]interface{}{
				"tour_limit":      basicLimit,
				"subscription_id": nil,
			}).Error
	})
}

// ExpireLapsed flips lapsed ACTIVE subscriptions to EXPIRED and
// returns the affected rows
func (r *subscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) ([]*domain.Subscription, error) {
	var lapsed []*domain.Subscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("status = ? AND end_date < ?", domain.SubscriptionStatusActive, now).
			Find(&lapsed).Error; err != nil {
			return err
		}
		if len(lapsed) == 0 {
			return nil
		}
		ids := make([]string, 0, len(lapsed))
		for _, s := range lapsed {
			ids = append(ids, s.ID)
			s.Status = domain.SubscriptionStatusExpired
		}
		return tx.Model(&domain.Subscription{}).
			Where("id IN ?", ids).
			Update("status", domain.SubscriptionStatusExpired).Error
	})
	return lapsed, err
}

// Analytics aggregates subscription figures
func (r *subscriptionRepository) Analytics(ctx context.Context) (*domain.SubscriptionAnalytics, error) {
	analytics := &domain.SubscriptionAnalytics{}

	model := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Subscription{})
	}

	if err := model().Count(&analytics.TotalSubscriptions).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status domain.SubscriptionStatus
		dest   *int64
	}{
		{domain.SubscriptionStatusActive, &analytics.ActiveSubscriptions},
		{domain.SubscriptionStatusCancelled, &analytics.CancelledSubscriptions},
		{domain.SubscriptionStatusExpired, &analytics.ExpiredSubscriptions},
		{domain.SubscriptionStatusPastDue, &analytics.PastDueSubscriptions},
	}
	for _, c := range counts {
		if err := model().Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := model().
		Joins("JOIN subscription_plans ON subscription_plans.id = subscriptions.plan_id").
		Where("subscriptions.status = ?", domain.SubscriptionStatusActive).
		Select("COALESCE(SUM(subscription_plans.price), 0)").
		Scan(&analytics.MonthlyRecurringRevenue).Error; err != nil {
		return nil, err
	}

	if err := model().
		Joins("JOIN subscription_plans ON subscription_plans.id = subscriptions.plan_id").
		Where("subscriptions.status = ?", domain.SubscriptionStatusActive).
		Select("subscriptions.plan_id AS plan_id, subscription_plans.name AS plan_name, COUNT(*) AS count").
		Group("subscriptions.plan_id, subscription_plans.name").
		Scan(&analytics.SubscriptionsByPlan).Error; err != nil {
		return nil, err
	}

	return analytics, nil
}

// CreateUnreconciledEvent records a webhook event that could not be
// tied back to a local record
func (r *subscriptionRepository) CreateUnreconciledEvent(ctx context.Context, ev *domain.UnreconciledEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}
