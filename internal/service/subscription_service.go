package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/gateway"
	"github.com/roamly/roamly-backend/internal/repository"
	"github.com/roamly/roamly-backend/pkg/cache"
	"github.com/roamly/roamly-backend/pkg/logger"
	"gorm.io/gorm"
)

// SubscriptionService defines the business logic for plans,
// subscriptions and webhook reconciliation
type SubscriptionService interface {
	GetPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error)
	GetPlan(ctx context.Context, id string) (*domain.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, req *domain.CreatePlanRequest) (*domain.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, id string, req *domain.UpdatePlanRequest) (*domain.SubscriptionPlan, error)
	DeactivatePlan(ctx context.Context, id string) (*domain.SubscriptionPlan, error)

	Subscribe(ctx context.Context, userID, planID string) (*domain.SubscribeResponse, error)
	VerifySession(ctx context.Context, userID, sessionID string) (*domain.Subscription, error)
	GetMySubscription(ctx context.Context, userID string) (*domain.Subscription, error)
	CancelSubscription(ctx context.Context, userID string) (*domain.Subscription, error)
	CreateBillingPortal(ctx context.Context, userID string) (string, error)

	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error
	ExpireLapsedSubscriptions(ctx context.Context) (int, error)
	ListSubscriptions(ctx context.Context, p *common.Pagination) ([]*domain.Subscription, int64, error)
	GetAnalytics(ctx context.Context) (*domain.SubscriptionAnalytics, error)
}

type subscriptionService struct {
	subs        repository.SubscriptionRepository
	users       repository.UserRepository
	payments    repository.PaymentRepository
	bookings    repository.BookingRepository
	gw          gateway.PaymentGateway
	cache       cache.Service
	frontendURL string
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	gw gateway.PaymentGateway,
	cacheService cache.Service,
	frontendURL string,
) SubscriptionService {
	return &subscriptionService{
		subs:        subs,
		users:       users,
		payments:    payments,
		bookings:    bookings,
		gw:          gw,
		cache:       cacheService,
		frontendURL: frontendURL,
	}
}

// GetPlans lists active plans, cached in Redis
func (s *subscriptionService) GetPlans(ctx context.Context) ([]*domain.SubscriptionPlan, error) {
	if data, err := s.cache.GetPlans(ctx); err == nil {
		var plans []*domain.SubscriptionPlan
		if err := json.Unmarshal(data, &plans); err == nil {
			return plans, nil
		}
	}

	plans, err := s.subs.FindPlans(ctx, true)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetPlans(ctx, plans); err != nil {
		logger.Warn("failed to cache plans: %v", err)
	}
	return plans, nil
}

// GetPlan retrieves a plan
func (s *subscriptionService) GetPlan(ctx context.Context, id string) (*domain.SubscriptionPlan, error) {
	plan, err := s.subs.FindPlanByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// CreatePlan creates a plan (admin)
func (s *subscriptionService) CreatePlan(ctx context.Context, req *domain.CreatePlanRequest) (*domain.SubscriptionPlan, error) {
	plan := &domain.SubscriptionPlan{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Interval:    req.Interval,
		TourLimit:   req.TourLimit,
		BlogLimit:   req.BlogLimit,
		Features:    req.Features,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if plan.Interval == "" {
		plan.Interval = "month"
	}

	if err := s.subs.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidatePlans(ctx); err != nil {
		logger.Warn("failed to invalidate plan cache: %v", err)
	}
	return plan, nil
}

// UpdatePlan updates a plan (admin)
func (s *subscriptionService) UpdatePlan(ctx context.Context, id string, req *domain.UpdatePlanRequest) (*domain.SubscriptionPlan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.TourLimit != nil {
		plan.TourLimit = *req.TourLimit
	}
	if req.BlogLimit != nil {
		plan.BlogLimit = *req.BlogLimit
	}
	if req.Features != nil {
		plan.Features = *req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		plan.SortOrder = *req.SortOrder
	}

	if err := s.subs.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidatePlans(ctx); err != nil {
		logger.Warn("failed to invalidate plan cache: %v", err)
	}
	return plan, nil
}

// DeactivatePlan hides a plan from new subscribers. Existing
// subscriptions on the plan keep their entitlements.
func (s *subscriptionService) DeactivatePlan(ctx context.Context, id string) (*domain.SubscriptionPlan, error) {
	plan, err := s.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	plan.IsActive = false
	if err := s.subs.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	if err := s.cache.InvalidatePlans(ctx); err != nil {
		logger.Warn("failed to invalidate plan cache: %v", err)
	}
	return plan, nil
}

// gatewayError tags provider failures so the edge can answer 502
// instead of a generic 500
func gatewayError(err error) error {
	return fmt.Errorf("%w: %v", common.ErrGateway, err)
}

func (s *subscriptionService) hostForUser(ctx context.Context, userID string) (*domain.Host, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrHostNotFound
		}
		return nil, err
	}
	return host, nil
}

// Subscribe opens a hosted checkout for the plan. A free plan is
// activated locally without touching the gateway.
func (s *subscriptionService) Subscribe(ctx context.Context, userID, planID string) (*domain.SubscribeResponse, error) {
	host, err := s.hostForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.subs.FindActiveByHostID(ctx, host.ID); err == nil {
		return nil, common.ErrSubscriptionExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if plan.Price == 0 {
		if err := s.activateLocal(ctx, host, plan, "", "", time.Now().AddDate(100, 0, 0)); err != nil {
			return nil, err
		}
		return &domain.SubscribeResponse{}, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.gw.EnsureCustomer(ctx, &gateway.CustomerRequest{
		CustomerID: host.StripeCustomerID,
		Email:      user.Email,
		Name:       host.Name,
		HostID:     host.ID,
	})
	if err != nil {
		return nil, gatewayError(err)
	}
	if customerID != host.StripeCustomerID {
		host.StripeCustomerID = customerID
		if err := s.users.UpdateHost(ctx, host); err != nil {
			return nil, err
		}
	}

	pending, err := s.ensurePending(ctx, host.ID, plan.ID)
	if err != nil {
		return nil, err
	}

	session, err := s.gw.CreateCheckoutSession(ctx, &gateway.CheckoutSessionRequest{
		CustomerID:     customerID,
		PriceID:        plan.GatewayPriceID,
		PlanID:         plan.ID,
		HostID:         host.ID,
		SubscriptionID: pending.ID,
		SuccessURL:     s.frontendURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      s.frontendURL + "/subscription/cancel",
	})
	if err != nil {
		return nil, gatewayError(err)
	}

	return &domain.SubscribeResponse{
		CheckoutURL: session.URL,
		SessionID:   session.ID,
	}, nil
}

// ensurePending creates the PENDING subscription a checkout will
// activate, reusing a leftover row from an abandoned checkout
func (s *subscriptionService) ensurePending(ctx context.Context, hostID, planID string) (*domain.Subscription, error) {
	pending, err := s.subs.FindPendingByHostID(ctx, hostID)
	if err == nil {
		if pending.PlanID != planID {
			pending.PlanID = planID
			if err := s.subs.Update(ctx, pending); err != nil {
				return nil, err
			}
		}
		return pending, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	pending = &domain.Subscription{
		HostID:    hostID,
		PlanID:    planID,
		Status:    domain.SubscriptionStatusPending,
		StartDate: now,
		EndDate:   now,
	}
	if err := s.subs.Create(ctx, pending); err != nil {
		return nil, err
	}
	return pending, nil
}

// activatePending flips a pending subscription ACTIVE, records the
// gateway references and raises the host's quota. An already-active
// row is left alone, so whichever of the webhook and the redirect
// verification lands first wins and the other is a no-op.
func (s *subscriptionService) activatePending(ctx context.Context, sub *domain.Subscription, plan *domain.SubscriptionPlan, gatewaySubID, customerID string, endDate time.Time) error {
	if sub.Status == domain.SubscriptionStatusActive {
		return nil
	}

	now := time.Now()
	sub.Status = domain.SubscriptionStatusActive
	sub.GatewaySubscriptionID = gatewaySubID
	sub.GatewayCustomerID = customerID
	sub.StartDate = now
	sub.EndDate = endDate
	sub.CancelAtPeriodEnd = false
	sub.CancelledAt = nil

	if err := s.subs.ActivateForHost(ctx, sub, plan.TourLimit); err != nil {
		return err
	}
	if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
	}
	return nil
}

// activateLocal persists an active subscription and raises the host's
// quota, then drops the cached entitlement
func (s *subscriptionService) activateLocal(ctx context.Context, host *domain.Host, plan *domain.SubscriptionPlan, gatewaySubID, customerID string, endDate time.Time) error {
	sub, err := s.subs.FindActiveByHostID(ctx, host.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		sub = &domain.Subscription{HostID: host.ID}
	}

	now := time.Now()
	sub.PlanID = plan.ID
	sub.Status = domain.SubscriptionStatusActive
	sub.GatewaySubscriptionID = gatewaySubID
	sub.GatewayCustomerID = customerID
	if sub.StartDate.IsZero() {
		sub.StartDate = now
	}
	sub.EndDate = endDate
	sub.CancelAtPeriodEnd = false
	sub.CancelledAt = nil

	if err := s.subs.ActivateForHost(ctx, sub, plan.TourLimit); err != nil {
		return err
	}
	if err := s.cache.InvalidateSubscription(ctx, host.ID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", host.ID, err)
	}
	return nil
}

// VerifySession confirms a checkout after the redirect and activates
// the subscription. The webhook does the same work; whichever lands
// first wins and the other becomes a no-op.
func (s *subscriptionService) VerifySession(ctx context.Context, userID, sessionID string) (*domain.Subscription, error) {
	host, err := s.hostForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	session, err := s.gw.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, gatewayError(err)
	}
	if session.PaymentStatus != "paid" || session.SubscriptionID == "" {
		return nil, common.ErrSubscriptionNotFound
	}

	subID := session.Metadata["subscription_id"]
	if subID == "" {
		return nil, common.ErrSubscriptionNotFound
	}
	sub, err := s.subs.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.HostID != host.ID {
		return nil, common.ErrForbidden
	}
	if sub.Status == domain.SubscriptionStatusActive {
		// Webhook got here first.
		return sub, nil
	}

	plan, err := s.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	providerSub, err := s.gw.GetSubscription(ctx, session.SubscriptionID)
	if err != nil {
		return nil, gatewayError(err)
	}

	endDate := time.Unix(providerSub.CurrentPeriodEnd, 0)
	if err := s.activatePending(ctx, sub, plan, providerSub.ID, providerSub.CustomerID, endDate); err != nil {
		return nil, err
	}

	return s.subs.FindByID(ctx, sub.ID)
}

// GetMySubscription returns the caller's active subscription
func (s *subscriptionService) GetMySubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	host, err := s.hostForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.FindActiveByHostID(ctx, host.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return sub, nil
}

// CancelSubscription asks the gateway to cancel at period end. The
// entitlement survives until the webhook confirms the deletion.
func (s *subscriptionService) CancelSubscription(ctx context.Context, userID string) (*domain.Subscription, error) {
	host, err := s.hostForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.FindActiveByHostID(ctx, host.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrSubscriptionNotFound
		}
		return nil, err
	}

	now := time.Now()

	if sub.GatewaySubscriptionID == "" {
		// Free-tier subscription, nothing to cancel at the gateway.
		sub.Status = domain.SubscriptionStatusCancelled
		sub.CancelledAt = &now
		if err := s.subs.DowngradeHost(ctx, sub, domain.BasicTourLimit); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.gw.CancelSubscription(ctx, sub.GatewaySubscriptionID, true); err != nil {
			return nil, gatewayError(err)
		}
		sub.CancelAtPeriodEnd = true
		sub.CancelledAt = &now
		if err := s.subs.Update(ctx, sub); err != nil {
			return nil, err
		}
	}

	if err := s.cache.InvalidateSubscription(ctx, host.ID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", host.ID, err)
	}
	return sub, nil
}

// CreateBillingPortal returns a self-service billing portal URL
func (s *subscriptionService) CreateBillingPortal(ctx context.Context, userID string) (string, error) {
	host, err := s.hostForUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if host.StripeCustomerID == "" {
		return "", common.ErrSubscriptionNotFound
	}
	url, err := s.gw.CreateBillingPortalSession(ctx, host.StripeCustomerID, s.frontendURL+"/account/billing")
	if err != nil {
		return "", gatewayError(err)
	}
	return url, nil
}

// ExpireLapsedSubscriptions sweeps ACTIVE subscriptions past their end
// date, downgrading each host to the free tier
func (s *subscriptionService) ExpireLapsedSubscriptions(ctx context.Context) (int, error) {
	lapsed, err := s.subs.ExpireLapsed(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	for _, sub := range lapsed {
		if err := s.subs.DowngradeHost(ctx, sub, domain.BasicTourLimit); err != nil {
			logger.Error("failed to downgrade host %s after expiry: %v", sub.HostID, err)
			continue
		}
		if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
			logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
		}
	}
	return len(lapsed), nil
}

// GetAnalytics aggregates subscription figures (admin)
// ListSubscriptions lists subscriptions for the admin dashboard
func (s *subscriptionService) ListSubscriptions(ctx context.Context, p *common.Pagination) ([]*domain.Subscription, int64, error) {
	p.Normalize("created_at", "end_date", "status")
	return s.subs.FindAll(ctx, p)
}

func (s *subscriptionService) GetAnalytics(ctx context.Context) (*domain.SubscriptionAnalytics, error) {
	return s.subs.Analytics(ctx)
}
