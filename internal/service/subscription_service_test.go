package service

import (
	"context"
	"testing"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type subscriptionFixtures struct {
	subs     *MockSubscriptionRepository
	users    *MockUserRepository
	payments *MockPaymentRepository
	bookings *MockBookingRepository
	gw       *MockPaymentGateway
	cache    *MockCacheService
	svc      SubscriptionService
}

func newSubscriptionFixtures() *subscriptionFixtures {
	f := &subscriptionFixtures{
		subs:     new(MockSubscriptionRepository),
		users:    new(MockUserRepository),
		payments: new(MockPaymentRepository),
		bookings: new(MockBookingRepository),
		gw:       new(MockPaymentGateway),
		cache:    new(MockCacheService),
	}
	f.svc = NewSubscriptionService(f.subs, f.users, f.payments, f.bookings, f.gw, f.cache, "https://app.roamly.test")
	return f
}

func TestSubscribe_PaidPlanOpensCheckout(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	host := &domain.Host{ID: "host-1", UserID: "user-1", Name: "Ana", StripeCustomerID: ""}
	plan := &domain.SubscriptionPlan{ID: "plan-std", Name: "Standard", Price: 9.99, TourLimit: 8, GatewayPriceID: "price_std"}

	f.users.On("FindHostByUserID", ctx, "user-1").Return(host, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(nil, gorm.ErrRecordNotFound)
	f.subs.On("FindPlanByID", ctx, "plan-std").Return(plan, nil)
	f.users.On("FindByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Email: "ana@example.com"}, nil)
	f.gw.On("EnsureCustomer", ctx, mock.Anything).Return("cus_1", nil)
	f.users.On("UpdateHost", ctx, mock.MatchedBy(func(h *domain.Host) bool {
		return h.StripeCustomerID == "cus_1"
	})).Return(nil)
	f.subs.On("FindPendingByHostID", ctx, "host-1").Return(nil, gorm.ErrRecordNotFound)
	f.subs.On("Create", ctx, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.HostID == "host-1" && sub.PlanID == "plan-std" && sub.Status == domain.SubscriptionStatusPending
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Subscription).ID = "sub-pending"
	})
	f.gw.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req *gateway.CheckoutSessionRequest) bool {
		return req.CustomerID == "cus_1" && req.PriceID == "price_std" &&
			req.PlanID == "plan-std" && req.HostID == "host-1" &&
			req.SubscriptionID == "sub-pending"
	})).Return(&gateway.CheckoutSession{ID: "cs_1", URL: "https://checkout.test/cs_1"}, nil)

	resp, err := f.svc.Subscribe(ctx, "user-1", "plan-std")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", resp.SessionID)
	assert.Equal(t, "https://checkout.test/cs_1", resp.CheckoutURL)
	f.subs.AssertExpectations(t)
}

func TestSubscribe_ReusesAbandonedPendingRow(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	host := &domain.Host{ID: "host-1", UserID: "user-1", StripeCustomerID: "cus_1"}
	plan := &domain.SubscriptionPlan{ID: "plan-prem", Price: 19.99, TourLimit: 12, GatewayPriceID: "price_prem"}
	stale := &domain.Subscription{ID: "sub-pending", HostID: "host-1", PlanID: "plan-std", Status: domain.SubscriptionStatusPending}

	f.users.On("FindHostByUserID", ctx, "user-1").Return(host, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(nil, gorm.ErrRecordNotFound)
	f.subs.On("FindPlanByID", ctx, "plan-prem").Return(plan, nil)
	f.users.On("FindByID", ctx, "user-1").Return(&domain.User{ID: "user-1", Email: "ana@example.com"}, nil)
	f.gw.On("EnsureCustomer", ctx, mock.Anything).Return("cus_1", nil)
	f.subs.On("FindPendingByHostID", ctx, "host-1").Return(stale, nil)
	f.subs.On("Update", ctx, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.ID == "sub-pending" && sub.PlanID == "plan-prem"
	})).Return(nil)
	f.gw.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(req *gateway.CheckoutSessionRequest) bool {
		return req.SubscriptionID == "sub-pending"
	})).Return(&gateway.CheckoutSession{ID: "cs_2", URL: "https://checkout.test/cs_2"}, nil)

	_, err := f.svc.Subscribe(ctx, "user-1", "plan-prem")
	require.NoError(t, err)
	f.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubscribe_ProviderDownSurfacesGatewayError(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	f.users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1", UserID: "user-1"}, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(nil, gorm.ErrRecordNotFound)
	f.subs.On("FindPlanByID", ctx, "plan-std").Return(&domain.SubscriptionPlan{ID: "plan-std", Price: 9.99}, nil)
	f.users.On("FindByID", ctx, "user-1").Return(&domain.User{ID: "user-1"}, nil)
	f.gw.On("EnsureCustomer", ctx, mock.Anything).Return("", gateway.ErrProviderUnavailable)

	_, err := f.svc.Subscribe(ctx, "user-1", "plan-std")
	assert.ErrorIs(t, err, common.ErrGateway)
}

func TestSubscribe_ActiveSubscriptionRejected(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	f.users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1"}, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(&domain.Subscription{ID: "sub-1"}, nil)

	_, err := f.svc.Subscribe(ctx, "user-1", "plan-std")
	assert.ErrorIs(t, err, common.ErrSubscriptionExists)
}

func TestSubscribe_FreePlanActivatesLocally(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	host := &domain.Host{ID: "host-1", UserID: "user-1"}
	plan := &domain.SubscriptionPlan{ID: "plan-basic", Name: "Basic", Price: 0, TourLimit: 4}

	f.users.On("FindHostByUserID", ctx, "user-1").Return(host, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(nil, gorm.ErrRecordNotFound)
	f.subs.On("FindPlanByID", ctx, "plan-basic").Return(plan, nil)
	f.subs.On("ActivateForHost", ctx, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.HostID == "host-1" && sub.PlanID == "plan-basic" && sub.Status == domain.SubscriptionStatusActive
	}), 4).Return(nil)
	f.cache.On("InvalidateSubscription", ctx, "host-1").Return(nil)

	resp, err := f.svc.Subscribe(ctx, "user-1", "plan-basic")
	require.NoError(t, err)
	assert.Empty(t, resp.CheckoutURL)
	f.gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCancelSubscription_PaidCancelsAtPeriodEnd(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	sub := &domain.Subscription{
		ID:                    "sub-1",
		HostID:                "host-1",
		Status:                domain.SubscriptionStatusActive,
		GatewaySubscriptionID: "stripe_sub_1",
	}
	f.users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1", UserID: "user-1"}, nil)
	f.subs.On("FindActiveByHostID", ctx, "host-1").Return(sub, nil)
	f.gw.On("CancelSubscription", ctx, "stripe_sub_1", true).Return(&gateway.ProviderSubscription{ID: "stripe_sub_1", CancelAtPeriodEnd: true}, nil)
	f.subs.On("Update", ctx, mock.MatchedBy(func(s *domain.Subscription) bool {
		return s.CancelAtPeriodEnd && s.Status == domain.SubscriptionStatusActive
	})).Return(nil)
	f.cache.On("InvalidateSubscription", ctx, "host-1").Return(nil)

	got, err := f.svc.CancelSubscription(ctx, "user-1")
	require.NoError(t, err)
	// Entitlement survives until the deletion webhook lands.
	assert.Equal(t, domain.SubscriptionStatusActive, got.Status)
	f.subs.AssertNotCalled(t, "DowngradeHost", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPlans_CacheMissFallsThrough(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	plans := []*domain.SubscriptionPlan{{ID: "plan-basic", Name: "Basic"}}
	f.cache.On("GetPlans", ctx).Return(nil, assert.AnError)
	f.subs.On("FindPlans", ctx, true).Return(plans, nil)
	f.cache.On("SetPlans", ctx, mock.Anything).Return(nil)

	got, err := f.svc.GetPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	f.subs.AssertExpectations(t)
}

func TestGetPlans_CacheHitSkipsRepository(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	f.cache.On("GetPlans", ctx).Return([]byte(`[{"id":"plan-basic","name":"Basic"}]`), nil)

	got, err := f.svc.GetPlans(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "plan-basic", got[0].ID)
	f.subs.AssertNotCalled(t, "FindPlans", mock.Anything, mock.Anything)
}

func TestExpireLapsedSubscriptions_DowngradesHosts(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	lapsed := []*domain.Subscription{
		{ID: "sub-1", HostID: "host-1", Status: domain.SubscriptionStatusExpired},
		{ID: "sub-2", HostID: "host-2", Status: domain.SubscriptionStatusExpired},
	}
	f.subs.On("ExpireLapsed", ctx, mock.AnythingOfType("time.Time")).Return(lapsed, nil)
	f.subs.On("DowngradeHost", ctx, mock.Anything, domain.BasicTourLimit).Return(nil).Times(2)
	f.cache.On("InvalidateSubscription", ctx, mock.Anything).Return(nil).Times(2)

	n, err := f.svc.ExpireLapsedSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	f.subs.AssertExpectations(t)
}

func TestVerifySession_ActivatesSubscription(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	host := &domain.Host{ID: "host-1", UserID: "user-1"}
	plan := &domain.SubscriptionPlan{ID: "plan-std", TourLimit: 8}
	periodEnd := time.Now().AddDate(0, 1, 0).Unix()
	pending := &domain.Subscription{ID: "sub-1", HostID: "host-1", PlanID: "plan-std", Status: domain.SubscriptionStatusPending}

	f.users.On("FindHostByUserID", ctx, "user-1").Return(host, nil)
	f.gw.On("GetCheckoutSession", ctx, "cs_1").Return(&gateway.CheckoutSession{
		ID:             "cs_1",
		PaymentStatus:  "paid",
		SubscriptionID: "stripe_sub_1",
		CustomerID:     "cus_1",
		Metadata:       map[string]string{"plan_id": "plan-std", "host_id": "host-1", "subscription_id": "sub-1"},
	}, nil)
	f.subs.On("FindByID", ctx, "sub-1").Return(pending, nil).Once()
	f.subs.On("FindPlanByID", ctx, "plan-std").Return(plan, nil)
	f.gw.On("GetSubscription", ctx, "stripe_sub_1").Return(&gateway.ProviderSubscription{
		ID:               "stripe_sub_1",
		CustomerID:       "cus_1",
		Status:           "active",
		CurrentPeriodEnd: periodEnd,
	}, nil)
	f.subs.On("ActivateForHost", ctx, mock.MatchedBy(func(sub *domain.Subscription) bool {
		return sub.ID == "sub-1" && sub.GatewaySubscriptionID == "stripe_sub_1" && sub.EndDate.Unix() == periodEnd
	}), 8).Return(nil)
	f.cache.On("InvalidateSubscription", ctx, "host-1").Return(nil)
	f.subs.On("FindByID", ctx, "sub-1").Return(&domain.Subscription{ID: "sub-1", HostID: "host-1", Status: domain.SubscriptionStatusActive}, nil)

	sub, err := f.svc.VerifySession(ctx, "user-1", "cs_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
}

func TestVerifySession_WebhookWonFirst(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	f.users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1", UserID: "user-1"}, nil)
	f.gw.On("GetCheckoutSession", ctx, "cs_1").Return(&gateway.CheckoutSession{
		ID:             "cs_1",
		PaymentStatus:  "paid",
		SubscriptionID: "stripe_sub_1",
		Metadata:       map[string]string{"subscription_id": "sub-1"},
	}, nil)
	f.subs.On("FindByID", ctx, "sub-1").Return(&domain.Subscription{
		ID: "sub-1", HostID: "host-1", Status: domain.SubscriptionStatusActive,
	}, nil)

	sub, err := f.svc.VerifySession(ctx, "user-1", "cs_1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionStatusActive, sub.Status)
	f.subs.AssertNotCalled(t, "ActivateForHost", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifySession_UnpaidSessionRejected(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	f.users.On("FindHostByUserID", ctx, "user-1").Return(&domain.Host{ID: "host-1"}, nil)
	f.gw.On("GetCheckoutSession", ctx, "cs_1").Return(&gateway.CheckoutSession{
		ID:            "cs_1",
		PaymentStatus: "unpaid",
	}, nil)

	_, err := f.svc.VerifySession(ctx, "user-1", "cs_1")
	assert.ErrorIs(t, err, common.ErrSubscriptionNotFound)
}

func TestDeactivatePlan_HidesFromNewSubscribers(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	plan := &domain.SubscriptionPlan{ID: "plan-std", Name: "Standard", IsActive: true}
	f.subs.On("FindPlanByID", ctx, "plan-std").Return(plan, nil)
	f.subs.On("UpdatePlan", ctx, mock.MatchedBy(func(p *domain.SubscriptionPlan) bool {
		return p.ID == "plan-std" && !p.IsActive
	})).Return(nil)
	f.cache.On("InvalidatePlans", ctx).Return(nil)

	got, err := f.svc.DeactivatePlan(ctx, "plan-std")
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	f.subs.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestListSubscriptions_NormalizesPagination(t *testing.T) {
	f := newSubscriptionFixtures()
	ctx := context.Background()

	subs := []*domain.Subscription{{ID: "sub-1"}, {ID: "sub-2"}}
	f.subs.On("FindAll", ctx, mock.MatchedBy(func(p *common.Pagination) bool {
		return p.Page == 1 && p.Limit == 10 && p.SortBy == "created_at"
	})).Return(subs, int64(2), nil)

	got, total, err := f.svc.ListSubscriptions(ctx, &common.Pagination{Page: 0, Limit: 0, SortBy: "plan_name"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, got, 2)
}
