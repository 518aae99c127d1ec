package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/gateway"
	"github.com/roamly/roamly-backend/pkg/logger"
	"gorm.io/gorm"
)

// Webhook object shapes. Only the fields the reconciler reads are
// declared; everything else in the provider payload is ignored.

type webhookCheckoutSession struct {
	ID            string            `json:"id"`
	Customer      string            `json:"customer"`
	Subscription  string            `json:"subscription"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

type webhookSubscription struct {
	ID                string            `json:"id"`
	Customer          string            `json:"customer"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64             `json:"current_period_end"`
	Metadata          map[string]string `json:"metadata"`
}

type webhookInvoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	AmountPaid   int64  `json:"amount_paid"`
	AmountDue    int64  `json:"amount_due"`
	Currency     string `json:"currency"`
}

type webhookPaymentIntent struct {
	ID               string            `json:"id"`
	Customer         string            `json:"customer"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

// HandleWebhook verifies, dedupes and dispatches a provider event.
// Handler errors after verification are logged and swallowed so the
// provider does not retry events we cannot reconcile; those land in
// the unreconciled_events table instead.
func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gw.VerifyWebhookSignature(payload, signatureHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidWebhookSignature, err)
	}

	first, err := s.cache.MarkEventProcessed(ctx, event.ID)
	if err != nil {
		// Dedupe store down: process anyway, the payment upsert keeps
		// replays harmless.
		logger.Warn("webhook dedupe check failed for %s: %v", event.ID, err)
	} else if !first {
		logger.Info("skipping already processed webhook event %s", event.ID)
		return nil
	}

	if err := s.dispatchEvent(ctx, event); err != nil {
		logger.Error("webhook handler failed for %s (%s): %v", event.ID, event.Type, err)
	}
	return nil
}

func (s *subscriptionService) dispatchEvent(ctx context.Context, event *gateway.WebhookEvent) error {
	switch event.Type {
	case gateway.EventCheckoutSessionCompleted:
		return s.onCheckoutCompleted(ctx, event)
	case gateway.EventSubscriptionUpdated:
		return s.onSubscriptionUpdated(ctx, event)
	case gateway.EventSubscriptionDeleted:
		return s.onSubscriptionDeleted(ctx, event)
	case gateway.EventInvoicePaymentSucceeded:
		return s.onInvoicePaid(ctx, event)
	case gateway.EventInvoicePaymentFailed:
		return s.onInvoiceFailed(ctx, event)
	case gateway.EventPaymentIntentSucceeded:
		return s.onPaymentIntentSucceeded(ctx, event)
	case gateway.EventPaymentIntentPaymentFailed:
		return s.onPaymentIntentFailed(ctx, event)
	default:
		logger.Info("ignoring webhook event %s of type %s", event.ID, event.Type)
		return nil
	}
}

// recordUnreconciled files the event for operator follow-up
func (s *subscriptionService) recordUnreconciled(ctx context.Context, event *gateway.WebhookEvent, reason string) error {
	return s.subs.CreateUnreconciledEvent(ctx, &domain.UnreconciledEvent{
		EventID:   event.ID,
		EventType: event.Type,
		Reason:    reason,
		Payload:   string(event.Data),
	})
}

func (s *subscriptionService) onCheckoutCompleted(ctx context.Context, event *gateway.WebhookEvent) error {
	var session webhookCheckoutSession
	if err := json.Unmarshal(event.Data, &session); err != nil {
		return err
	}

	subID := session.Metadata["subscription_id"]
	if subID == "" {
		return s.recordUnreconciled(ctx, event, "checkout session missing subscription_id metadata")
	}
	if session.Subscription == "" {
		return s.recordUnreconciled(ctx, event, "checkout session carries no subscription")
	}

	sub, err := s.subs.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "no local subscription "+subID)
		}
		return err
	}
	plan, err := s.subs.FindPlanByID(ctx, sub.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "plan "+sub.PlanID+" not found")
		}
		return err
	}
	host, err := s.users.FindHostByID(ctx, sub.HostID)
	if err != nil {
		return err
	}

	providerSub, err := s.gw.GetSubscription(ctx, session.Subscription)
	if err != nil {
		return err
	}

	endDate := time.Unix(providerSub.CurrentPeriodEnd, 0)
	if err := s.activatePending(ctx, sub, plan, providerSub.ID, session.Customer, endDate); err != nil {
		return err
	}

	// The first charge settles with the checkout; the transaction_id
	// unique key keeps a redelivered event from stacking rows.
	now := time.Now()
	return s.payments.Upsert(ctx, &domain.Payment{
		UserID:          host.UserID,
		SubscriptionID:  &sub.ID,
		Type:            domain.PaymentTypeSubscription,
		Status:          domain.PaymentStatusCompleted,
		Amount:          plan.Price,
		Currency:        normalizeCurrency(plan.Currency),
		TransactionID:   session.ID,
		GatewayResponse: string(event.Data),
		PaidAt:          &now,
	})
}

func mapProviderStatus(status string) domain.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return domain.SubscriptionStatusActive
	case "past_due", "unpaid", "incomplete":
		return domain.SubscriptionStatusPastDue
	case "canceled", "incomplete_expired":
		return domain.SubscriptionStatusCancelled
	default:
		return domain.SubscriptionStatusExpired
	}
}

func (s *subscriptionService) onSubscriptionUpdated(ctx context.Context, event *gateway.WebhookEvent) error {
	var providerSub webhookSubscription
	if err := json.Unmarshal(event.Data, &providerSub); err != nil {
		return err
	}

	sub, err := s.subs.FindByGatewayID(ctx, providerSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "no local subscription for "+providerSub.ID)
		}
		return err
	}

	newStatus := mapProviderStatus(providerSub.Status)
	sub.Status = newStatus
	sub.CancelAtPeriodEnd = providerSub.CancelAtPeriodEnd
	if providerSub.CurrentPeriodEnd > 0 {
		sub.EndDate = time.Unix(providerSub.CurrentPeriodEnd, 0)
	}

	if newStatus == domain.SubscriptionStatusCancelled {
		if err := s.subs.DowngradeHost(ctx, sub, domain.BasicTourLimit); err != nil {
			return err
		}
	} else {
		if err := s.subs.Update(ctx, sub); err != nil {
			return err
		}
	}

	if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
	}
	return nil
}

func (s *subscriptionService) onSubscriptionDeleted(ctx context.Context, event *gateway.WebhookEvent) error {
	var providerSub webhookSubscription
	if err := json.Unmarshal(event.Data, &providerSub); err != nil {
		return err
	}

	sub, err := s.subs.FindByGatewayID(ctx, providerSub.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "no local subscription for "+providerSub.ID)
		}
		return err
	}

	now := time.Now()
	sub.Status = domain.SubscriptionStatusCancelled
	sub.CancelledAt = &now

	if err := s.subs.DowngradeHost(ctx, sub, domain.BasicTourLimit); err != nil {
		return err
	}
	if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
	}
	return nil
}

func (s *subscriptionService) onInvoicePaid(ctx context.Context, event *gateway.WebhookEvent) error {
	var invoice webhookInvoice
	if err := json.Unmarshal(event.Data, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == "" {
		return s.recordUnreconciled(ctx, event, "invoice carries no subscription")
	}

	sub, err := s.subs.FindByGatewayID(ctx, invoice.Subscription)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "no local subscription for "+invoice.Subscription)
		}
		return err
	}

	host, err := s.users.FindHostByID(ctx, sub.HostID)
	if err != nil {
		return err
	}

	now := time.Now()
	payment := &domain.Payment{
		UserID:          host.UserID,
		SubscriptionID:  &sub.ID,
		Type:            domain.PaymentTypeSubscription,
		Status:          domain.PaymentStatusCompleted,
		Amount:          float64(invoice.AmountPaid) / 100,
		Currency:        normalizeCurrency(invoice.Currency),
		TransactionID:   invoice.ID,
		GatewayResponse: string(event.Data),
		PaidAt:          &now,
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return err
	}

	// Renewals only extend a live subscription. Status stays where the
	// subscription lifecycle events put it; a terminal row is never
	// resurrected by a trailing invoice.
	if sub.Status != domain.SubscriptionStatusActive {
		logger.Warn("invoice %s paid for %s subscription %s, leaving it untouched", invoice.ID, sub.Status, sub.ID)
		return nil
	}

	providerSub, err := s.gw.GetSubscription(ctx, invoice.Subscription)
	if err == nil && providerSub.CurrentPeriodEnd > 0 {
		sub.EndDate = time.Unix(providerSub.CurrentPeriodEnd, 0)
	}
	sub.LastPaymentDate = &now
	if err := s.subs.Update(ctx, sub); err != nil {
		return err
	}

	if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
	}
	return nil
}

func (s *subscriptionService) onInvoiceFailed(ctx context.Context, event *gateway.WebhookEvent) error {
	var invoice webhookInvoice
	if err := json.Unmarshal(event.Data, &invoice); err != nil {
		return err
	}
	if invoice.Subscription == "" {
		return s.recordUnreconciled(ctx, event, "invoice carries no subscription")
	}

	sub, err := s.subs.FindByGatewayID(ctx, invoice.Subscription)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.recordUnreconciled(ctx, event, "no local subscription for "+invoice.Subscription)
		}
		return err
	}

	host, err := s.users.FindHostByID(ctx, sub.HostID)
	if err != nil {
		return err
	}

	payment := &domain.Payment{
		UserID:          host.UserID,
		SubscriptionID:  &sub.ID,
		Type:            domain.PaymentTypeSubscription,
		Status:          domain.PaymentStatusFailed,
		Amount:          float64(invoice.AmountDue) / 100,
		Currency:        normalizeCurrency(invoice.Currency),
		TransactionID:   invoice.ID,
		FailureReason:   "invoice payment failed",
		GatewayResponse: string(event.Data),
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return err
	}

	// Bookkeeping only. If the provider gives up on the subscription it
	// says so through customer.subscription.updated/deleted.
	if sub.Status != domain.SubscriptionStatusActive {
		return nil
	}

	now := time.Now()
	sub.LastPaymentFailure = &now
	if err := s.subs.Update(ctx, sub); err != nil {
		return err
	}

	if err := s.cache.InvalidateSubscription(ctx, sub.HostID); err != nil {
		logger.Warn("failed to invalidate subscription cache for host %s: %v", sub.HostID, err)
	}
	return nil
}

func (s *subscriptionService) onPaymentIntentSucceeded(ctx context.Context, event *gateway.WebhookEvent) error {
	var intent webhookPaymentIntent
	if err := json.Unmarshal(event.Data, &intent); err != nil {
		return err
	}

	bookingID := intent.Metadata["booking_id"]
	userID := intent.Metadata["user_id"]
	if bookingID == "" || userID == "" {
		return s.recordUnreconciled(ctx, event, "payment intent missing booking_id or user_id metadata")
	}

	now := time.Now()
	payment := &domain.Payment{
		UserID:          userID,
		BookingID:       &bookingID,
		Type:            domain.PaymentTypeBooking,
		Status:          domain.PaymentStatusCompleted,
		Amount:          float64(intent.Amount) / 100,
		Currency:        normalizeCurrency(intent.Currency),
		TransactionID:   intent.ID,
		GatewayResponse: string(event.Data),
		PaidAt:          &now,
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return err
	}

	// Settlement only; confirming the booking stays a host decision.
	return s.bookings.UpdatePaymentStatus(ctx, bookingID, domain.BookingPaymentCompleted)
}

func (s *subscriptionService) onPaymentIntentFailed(ctx context.Context, event *gateway.WebhookEvent) error {
	var intent webhookPaymentIntent
	if err := json.Unmarshal(event.Data, &intent); err != nil {
		return err
	}

	bookingID := intent.Metadata["booking_id"]
	userID := intent.Metadata["user_id"]
	if bookingID == "" || userID == "" {
		return s.recordUnreconciled(ctx, event, "payment intent missing booking_id or user_id metadata")
	}

	reason := "payment failed"
	if intent.LastPaymentError != nil && intent.LastPaymentError.Message != "" {
		reason = intent.LastPaymentError.Message
	}

	payment := &domain.Payment{
		UserID:          userID,
		BookingID:       &bookingID,
		Type:            domain.PaymentTypeBooking,
		Status:          domain.PaymentStatusFailed,
		Amount:          float64(intent.Amount) / 100,
		Currency:        normalizeCurrency(intent.Currency),
		TransactionID:   intent.ID,
		FailureReason:   reason,
		GatewayResponse: string(event.Data),
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return err
	}

	return s.bookings.UpdatePaymentStatus(ctx, bookingID, domain.BookingPaymentFailed)
}

func normalizeCurrency(currency string) string {
	if currency == "" {
		return "USD"
	}
	return strings.ToUpper(currency)
}
