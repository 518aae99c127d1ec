package gateway

import (
	"context"
	"errors"
)

// PaymentGateway abstracts the payment provider. The service layer
// talks only to this interface so tests can swap in a mock.
type PaymentGateway interface {
	// EnsureCustomer returns the existing customer ID or creates one.
	EnsureCustomer(ctx context.Context, req *CustomerRequest) (string, error)

	// CreateCheckoutSession opens a hosted checkout for a subscription.
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error)

	// GetCheckoutSession retrieves a checkout session after redirect.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// GetSubscription retrieves a provider subscription.
	GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)

	// CancelSubscription cancels at period end or immediately.
	CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*ProviderSubscription, error)

	// CreateBillingPortalSession opens the provider's self-service portal.
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)

	// CreatePaymentIntent opens a one-off charge for a booking.
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error)

	// GetPaymentIntent retrieves a one-off charge for a status poll.
	GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)

	// VerifyWebhookSignature authenticates a webhook delivery and
	// returns the parsed event.
	VerifyWebhookSignature(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// CustomerRequest provider customer creation payload
type CustomerRequest struct {
	CustomerID string // empty when none exists yet
	Email      string
	Name       string
	HostID     string
}

// CheckoutSessionRequest hosted checkout payload. SubscriptionID is
// the local pending subscription the webhook activates on completion.
type CheckoutSessionRequest struct {
	CustomerID     string
	PriceID        string
	PlanID         string
	HostID         string
	SubscriptionID string
	SuccessURL     string
	CancelURL      string
}

// CheckoutSession a hosted checkout handle
type CheckoutSession struct {
	ID             string
	URL            string
	Status         string
	PaymentStatus  string
	CustomerID     string
	SubscriptionID string
	Metadata       map[string]string
}

// ProviderSubscription the provider's view of a subscription
type ProviderSubscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CancelAtPeriodEnd  bool
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	PriceID            string
	Metadata           map[string]string
}

// PaymentIntentRequest one-off charge payload. Amount is in the
// smallest currency unit.
type PaymentIntentRequest struct {
	CustomerID string
	Amount     int64
	Currency   string
	BookingID  string
	UserID     string
}

// PaymentIntent a one-off charge handle
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

// WebhookEvent a verified provider event
type WebhookEvent struct {
	ID      string
	Type    string
	Created int64
	// Data is the raw inner object; handlers unmarshal the shape they
	// expect for the event type.
	Data []byte
}

// Webhook event types the reconciler handles
const (
	EventCheckoutSessionCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated        = "customer.subscription.updated"
	EventSubscriptionDeleted        = "customer.subscription.deleted"
	EventInvoicePaymentSucceeded    = "invoice.payment_succeeded"
	EventInvoicePaymentFailed       = "invoice.payment_failed"
	EventPaymentIntentSucceeded     = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed = "payment_intent.payment_failed"
)

// Gateway errors
var (
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrSignatureExpired    = errors.New("webhook signature timestamp too old")
	ErrInvalidPayload      = errors.New("invalid webhook payload")
)
