package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAPIBase = "https://api.stripe.com"

	// Webhook deliveries older than this are rejected to limit replay.
	signatureTolerance = 5 * time.Minute
)

// StripeConfig Stripe gateway settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIBase       string // overridable for tests
}

// StripeGateway Stripe implementation of PaymentGateway
type StripeGateway struct {
	config     *StripeConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewStripeGateway creates a new StripeGateway
func NewStripeGateway(config *StripeConfig) *StripeGateway {
	if config.APIBase == "" {
		config.APIBase = defaultAPIBase
	}
	return &StripeGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// stripeError Stripe API error envelope
type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a form-encoded request and decodes the JSON response into out
func (g *StripeGateway) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, g.config.APIBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr stripeError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe: %s (%s)", apiErr.Error.Message, apiErr.Error.Type)
		}
		return fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// stripeCustomer Stripe customer object
type stripeCustomer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EnsureCustomer returns the existing customer ID or creates one
func (g *StripeGateway) EnsureCustomer(ctx context.Context, req *CustomerRequest) (string, error) {
	if req.CustomerID != "" {
		return req.CustomerID, nil
	}

	form := url.Values{}
	form.Set("email", req.Email)
	form.Set("name", req.Name)
	form.Set("metadata[host_id]", req.HostID)

	var customer stripeCustomer
	if err := g.do(ctx, http.MethodPost, "/v1/customers", form, &customer); err != nil {
		return "", err
	}
	return customer.ID, nil
}

// stripeCheckoutSession Stripe checkout session object
type stripeCheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Customer      string            `json:"customer"`
	Subscription  string            `json:"subscription"`
	Metadata      map[string]string `json:"metadata"`
}

func (s *stripeCheckoutSession) toSession() *CheckoutSession {
	return &CheckoutSession{
		ID:             s.ID,
		URL:            s.URL,
		Status:         s.Status,
		PaymentStatus:  s.PaymentStatus,
		CustomerID:     s.Customer,
		SubscriptionID: s.Subscription,
		Metadata:       s.Metadata,
	}
}

// CreateCheckoutSession opens a hosted subscription checkout
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer", req.CustomerID)
	form.Set("line_items[0][price]", req.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[plan_id]", req.PlanID)
	form.Set("metadata[host_id]", req.HostID)
	form.Set("metadata[subscription_id]", req.SubscriptionID)
	form.Set("subscription_data[metadata][plan_id]", req.PlanID)
	form.Set("subscription_data[metadata][host_id]", req.HostID)
	form.Set("subscription_data[metadata][subscription_id]", req.SubscriptionID)

	var session stripeCheckoutSession
	if err := g.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return session.toSession(), nil
}

// GetCheckoutSession retrieves a checkout session
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session stripeCheckoutSession
	err := g.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, &session)
	if err != nil {
		return nil, err
	}
	return session.toSession(), nil
}

// stripeSubscription Stripe subscription object
type stripeSubscription struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Metadata           map[string]string `json:"metadata"`
	Items              struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (s *stripeSubscription) toSubscription() *ProviderSubscription {
	sub := &ProviderSubscription{
		ID:                 s.ID,
		CustomerID:         s.Customer,
		Status:             s.Status,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		Metadata:           s.Metadata,
	}
	if len(s.Items.Data) > 0 {
		sub.PriceID = s.Items.Data[0].Price.ID
	}
	return sub
}

// GetSubscription retrieves a provider subscription
func (g *StripeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	var sub stripeSubscription
	err := g.do(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(subscriptionID), nil, &sub)
	if err != nil {
		return nil, err
	}
	return sub.toSubscription(), nil
}

// CancelSubscription cancels at period end or immediately
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string, atPeriodEnd bool) (*ProviderSubscription, error) {
	var sub stripeSubscription
	path := "/v1/subscriptions/" + url.PathEscape(subscriptionID)

	if atPeriodEnd {
		form := url.Values{}
		form.Set("cancel_at_period_end", "true")
		if err := g.do(ctx, http.MethodPost, path, form, &sub); err != nil {
			return nil, err
		}
	} else {
		if err := g.do(ctx, http.MethodDelete, path, nil, &sub); err != nil {
			return nil, err
		}
	}
	return sub.toSubscription(), nil
}

// CreateBillingPortalSession opens the self-service billing portal
func (g *StripeGateway) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var portal struct {
		URL string `json:"url"`
	}
	if err := g.do(ctx, http.MethodPost, "/v1/billing_portal/sessions", form, &portal); err != nil {
		return "", err
	}
	return portal.URL, nil
}

// stripePaymentIntent Stripe payment intent object
type stripePaymentIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
}

// CreatePaymentIntent opens a one-off charge for a booking
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.Amount, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	if req.CustomerID != "" {
		form.Set("customer", req.CustomerID)
	}
	form.Set("metadata[booking_id]", req.BookingID)
	form.Set("metadata[user_id]", req.UserID)
	form.Set("automatic_payment_methods[enabled]", "true")

	var intent stripePaymentIntent
	if err := g.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	return intent.toIntent(), nil
}

// GetPaymentIntent retrieves a one-off charge for a status poll
func (g *StripeGateway) GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	var intent stripePaymentIntent
	err := g.do(ctx, http.MethodGet, "/v1/payment_intents/"+url.PathEscape(intentID), nil, &intent)
	if err != nil {
		return nil, err
	}
	return intent.toIntent(), nil
}

func (i *stripePaymentIntent) toIntent() *PaymentIntent {
	return &PaymentIntent{
		ID:           i.ID,
		ClientSecret: i.ClientSecret,
		Status:       i.Status,
		Amount:       i.Amount,
		Currency:     i.Currency,
		Metadata:     i.Metadata,
	}
}

// stripeEvent Stripe webhook event envelope
type stripeEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// VerifyWebhookSignature authenticates a delivery against the
// Stripe-Signature header (t=<unix>,v1=<hex hmac of "<t>.<payload>">)
// and returns the parsed event.
func (g *StripeGateway) VerifyWebhookSignature(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	timestamp, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	ts := time.Unix(timestamp, 0)
	if g.now().Sub(ts) > signatureTolerance {
		return nil, ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(g.config.WebhookSecret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	valid := false
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	if event.ID == "" || event.Type == "" {
		return nil, ErrInvalidPayload
	}

	return &WebhookEvent{
		ID:      event.ID,
		Type:    event.Type,
		Created: event.Created,
		Data:    event.Data.Object,
	}, nil
}

// parseSignatureHeader splits "t=...,v1=...,v1=..." into its parts
func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignature
	}

	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return timestamp, signatures, nil
}
