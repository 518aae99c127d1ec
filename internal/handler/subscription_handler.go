package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
)

// SubscriptionHandler handles subscription plan and checkout endpoints
type SubscriptionHandler struct {
	service service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler
func NewSubscriptionHandler(service service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// SubscribeRequest checkout initiation payload
type SubscribeRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

// ListPlans handles GET /api/v1/plans
// @Summary      List active subscription plans
// @Tags         subscriptions
// @Produce      json
// @Success      200 {object} common.APIResponse
// @Router       /plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Plans fetched", plans, nil)
}

// GetPlan handles GET /api/v1/plans/:id
// @Summary      Get a subscription plan by ID
// @Tags         subscriptions
// @Produce      json
// @Param        id path string true "plan ID"
// @Success      200 {object} common.APIResponse
// @Router       /plans/{id} [get]
func (h *SubscriptionHandler) GetPlan(c *gin.Context) {
	plan, err := h.service.GetPlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Plan fetched", plan, nil)
}

// CreatePlan handles POST /api/v1/admin/plans
// @Summary      Create a subscription plan (admin only)
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body domain.CreatePlanRequest true "plan payload"
// @Success      201 {object} common.APIResponse
// @Router       /admin/plans [post]
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req domain.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, "Plan created", plan, nil)
}

// UpdatePlan handles PUT /api/v1/admin/plans/:id
// @Summary      Update a subscription plan (admin only)
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "plan ID"
// @Param        request body domain.UpdatePlanRequest true "fields to update"
// @Success      200 {object} common.APIResponse
// @Router       /admin/plans/{id} [put]
func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	var req domain.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	plan, err := h.service.UpdatePlan(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Plan updated", plan, nil)
}

// DeactivatePlan handles DELETE /api/v1/admin/plans/:id
// @Summary      Deactivate a plan; existing subscribers keep their entitlements
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "plan ID"
// @Success      200 {object} common.APIResponse
// @Router       /admin/plans/{id} [delete]
func (h *SubscriptionHandler) DeactivatePlan(c *gin.Context) {
	plan, err := h.service.DeactivatePlan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Plan deactivated", plan, nil)
}

// Subscribe handles POST /api/v1/host/subscription
// @Summary      Start a checkout session for a plan (host only)
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubscribeRequest true "plan selection"
// @Success      200 {object} common.APIResponse
// @Router       /host/subscription [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Subscribe(c.Request.Context(), middleware.GetUserID(c), req.PlanID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Checkout session created", resp, nil)
}

// VerifySession handles POST /api/v1/host/subscription/verify
// @Summary      Verify a completed checkout session and activate the subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body domain.VerifySessionRequest true "session to verify"
// @Success      200 {object} common.APIResponse
// @Router       /host/subscription/verify [post]
func (h *SubscriptionHandler) VerifySession(c *gin.Context) {
	var req domain.VerifySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sub, err := h.service.VerifySession(c.Request.Context(), middleware.GetUserID(c), req.SessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Subscription active", sub, nil)
}

// GetMySubscription handles GET /api/v1/host/subscription
// @Summary      Get the authenticated host's current subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/subscription [get]
func (h *SubscriptionHandler) GetMySubscription(c *gin.Context) {
	sub, err := h.service.GetMySubscription(c.Request.Context(), middleware.GetUserID(c))
	if errors.Is(err, common.ErrSubscriptionNotFound) {
		// Free tier; not an error
		common.SuccessResponse(c, http.StatusOK, "No active subscription", nil, nil)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Subscription fetched", sub, nil)
}

// CancelSubscription handles DELETE /api/v1/host/subscription
// @Summary      Cancel at period end; paid entitlements survive until then
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/subscription [delete]
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	sub, err := h.service.CancelSubscription(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Subscription cancelled", sub, nil)
}

// CreateBillingPortal handles POST /api/v1/host/subscription/portal
// @Summary      Create a billing portal session for payment method management
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/subscription/portal [post]
func (h *SubscriptionHandler) CreateBillingPortal(c *gin.Context) {
	url, err := h.service.CreateBillingPortal(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Portal session created", gin.H{"portal_url": url}, nil)
}

// GetAnalytics handles GET /api/v1/admin/subscriptions/analytics
// @Summary      Subscription analytics (admin only)
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /admin/subscriptions/analytics [get]
func (h *SubscriptionHandler) GetAnalytics(c *gin.Context) {
	analytics, err := h.service.GetAnalytics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Analytics fetched", analytics, nil)
}

// ListSubscriptions handles GET /api/v1/admin/subscriptions
// @Summary      List all subscriptions (admin only)
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /admin/subscriptions [get]
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	p := bindPagination(c)
	subs, total, err := h.service.ListSubscriptions(c.Request.Context(), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Subscriptions fetched", subs, listMeta(p, total))
}

// ExpireSweep handles POST /api/v1/admin/subscriptions/expire-sweep
// @Summary      Expire lapsed subscriptions immediately instead of waiting for the hourly sweep
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /admin/subscriptions/expire-sweep [post]
func (h *SubscriptionHandler) ExpireSweep(c *gin.Context) {
	n, err := h.service.ExpireLapsedSubscriptions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Sweep completed", gin.H{"expired": n}, nil)
}

// Webhook handles POST /api/v1/webhooks/stripe
// Signature failures return 400 so the provider retries; handler-level
// failures after verification still return 200 to stop redelivery storms.
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		middleware.CountWebhookEvent("read_error")
		c.Status(http.StatusBadRequest)
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, common.ErrInvalidWebhookSignature) {
		middleware.CountWebhookEvent("bad_signature")
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		middleware.CountWebhookEvent("error")
		c.Status(http.StatusInternalServerError)
		return
	}

	middleware.CountWebhookEvent("ok")
	c.Status(http.StatusOK)
}
