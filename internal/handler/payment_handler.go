package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	service service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreateBookingPaymentIntent handles POST /api/v1/bookings/:id/payment-intent
// @Summary      Create a payment intent for a booking
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id}/payment-intent [post]
func (h *PaymentHandler) CreateBookingPaymentIntent(c *gin.Context) {
	resp, err := h.service.CreateBookingPaymentIntent(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Payment intent created", resp, nil)
}

// SyncPaymentStatus handles POST /api/v1/payments/:id/sync
// @Summary      Poll the provider and settle a pending payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "payment ID"
// @Success      200 {object} common.APIResponse
// @Router       /payments/{id}/sync [post]
func (h *PaymentHandler) SyncPaymentStatus(c *gin.Context) {
	payment, err := h.service.SyncPaymentStatus(c.Request.Context(), c.Param("id"),
		middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Payment synced", payment, nil)
}

// GetPayment handles GET /api/v1/payments/:id
// @Summary      Get a payment by ID (owner or admin)
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "payment ID"
// @Success      200 {object} common.APIResponse
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.service.GetPayment(c.Request.Context(), c.Param("id"),
		middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Payment fetched", payment, nil)
}

// ListMyPayments handles GET /api/v1/payments/me
// @Summary      List the authenticated user's payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /payments/me [get]
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	p := bindPagination(c)
	payments, total, err := h.service.ListMyPayments(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Payments fetched", payments, listMeta(p, total))
}

// ListPayments handles GET /api/v1/admin/payments
// @Summary      List all payments with filters (admin only)
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "payment status"
// @Param        type query string false "payment type"
// @Success      200 {object} common.APIResponse
// @Router       /admin/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	req := &domain.PaymentListRequest{
		Status: c.Query("status"),
		Type:   c.Query("type"),
		UserID: c.Query("user_id"),
	}

	p := bindPagination(c)
	payments, total, err := h.service.ListPayments(c.Request.Context(), req, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Payments fetched", payments, listMeta(p, total))
}
