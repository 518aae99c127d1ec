package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	service service.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// UpdateStatusRequest booking status change payload
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
}

func bindBookingFilters(c *gin.Context) *domain.BookingListRequest {
	req := &domain.BookingListRequest{
		SearchTerm:    c.Query("search"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		TourID:        c.Query("tour_id"),
	}
	if val, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		req.MinPrice = &val
	}
	if val, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		req.MaxPrice = &val
	}
	if val, err := time.Parse(time.RFC3339, c.Query("start_date")); err == nil {
		req.StartDate = &val
	}
	if val, err := time.Parse(time.RFC3339, c.Query("end_date")); err == nil {
		req.EndDate = &val
	}
	return req
}

// CreateBooking handles POST /api/v1/bookings
// @Summary      Create a booking; CONFIRMED bookings claim tour capacity
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body domain.CreateBookingRequest true "booking payload"
// @Success      201 {object} common.APIResponse
// @Router       /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req domain.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, "Booking created", booking, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
// @Summary      Get a booking by ID
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Booking fetched", booking, nil)
}

// ListMyBookings handles GET /api/v1/bookings/me
// @Summary      List the authenticated tourist's bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /bookings/me [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	p := bindPagination(c)
	bookings, total, err := h.service.ListMyBookings(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Bookings fetched", bookings, listMeta(p, total))
}

// ListBookings handles GET /api/v1/admin/bookings
// @Summary      List all bookings with filters (admin only)
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	p := bindPagination(c)
	bookings, total, err := h.service.ListBookings(c.Request.Context(), bindBookingFilters(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Bookings fetched", bookings, listMeta(p, total))
}

// ListHostBookings handles GET /api/v1/host/bookings
// @Summary      List bookings across the authenticated host's tours
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/bookings [get]
func (h *BookingHandler) ListHostBookings(c *gin.Context) {
	p := bindPagination(c)
	bookings, total, err := h.service.ListHostBookings(c.Request.Context(), middleware.GetUserID(c), bindBookingFilters(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Bookings fetched", bookings, listMeta(p, total))
}

// UpdateBooking handles PUT /api/v1/bookings/:id
// @Summary      Update a booking; group size changes move tour capacity atomically
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Param        request body domain.UpdateBookingRequest true "fields to update"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id} [put]
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	var req domain.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	booking, err := h.service.UpdateBooking(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Booking updated", booking, nil)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
// @Summary      Cancel a booking; releases capacity once, safe to repeat
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.service.CancelBooking(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Booking cancelled", booking, nil)
}

// UpdateBookingStatus handles PATCH /api/v1/bookings/:id/status
// @Summary      Change booking status (owning host or admin)
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Param        request body UpdateStatusRequest true "new status"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	booking, err := h.service.UpdateBookingStatus(c.Request.Context(), c.Param("id"),
		middleware.GetUserID(c), middleware.GetUserRole(c), domain.BookingStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Booking status updated", booking, nil)
}

// DeleteBooking handles DELETE /api/v1/bookings/:id
// @Summary      Delete a booking record (owner or admin)
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "booking ID"
// @Success      200 {object} common.APIResponse
// @Router       /bookings/{id} [delete]
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	err := h.service.DeleteBooking(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Booking deleted", nil, nil)
}

// GetHostStats handles GET /api/v1/host/stats
// @Summary      Booking statistics for the authenticated host
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/stats [get]
func (h *BookingHandler) GetHostStats(c *gin.Context) {
	stats, err := h.service.GetHostStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Stats fetched", stats, nil)
}

// GetMyStats handles GET /api/v1/bookings/me/stats
// @Summary      Trip statistics for the authenticated tourist
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /bookings/me/stats [get]
func (h *BookingHandler) GetMyStats(c *gin.Context) {
	stats, err := h.service.GetTouristStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Stats fetched", stats, nil)
}
