package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
)

// TourHandler handles tour listing endpoints
type TourHandler struct {
	service service.TourService
}

// NewTourHandler creates a new TourHandler
func NewTourHandler(service service.TourService) *TourHandler {
	return &TourHandler{service: service}
}

// ListTours handles GET /api/v1/tours
// @Summary      List published tours
// @Tags         tours
// @Produce      json
// @Param        search query string false "search in title and destination"
// @Param        min_price query number false "minimum price"
// @Param        max_price query number false "maximum price"
// @Success      200 {object} common.APIResponse
// @Router       /tours [get]
func (h *TourHandler) ListTours(c *gin.Context) {
	req := &domain.TourListRequest{
		SearchTerm: c.Query("search"),
		HostID:     c.Query("host_id"),
		Status:     c.Query("status"),
	}
	if val, err := strconv.ParseFloat(c.Query("min_price"), 64); err == nil {
		req.MinPrice = &val
	}
	if val, err := strconv.ParseFloat(c.Query("max_price"), 64); err == nil {
		req.MaxPrice = &val
	}

	p := bindPagination(c)
	tours, total, err := h.service.ListTours(c.Request.Context(), req, p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Tours fetched", tours, listMeta(p, total))
}

// GetTour handles GET /api/v1/tours/:id
// @Summary      Get a tour by ID
// @Tags         tours
// @Produce      json
// @Param        id path string true "tour ID"
// @Success      200 {object} common.APIResponse
// @Router       /tours/{id} [get]
func (h *TourHandler) GetTour(c *gin.Context) {
	tour, err := h.service.GetTour(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Tour fetched", tour, nil)
}

// CreateTour handles POST /api/v1/host/tours
// @Summary      Create a tour (host only, counted against the plan quota)
// @Tags         tours
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body domain.CreateTourRequest true "tour payload"
// @Success      201 {object} common.APIResponse
// @Router       /host/tours [post]
func (h *TourHandler) CreateTour(c *gin.Context) {
	var req domain.CreateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tour, err := h.service.CreateTour(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusCreated, "Tour created", tour, nil)
}

// ListMyTours handles GET /api/v1/host/tours
// @Summary      List the authenticated host's tours
// @Tags         tours
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} common.APIResponse
// @Router       /host/tours [get]
func (h *TourHandler) ListMyTours(c *gin.Context) {
	p := bindPagination(c)
	tours, total, err := h.service.ListMyTours(c.Request.Context(), middleware.GetUserID(c), p)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Tours fetched", tours, listMeta(p, total))
}

// UpdateTour handles PUT /api/v1/host/tours/:id
// @Summary      Update a tour (owner only)
// @Tags         tours
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "tour ID"
// @Param        request body domain.UpdateTourRequest true "fields to update"
// @Success      200 {object} common.APIResponse
// @Router       /host/tours/{id} [put]
func (h *TourHandler) UpdateTour(c *gin.Context) {
	var req domain.UpdateTourRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tour, err := h.service.UpdateTour(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Tour updated", tour, nil)
}

// DeleteTour handles DELETE /api/v1/host/tours/:id
// @Summary      Delete a tour and release its quota slot
// @Tags         tours
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "tour ID"
// @Success      200 {object} common.APIResponse
// @Router       /host/tours/{id} [delete]
func (h *TourHandler) DeleteTour(c *gin.Context) {
	err := h.service.DeleteTour(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	common.SuccessResponse(c, http.StatusOK, "Tour deleted", nil, nil)
}
