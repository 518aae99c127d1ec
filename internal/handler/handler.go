package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/common"
)

// bindPagination reads page/limit/sort query params into a Pagination
func bindPagination(c *gin.Context) *common.Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	return &common.Pagination{
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
}

// respondServiceError maps service sentinel errors to HTTP responses
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Access denied", err)
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrTourNotFound),
		errors.Is(err, common.ErrBookingNotFound),
		errors.Is(err, common.ErrBlogNotFound),
		errors.Is(err, common.ErrPlanNotFound),
		errors.Is(err, common.ErrSubscriptionNotFound),
		errors.Is(err, common.ErrPaymentNotFound),
		errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrHostNotFound),
		errors.Is(err, common.ErrTouristNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrUserAlreadyExists),
		errors.Is(err, common.ErrDuplicateBooking),
		errors.Is(err, common.ErrSubscriptionExists),
		errors.Is(err, common.ErrCapacityExceeded),
		errors.Is(err, common.ErrTourLimitReached),
		errors.Is(err, common.ErrBlogLimitReached),
		errors.Is(err, common.ErrBookingClosed),
		errors.Is(err, common.ErrBookingAlreadyCancelled),
		errors.Is(err, common.ErrBookingAlreadyCompleted):
		common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, common.ErrGateway):
		common.ErrorResponse(c, http.StatusBadGateway, "Payment provider unavailable", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// listMeta builds pagination metadata for list responses
func listMeta(p *common.Pagination, total int64) *common.Meta {
	return &common.Meta{Page: p.Page, Limit: p.Limit, Total: total}
}
