package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// Tour errors
	ErrTourNotFound     = errors.New("tour not found")
	ErrTourLimitReached = errors.New("tour limit reached for current plan")

	// Blog errors
	ErrBlogNotFound     = errors.New("blog post not found")
	ErrBlogLimitReached = errors.New("blog post limit reached for current plan")

	// Booking errors
	ErrBookingNotFound         = errors.New("booking not found")
	ErrDuplicateBooking        = errors.New("you already have a booking for this tour")
	ErrCapacityExceeded        = errors.New("tour capacity exceeded")
	ErrBookingClosed           = errors.New("booking can no longer be modified")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrBookingAlreadyCompleted = errors.New("booking is already completed")

	// Subscription errors
	ErrPlanNotFound            = errors.New("subscription plan not found")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrSubscriptionExists      = errors.New("an active subscription already exists")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

	// Payment errors
	ErrPaymentNotFound = errors.New("payment not found")
	ErrGateway         = errors.New("payment gateway error")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrHostNotFound      = errors.New("host not found")
	ErrTouristNotFound   = errors.New("tourist not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
