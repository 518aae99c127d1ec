package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/gateway"
	"github.com/roamly/roamly-backend/internal/repository"
	"gorm.io/gorm"
)

// PaymentService defines the business logic for one-off booking
// charges and payment history
type PaymentService interface {
	CreateBookingPaymentIntent(ctx context.Context, userID, bookingID string) (*domain.CreatePaymentIntentResponse, error)
	SyncPaymentStatus(ctx context.Context, id, userID string, role domain.UserRole) (*domain.Payment, error)
	GetPayment(ctx context.Context, id, userID string, role domain.UserRole) (*domain.Payment, error)
	ListMyPayments(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Payment, int64, error)
	ListPayments(ctx context.Context, req *domain.PaymentListRequest, p *common.Pagination) ([]*domain.Payment, int64, error)
}

type paymentService struct {
	payments repository.PaymentRepository
	bookings repository.BookingRepository
	gw       gateway.PaymentGateway
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(payments repository.PaymentRepository, bookings repository.BookingRepository, gw gateway.PaymentGateway) PaymentService {
	return &paymentService{payments: payments, bookings: bookings, gw: gw}
}

// CreateBookingPaymentIntent opens a charge for the caller's booking
// and hands the client secret to the frontend. The payment row starts
// PENDING; the webhook settles it.
func (s *paymentService) CreateBookingPaymentIntent(ctx context.Context, userID, bookingID string) (*domain.CreatePaymentIntentResponse, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBookingNotFound
		}
		return nil, err
	}
	if booking.UserID != userID {
		return nil, common.ErrForbidden
	}
	if booking.Status.IsTerminal() {
		return nil, common.ErrBookingClosed
	}

	amountCents := int64(math.Round(booking.TotalAmount * 100))
	intent, err := s.gw.CreatePaymentIntent(ctx, &gateway.PaymentIntentRequest{
		Amount:    amountCents,
		Currency:  "USD",
		BookingID: booking.ID,
		UserID:    userID,
	})
	if err != nil {
		return nil, gatewayError(err)
	}

	payment := &domain.Payment{
		UserID:        userID,
		BookingID:     &booking.ID,
		Type:          domain.PaymentTypeBooking,
		Status:        domain.PaymentStatusPending,
		Amount:        booking.TotalAmount,
		Currency:      "USD",
		TransactionID: intent.ID,
	}
	if err := s.payments.Upsert(ctx, payment); err != nil {
		return nil, err
	}

	return &domain.CreatePaymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		PaymentID:    payment.ID,
		Amount:       booking.TotalAmount,
		Currency:     "USD",
	}, nil
}

// SyncPaymentStatus polls the provider for the intent backing a
// payment and settles the local row when the webhook has not landed
// yet. Intents still in flight leave the row PENDING.
func (s *paymentService) SyncPaymentStatus(ctx context.Context, id, userID string, role domain.UserRole) (*domain.Payment, error) {
	payment, err := s.GetPayment(ctx, id, userID, role)
	if err != nil {
		return nil, err
	}
	if payment.Type != domain.PaymentTypeBooking || payment.TransactionID == "" {
		return nil, common.ErrInvalidInput
	}
	if payment.Status == domain.PaymentStatusCompleted {
		return payment, nil
	}

	intent, err := s.gw.GetPaymentIntent(ctx, payment.TransactionID)
	if err != nil {
		return nil, gatewayError(err)
	}

	switch intent.Status {
	case "succeeded":
		now := time.Now()
		payment.Status = domain.PaymentStatusCompleted
		payment.PaidAt = &now
		if err := s.payments.Update(ctx, payment); err != nil {
			return nil, err
		}
		if payment.BookingID != nil {
			if err := s.bookings.UpdatePaymentStatus(ctx, *payment.BookingID, domain.BookingPaymentCompleted); err != nil {
				return nil, err
			}
		}
	case "canceled":
		payment.Status = domain.PaymentStatusFailed
		payment.FailureReason = "payment intent canceled"
		if err := s.payments.Update(ctx, payment); err != nil {
			return nil, err
		}
		if payment.BookingID != nil {
			if err := s.bookings.UpdatePaymentStatus(ctx, *payment.BookingID, domain.BookingPaymentFailed); err != nil {
				return nil, err
			}
		}
	}
	return payment, nil
}

// GetPayment retrieves a payment visible to the caller
func (s *paymentService) GetPayment(ctx context.Context, id, userID string, role domain.UserRole) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID && role != domain.UserRoleAdmin {
		return nil, common.ErrForbidden
	}
	return payment, nil
}

// ListMyPayments lists the caller's payment history
func (s *paymentService) ListMyPayments(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Payment, int64, error) {
	return s.payments.FindByUserID(ctx, userID, p)
}

// ListPayments lists payments with filters (admin)
func (s *paymentService) ListPayments(ctx context.Context, req *domain.PaymentListRequest, p *common.Pagination) ([]*domain.Payment, int64, error) {
	return s.payments.FindAll(ctx, req, p)
}
