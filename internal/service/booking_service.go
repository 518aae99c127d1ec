package service

import (
	"context"
	"errors"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/repository"
	"gorm.io/gorm"
)

// BookingService defines the business logic for the booking ledger
type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *domain.CreateBookingRequest) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error)
	ListMyBookings(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Booking, int64, error)
	ListHostBookings(ctx context.Context, userID string, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error)

	UpdateBooking(ctx context.Context, id, userID string, req *domain.UpdateBookingRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id, userID string) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, id, userID string, role domain.UserRole) error
	UpdateBookingStatus(ctx context.Context, id, userID string, role domain.UserRole, status domain.BookingStatus) (*domain.Booking, error)

	GetHostStats(ctx context.Context, userID string) (*domain.BookingStats, error)
	GetTouristStats(ctx context.Context, userID string) (*domain.TouristBookingStats, error)
}

type bookingService struct {
	bookings repository.BookingRepository
	tours    repository.TourRepository
	users    repository.UserRepository
}

// NewBookingService creates a new BookingService
func NewBookingService(bookings repository.BookingRepository, tours repository.TourRepository, users repository.UserRepository) BookingService {
	return &bookingService{bookings: bookings, tours: tours, users: users}
}

// CreateBooking books a tour for the calling tourist. A request may
// land as PENDING or directly CONFIRMED; only the latter claims
// capacity.
func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	tourist, err := s.users.FindTouristByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTouristNotFound
		}
		return nil, err
	}

	tour, err := s.tours.FindByID(ctx, req.TourID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTourNotFound
		}
		return nil, err
	}

	exists, err := s.bookings.ExistsActive(ctx, tour.ID, tourist.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrDuplicateBooking
	}

	status := domain.BookingStatusPending
	if req.Status == string(domain.BookingStatusConfirmed) {
		status = domain.BookingStatusConfirmed
	}

	bookingDate := time.Now()
	if tour.StartDate != nil {
		bookingDate = *tour.StartDate
	}

	booking := &domain.Booking{
		TourID:          tour.ID,
		UserID:          userID,
		TouristID:       tourist.ID,
		NumberOfPeople:  req.NumberOfPeople,
		TotalAmount:     req.TotalAmount,
		SpecialRequests: req.SpecialRequests,
		Status:          status,
		PaymentStatus:   domain.BookingPaymentPending,
		BookingDate:     bookingDate,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, booking.ID)
}

// GetBooking retrieves a booking
func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// ListBookings lists bookings with filters (admin scope)
func (s *bookingService) ListBookings(ctx context.Context, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error) {
	return s.bookings.FindAll(ctx, req, p)
}

// ListMyBookings lists the calling tourist's bookings
func (s *bookingService) ListMyBookings(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Booking, int64, error) {
	tourist, err := s.users.FindTouristByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrTouristNotFound
		}
		return nil, 0, err
	}
	return s.bookings.FindByTouristID(ctx, tourist.ID, p)
}

// ListHostBookings lists bookings across the calling host's tours
func (s *bookingService) ListHostBookings(ctx context.Context, userID string, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrHostNotFound
		}
		return nil, 0, err
	}
	return s.bookings.FindByHostID(ctx, host.ID, req, p)
}

// UpdateBooking changes the party size or special requests on a live
// booking owned by the caller
func (s *bookingService) UpdateBooking(ctx context.Context, id, userID string, req *domain.UpdateBookingRequest) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, common.ErrForbidden
	}
	if booking.Status.IsTerminal() {
		return nil, common.ErrBookingClosed
	}

	if req.SpecialRequests != nil {
		booking.SpecialRequests = *req.SpecialRequests
	}

	newCount := booking.NumberOfPeople
	if req.NumberOfPeople != nil {
		newCount = *req.NumberOfPeople
	}
	if newCount != booking.NumberOfPeople && booking.Tour != nil {
		booking.TotalAmount = booking.Tour.Price * float64(newCount)
	}

	if err := s.bookings.UpdateParticipants(ctx, booking, newCount); err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, booking.ID)
}

// CancelBooking cancels the caller's booking, marking the payment
// refunded and releasing capacity when it was confirmed. A second
// cancel is rejected rather than silently absorbed.
func (s *bookingService) CancelBooking(ctx context.Context, id, userID string) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, common.ErrForbidden
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, common.ErrBookingAlreadyCancelled
	}
	if booking.Status == domain.BookingStatusCompleted {
		return nil, common.ErrBookingAlreadyCompleted
	}

	if err := s.bookings.Cancel(ctx, booking); err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, booking.ID)
}

// DeleteBooking removes a booking row. Owners may delete their own;
// admins may delete any.
func (s *bookingService) DeleteBooking(ctx context.Context, id, userID string, role domain.UserRole) error {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if booking.UserID != userID && role != domain.UserRoleAdmin {
		return common.ErrForbidden
	}
	return s.bookings.Delete(ctx, booking)
}

// UpdateBookingStatus applies a host or admin status transition
func (s *bookingService) UpdateBookingStatus(ctx context.Context, id, userID string, role domain.UserRole, status domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != domain.UserRoleAdmin {
		host, err := s.users.FindHostByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, common.ErrForbidden
			}
			return nil, err
		}
		if booking.Tour == nil || booking.Tour.HostID != host.ID {
			return nil, common.ErrForbidden
		}
	}

	if booking.Status == status {
		return booking, nil
	}
	// Terminal bookings stay terminal; reopening one would mutate the
	// group-size counter a second time.
	if booking.Status.IsTerminal() {
		return nil, common.ErrBookingClosed
	}

	if err := s.bookings.UpdateStatus(ctx, booking, status); err != nil {
		return nil, err
	}
	return s.bookings.FindByID(ctx, booking.ID)
}

// GetHostStats aggregates booking figures for the calling host
func (s *bookingService) GetHostStats(ctx context.Context, userID string) (*domain.BookingStats, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrHostNotFound
		}
		return nil, err
	}
	return s.bookings.Stats(ctx, host.ID)
}

func (s *bookingService) GetTouristStats(ctx context.Context, userID string) (*domain.TouristBookingStats, error) {
	tourist, err := s.users.FindTouristByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTouristNotFound
		}
		return nil, err
	}
	return s.bookings.TouristStats(ctx, tourist.ID)
}
