package service

import (
	"context"
	"testing"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBookingFixtures() (*MockBookingRepository, *MockTourRepository, *MockUserRepository, BookingService) {
	bookings := new(MockBookingRepository)
	tours := new(MockTourRepository)
	users := new(MockUserRepository)
	svc := NewBookingService(bookings, tours, users)
	return bookings, tours, users, svc
}

func TestCreateBooking_ConfirmedClaimsCapacity(t *testing.T) {
	bookings, tours, users, svc := newBookingFixtures()
	ctx := context.Background()

	tour := &domain.Tour{ID: "tour-1", HostID: "host-1", Price: 100, MaxGroupSize: 10}
	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1", UserID: "user-1"}, nil)
	tours.On("FindByID", ctx, "tour-1").Return(tour, nil)
	bookings.On("ExistsActive", ctx, "tour-1", "tourist-1").Return(false, nil)
	bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusConfirmed &&
			b.PaymentStatus == domain.BookingPaymentPending &&
			b.NumberOfPeople == 3
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Booking).ID = "booking-1"
	})
	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{ID: "booking-1", Status: domain.BookingStatusConfirmed}, nil)

	booking, err := svc.CreateBooking(ctx, "user-1", &domain.CreateBookingRequest{
		TourID:         "tour-1",
		NumberOfPeople: 3,
		TotalAmount:    300,
		Status:         "CONFIRMED",
	})
	require.NoError(t, err)
	assert.Equal(t, "booking-1", booking.ID)
	bookings.AssertExpectations(t)
}

func TestCreateBooking_DefaultsToPending(t *testing.T) {
	bookings, tours, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1"}, nil)
	tours.On("FindByID", ctx, "tour-1").Return(&domain.Tour{ID: "tour-1"}, nil)
	bookings.On("ExistsActive", ctx, "tour-1", "tourist-1").Return(false, nil)
	bookings.On("Create", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.Status == domain.BookingStatusPending
	})).Return(nil)
	bookings.On("FindByID", ctx, mock.Anything).Return(&domain.Booking{Status: domain.BookingStatusPending}, nil)

	booking, err := svc.CreateBooking(ctx, "user-1", &domain.CreateBookingRequest{
		TourID:         "tour-1",
		NumberOfPeople: 2,
		TotalAmount:    200,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
}

func TestCreateBooking_Duplicate(t *testing.T) {
	bookings, tours, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1"}, nil)
	tours.On("FindByID", ctx, "tour-1").Return(&domain.Tour{ID: "tour-1"}, nil)
	bookings.On("ExistsActive", ctx, "tour-1", "tourist-1").Return(true, nil)

	_, err := svc.CreateBooking(ctx, "user-1", &domain.CreateBookingRequest{
		TourID:         "tour-1",
		NumberOfPeople: 2,
	})
	assert.ErrorIs(t, err, common.ErrDuplicateBooking)
	bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_CapacityExceeded(t *testing.T) {
	bookings, tours, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1"}, nil)
	tours.On("FindByID", ctx, "tour-1").Return(&domain.Tour{ID: "tour-1", MaxGroupSize: 5}, nil)
	bookings.On("ExistsActive", ctx, "tour-1", "tourist-1").Return(false, nil)
	bookings.On("Create", ctx, mock.Anything).Return(common.ErrCapacityExceeded)

	_, err := svc.CreateBooking(ctx, "user-1", &domain.CreateBookingRequest{
		TourID:         "tour-1",
		NumberOfPeople: 6,
		Status:         "CONFIRMED",
	})
	assert.ErrorIs(t, err, common.ErrCapacityExceeded)
}

func TestCreateBooking_TourNotFound(t *testing.T) {
	_, tours, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1"}, nil)
	tours.On("FindByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.CreateBooking(ctx, "user-1", &domain.CreateBookingRequest{TourID: "missing", NumberOfPeople: 1})
	assert.ErrorIs(t, err, common.ErrTourNotFound)
}

func TestUpdateBooking_RecomputesAmount(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	existing := &domain.Booking{
		ID:             "booking-1",
		UserID:         "user-1",
		NumberOfPeople: 2,
		TotalAmount:    200,
		Status:         domain.BookingStatusConfirmed,
		Tour:           &domain.Tour{ID: "tour-1", Price: 100},
	}
	bookings.On("FindByID", ctx, "booking-1").Return(existing, nil)
	bookings.On("UpdateParticipants", ctx, mock.MatchedBy(func(b *domain.Booking) bool {
		return b.TotalAmount == 500
	}), 5).Return(nil)

	five := 5
	_, err := svc.UpdateBooking(ctx, "booking-1", "user-1", &domain.UpdateBookingRequest{NumberOfPeople: &five})
	require.NoError(t, err)
	bookings.AssertExpectations(t)
}

func TestUpdateBooking_NotOwner(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{ID: "booking-1", UserID: "someone-else"}, nil)

	_, err := svc.UpdateBooking(ctx, "booking-1", "user-1", &domain.UpdateBookingRequest{})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdateBooking_TerminalState(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
		ID:     "booking-1",
		UserID: "user-1",
		Status: domain.BookingStatusCancelled,
	}, nil)

	_, err := svc.UpdateBooking(ctx, "booking-1", "user-1", &domain.UpdateBookingRequest{})
	assert.ErrorIs(t, err, common.ErrBookingClosed)
}

func TestCancelBooking_Confirmed(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	existing := &domain.Booking{
		ID:             "booking-1",
		UserID:         "user-1",
		TourID:         "tour-1",
		NumberOfPeople: 3,
		Status:         domain.BookingStatusConfirmed,
	}
	bookings.On("FindByID", ctx, "booking-1").Return(existing, nil).Once()
	bookings.On("Cancel", ctx, existing).Return(nil)
	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
		ID:            "booking-1",
		Status:        domain.BookingStatusCancelled,
		PaymentStatus: domain.BookingPaymentRefunded,
	}, nil)

	booking, err := svc.CancelBooking(ctx, "booking-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	assert.Equal(t, domain.BookingPaymentRefunded, booking.PaymentStatus)
}

func TestCancelBooking_AlreadyCancelledRejected(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
		ID:     "booking-1",
		UserID: "user-1",
		Status: domain.BookingStatusCancelled,
	}, nil)

	_, err := svc.CancelBooking(ctx, "booking-1", "user-1")
	assert.ErrorIs(t, err, common.ErrBookingAlreadyCancelled)
	bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestCancelBooking_CompletedRejected(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
		ID:     "booking-1",
		UserID: "user-1",
		Status: domain.BookingStatusCompleted,
	}, nil)

	_, err := svc.CancelBooking(ctx, "booking-1", "user-1")
	assert.ErrorIs(t, err, common.ErrBookingAlreadyCompleted)
	bookings.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestUpdateBookingStatus_HostOwnsTour(t *testing.T) {
	bookings, _, users, svc := newBookingFixtures()
	ctx := context.Background()

	existing := &domain.Booking{
		ID:     "booking-1",
		Status: domain.BookingStatusPending,
		Tour:   &domain.Tour{ID: "tour-1", HostID: "host-1"},
	}
	users.On("FindHostByUserID", ctx, "host-user").Return(&domain.Host{ID: "host-1"}, nil)
	bookings.On("FindByID", ctx, "booking-1").Return(existing, nil).Once()
	bookings.On("UpdateStatus", ctx, existing, domain.BookingStatusConfirmed).Return(nil)
	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{ID: "booking-1", Status: domain.BookingStatusConfirmed}, nil)

	booking, err := svc.UpdateBookingStatus(ctx, "booking-1", "host-user", domain.UserRoleHost, domain.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
}

func TestUpdateBookingStatus_ForeignHostRejected(t *testing.T) {
	bookings, _, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindHostByUserID", ctx, "host-user").Return(&domain.Host{ID: "host-2"}, nil)
	bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
		ID:   "booking-1",
		Tour: &domain.Tour{ID: "tour-1", HostID: "host-1"},
	}, nil)

	_, err := svc.UpdateBookingStatus(ctx, "booking-1", "host-user", domain.UserRoleHost, domain.BookingStatusConfirmed)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestUpdateBookingStatus_TerminalBookingRejected(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	// Re-confirming a cancelled booking would claim tour capacity a
	// second time; completed bookings must not be cancellable either.
	for _, terminal := range []domain.BookingStatus{
		domain.BookingStatusCancelled,
		domain.BookingStatusCompleted,
	} {
		bookings.On("FindByID", ctx, "booking-1").Return(&domain.Booking{
			ID:     "booking-1",
			Status: terminal,
			Tour:   &domain.Tour{ID: "tour-1", HostID: "host-1"},
		}, nil).Once()

		next := domain.BookingStatusConfirmed
		if terminal == domain.BookingStatusCompleted {
			next = domain.BookingStatusCancelled
		}
		_, err := svc.UpdateBookingStatus(ctx, "booking-1", "admin-user", domain.UserRoleAdmin, next)
		assert.ErrorIs(t, err, common.ErrBookingClosed)
	}
	bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteBooking_AdminOverride(t *testing.T) {
	bookings, _, _, svc := newBookingFixtures()
	ctx := context.Background()

	existing := &domain.Booking{ID: "booking-1", UserID: "someone-else"}
	bookings.On("FindByID", ctx, "booking-1").Return(existing, nil)
	bookings.On("Delete", ctx, existing).Return(nil)

	err := svc.DeleteBooking(ctx, "booking-1", "admin-user", domain.UserRoleAdmin)
	require.NoError(t, err)
}

func TestGetTouristStats(t *testing.T) {
	bookings, _, users, svc := newBookingFixtures()
	ctx := context.Background()

	users.On("FindTouristByUserID", ctx, "user-1").Return(&domain.Tourist{ID: "tourist-1"}, nil)
	bookings.On("TouristStats", ctx, "tourist-1").Return(&domain.TouristBookingStats{
		TotalBookings:  3,
		UpcomingTrips:  1,
		CompletedTrips: 2,
		TotalSpent:     450,
	}, nil)

	stats, err := svc.GetTouristStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UpcomingTrips)
	assert.Equal(t, 450.0, stats.TotalSpent)
}
