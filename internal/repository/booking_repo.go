package repository

import (
	"context"
	"time"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// BookingRepository booking data access interface. All operations that
// touch a tour's current_group_size run inside a transaction with a
// guarded atomic UPDATE so the counter can never overshoot capacity or
// go negative under concurrent writers.
type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	FindAll(ctx context.Context, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error)
	FindByTouristID(ctx context.Context, touristID string, p *common.Pagination) ([]*domain.Booking, int64, error)
	FindByHostID(ctx context.Context, hostID string, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error)
	ExistsActive(ctx context.Context, tourID, touristID string) (bool, error)

	Create(ctx context.Context, booking *domain.Booking) error
	UpdateParticipants(ctx context.Context, booking *domain.Booking, newCount int) error
	Cancel(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, booking *domain.Booking, newStatus domain.BookingStatus) error
	UpdatePaymentStatus(ctx context.Context, bookingID string, status domain.BookingPaymentStatus) error

	Stats(ctx context.Context, hostID string) (*domain.BookingStats, error)
	TouristStats(ctx context.Context, touristID string) (*domain.TouristBookingStats, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// FindByID finds a booking with its tour and tourist preloaded
func (r *bookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Tour").
		Preload("Tourist").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func applyBookingFilters(query *gorm.DB, req *domain.BookingListRequest) *gorm.DB {
	if req == nil {
		return query
	}
	if req.Status != "" {
		query = query.Where("bookings.status = ?", req.Status)
	}
	if req.PaymentStatus != "" {
		query = query.Where("bookings.payment_status = ?", req.PaymentStatus)
	}
	if req.TourID != "" {
		query = query.Where("bookings.tour_id = ?", req.TourID)
	}
	if req.MinPrice != nil {
		query = query.Where("bookings.total_amount >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil {
		query = query.Where("bookings.total_amount <= ?", *req.MaxPrice)
	}
	if req.StartDate != nil {
		query = query.Where("bookings.booking_date >= ?", *req.StartDate)
	}
	if req.EndDate != nil {
		query = query.Where("bookings.booking_date <= ?", *req.EndDate)
	}
	return query
}

// FindAll lists bookings with filters and pagination (admin scope)
func (r *bookingRepository) FindAll(ctx context.Context, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error) {
	var bookings []*domain.Booking
	var total int64

	query := applyBookingFilters(r.db.WithContext(ctx).Model(&domain.Booking{}), req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Tour").Preload("Tourist").
		Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&bookings).Error
	return bookings, total, err
}

// FindByTouristID lists a tourist's own bookings
func (r *bookingRepository) FindByTouristID(ctx context.Context, touristID string, p *common.Pagination) ([]*domain.Booking, int64, error) {
	var bookings []*domain.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("tourist_id = ?", touristID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Tour").
		Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&bookings).Error
	return bookings, total, err
}

// FindByHostID lists bookings across all tours owned by a host
func (r *bookingRepository) FindByHostID(ctx context.Context, hostID string, req *domain.BookingListRequest, p *common.Pagination) ([]*domain.Booking, int64, error) {
	var bookings []*domain.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Joins("JOIN tours ON tours.id = bookings.tour_id").
		Where("tours.host_id = ?", hostID)
	query = applyBookingFilters(query, req)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Tour").Preload("Tourist").
		Order("bookings." + p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&bookings).Error
	return bookings, total, err
}

// ExistsActive reports whether the tourist already holds a live
// (PENDING or CONFIRMED) booking for the tour
func (r *bookingRepository) ExistsActive(ctx context.Context, tourID, touristID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("tour_id = ? AND tourist_id = ? AND status IN ?", tourID, touristID,
			[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed}).
		Count(&count).Error
	return count > 0, err
}

// claimCapacity atomically adds delta seats to the tour's counter,
// failing when the guard would be violated. A positive delta is bounded
// above by max_group_size, a negative delta is bounded below by zero.
func claimCapacity(tx *gorm.DB, tourID string, delta int) error {
	if delta == 0 {
		return nil
	}
	guard := "current_group_size + ? <= max_group_size"
	if delta < 0 {
		guard = "current_group_size + ? >= 0"
	}
	res := tx.Model(&domain.Tour{}).
		Where("id = ? AND "+guard, tourID, delta).
		UpdateColumn("current_group_size", gorm.Expr("current_group_size + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta > 0 {
			return common.ErrCapacityExceeded
		}
		return common.ErrTourNotFound
	}
	return nil
}

// Create inserts the booking; a CONFIRMED booking claims capacity in
// the same transaction, a PENDING one does not touch the counter
func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.Status == domain.BookingStatusConfirmed {
			if err := claimCapacity(tx, booking.TourID, booking.NumberOfPeople); err != nil {
				return err
			}
		}
		return tx.Create(booking).Error
	})
}

// UpdateParticipants changes the party size; for a CONFIRMED booking
// the counter absorbs the difference atomically
func (r *bookingRepository) UpdateParticipants(ctx context.Context, booking *domain.Booking, newCount int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.Status == domain.BookingStatusConfirmed {
			if err := claimCapacity(tx, booking.TourID, newCount-booking.NumberOfPeople); err != nil {
				return err
			}
		}
		booking.NumberOfPeople = newCount
		return tx.Save(booking).Error
	})
}

// Cancel sets status CANCELLED and payment status REFUNDED, releasing
// capacity only when the booking was CONFIRMED. Idempotent: a booking
// already cancelled never decrements twice.
func (r *bookingRepository) Cancel(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wasConfirmed := booking.Status == domain.BookingStatusConfirmed
		if wasConfirmed {
			if err := claimCapacity(tx, booking.TourID, -booking.NumberOfPeople); err != nil {
				return err
			}
		}
		booking.Status = domain.BookingStatusCancelled
		booking.PaymentStatus = domain.BookingPaymentRefunded
		return tx.Save(booking).Error
	})
}

// Delete removes the booking row, releasing capacity iff CONFIRMED
func (r *bookingRepository) Delete(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.Status == domain.BookingStatusConfirmed {
			if err := claimCapacity(tx, booking.TourID, -booking.NumberOfPeople); err != nil {
				return err
			}
		}
		return tx.Delete(booking).Error
	})
}

// UpdateStatus applies a status transition, adjusting the counter for
// transitions into or out of CONFIRMED
func (r *bookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking, newStatus domain.BookingStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wasConfirmed := booking.Status == domain.BookingStatusConfirmed
		// COMPLETED keeps its seats; the tour has already run.
		nowHolds := newStatus == domain.BookingStatusConfirmed || newStatus == domain.BookingStatusCompleted

		switch {
		case !wasConfirmed && newStatus == domain.BookingStatusConfirmed:
			if err := claimCapacity(tx, booking.TourID, booking.NumberOfPeople); err != nil {
				return err
			}
		case wasConfirmed && !nowHolds:
			if err := claimCapacity(tx, booking.TourID, -booking.NumberOfPeople); err != nil {
				return err
			}
		}

		booking.Status = newStatus
		if newStatus == domain.BookingStatusCancelled {
			booking.PaymentStatus = domain.BookingPaymentRefunded
		}
		return tx.Save(booking).Error
	})
}

// UpdatePaymentStatus updates only the settlement state
func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID string, status domain.BookingPaymentStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Update("payment_status", status).Error
}

// Stats aggregates booking figures for a host's dashboard
func (r *bookingRepository) Stats(ctx context.Context, hostID string) (*domain.BookingStats, error) {
	stats := &domain.BookingStats{}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Booking{}).
			Joins("JOIN tours ON tours.id = bookings.tour_id").
			Where("tours.host_id = ?", hostID)
	}

	if err := base().Count(&stats.TotalBookings).Error; err != nil {
		return nil, err
	}

	counts := []struct {
		status domain.BookingStatus
		dest   *int64
	}{
		{domain.BookingStatusConfirmed, &stats.ConfirmedBookings},
		{domain.BookingStatusPending, &stats.PendingBookings},
		{domain.BookingStatusCancelled, &stats.CancelledBookings},
		{domain.BookingStatusCompleted, &stats.CompletedBookings},
	}
	for _, c := range counts {
		if err := base().Where("bookings.status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	if err := base().
		Where("bookings.status IN ?", []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusCompleted}).
		Select("COALESCE(SUM(bookings.total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("bookings.status = ? AND bookings.booking_date > ?", domain.BookingStatusConfirmed, time.Now()).
		Count(&stats.UpcomingBookings).Error; err != nil {
		return nil, err
	}

	if err := base().
		Select("DATE_FORMAT(bookings.booking_date, '%Y-%m') AS month, COUNT(*) AS count, COALESCE(SUM(bookings.total_amount), 0) AS revenue").
		Where("bookings.status IN ?", []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusCompleted}).
		Group("month").
		Order("month DESC").
		Limit(12).
		Scan(&stats.BookingsByMonth).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *bookingRepository) TouristStats(ctx context.Context, touristID string) (*domain.TouristBookingStats, error) {
	stats := &domain.TouristBookingStats{}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Booking{}).
			Where("tourist_id = ?", touristID)
	}

	if err := base().Count(&stats.TotalBookings).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("status = ? AND booking_date > ?", domain.BookingStatusConfirmed, time.Now()).
		Count(&stats.UpcomingTrips).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("status = ?", domain.BookingStatusCompleted).
		Count(&stats.CompletedTrips).Error; err != nil {
		return nil, err
	}

	if err := base().
		Where("status IN ?", []domain.BookingStatus{domain.BookingStatusConfirmed, domain.BookingStatusCompleted}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalSpent).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
