package service

import (
	"context"
	"errors"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/repository"
	"gorm.io/gorm"
)

// TourService defines the business logic for tours
type TourService interface {
	CreateTour(ctx context.Context, userID string, req *domain.CreateTourRequest) (*domain.Tour, error)
	GetTour(ctx context.Context, id string) (*domain.Tour, error)
	ListTours(ctx context.Context, req *domain.TourListRequest, p *common.Pagination) ([]*domain.Tour, int64, error)
	ListMyTours(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Tour, int64, error)
	UpdateTour(ctx context.Context, id, userID string, req *domain.UpdateTourRequest) (*domain.Tour, error)
	DeleteTour(ctx context.Context, id, userID string, role domain.UserRole) error
}

type tourService struct {
	tours repository.TourRepository
	users repository.UserRepository
}

// NewTourService creates a new TourService
func NewTourService(tours repository.TourRepository, users repository.UserRepository) TourService {
	return &tourService{tours: tours, users: users}
}

// CreateTour creates a tour for the calling host, claiming one slot of
// the plan quota atomically
func (s *tourService) CreateTour(ctx context.Context, userID string, req *domain.CreateTourRequest) (*domain.Tour, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrHostNotFound
		}
		return nil, err
	}

	tour := &domain.Tour{
		HostID:       host.ID,
		Title:        req.Title,
		Description:  req.Description,
		Destination:  req.Destination,
		City:         req.City,
		Price:        req.Price,
		Status:       domain.TourStatusPublished,
		MaxGroupSize: req.MaxGroupSize,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}

	if err := s.tours.CreateWithQuota(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// GetTour retrieves a tour
func (s *tourService) GetTour(ctx context.Context, id string) (*domain.Tour, error) {
	tour, err := s.tours.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrTourNotFound
		}
		return nil, err
	}
	return tour, nil
}

// ListTours lists published tours with filters
func (s *tourService) ListTours(ctx context.Context, req *domain.TourListRequest, p *common.Pagination) ([]*domain.Tour, int64, error) {
	if req.Status == "" {
		req.Status = string(domain.TourStatusPublished)
	}
	return s.tours.FindAll(ctx, req, p)
}

// ListMyTours lists the calling host's tours in any state
func (s *tourService) ListMyTours(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Tour, int64, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrHostNotFound
		}
		return nil, 0, err
	}
	return s.tours.FindAll(ctx, &domain.TourListRequest{HostID: host.ID}, p)
}

// UpdateTour updates a tour owned by the caller. MaxGroupSize can
// never drop below the seats already confirmed.
func (s *tourService) UpdateTour(ctx context.Context, id, userID string, req *domain.UpdateTourRequest) (*domain.Tour, error) {
	tour, err := s.GetTour(ctx, id)
	if err != nil {
		return nil, err
	}

	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrForbidden
		}
		return nil, err
	}
	if tour.HostID != host.ID {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		tour.Title = *req.Title
	}
	if req.Description != nil {
		tour.Description = *req.Description
	}
	if req.Destination != nil {
		tour.Destination = *req.Destination
	}
	if req.City != nil {
		tour.City = *req.City
	}
	if req.Price != nil {
		tour.Price = *req.Price
	}
	if req.MaxGroupSize != nil {
		if *req.MaxGroupSize < tour.CurrentGroupSize {
			return nil, common.ErrCapacityExceeded
		}
		tour.MaxGroupSize = *req.MaxGroupSize
	}
	if req.Status != nil {
		tour.Status = domain.TourStatus(*req.Status)
	}
	if req.StartDate != nil {
		tour.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		tour.EndDate = req.EndDate
	}

	if err := s.tours.Update(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// DeleteTour soft-deletes a tour and releases its quota slot
func (s *tourService) DeleteTour(ctx context.Context, id, userID string, role domain.UserRole) error {
	tour, err := s.GetTour(ctx, id)
	if err != nil {
		return err
	}

	if role != domain.UserRoleAdmin {
		host, err := s.users.FindHostByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrForbidden
			}
			return err
		}
		if tour.HostID != host.ID {
			return common.ErrForbidden
		}
	}

	return s.tours.DeleteWithQuota(ctx, tour)
}
