package repository

import (
	"context"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// TourRepository tour data access interface
type TourRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Tour, error)
	FindAll(ctx context.Context, req *domain.TourListRequest, p *common.Pagination) ([]*domain.Tour, int64, error)
	CreateWithQuota(ctx context.Context, tour *domain.Tour) error
	Update(ctx context.Context, tour *domain.Tour) error
	DeleteWithQuota(ctx context.Context, tour *domain.Tour) error
	CountByHostID(ctx context.Context, hostID string) (int64, error)
}

type tourRepository struct {
	db *gorm.DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db *gorm.DB) TourRepository {
	return &tourRepository{db: db}
}

// FindByID finds a tour by ID with its host preloaded
func (r *tourRepository) FindByID(ctx context.Context, id string) (*domain.Tour, error) {
	var tour domain.Tour
	err := r.db.WithContext(ctx).Preload("Host").Where("id = ?", id).First(&tour).Error
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

// FindAll lists tours with filters and pagination
func (r *tourRepository) FindAll(ctx context.Context, req *domain.TourListRequest, p *common.Pagination) ([]*domain.Tour, int64, error) {
	var tours []*domain.Tour
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Tour{})

	if req.SearchTerm != "" {
		term := "%" + req.SearchTerm + "%"
		query = query.Where("title LIKE ? OR destination LIKE ? OR city LIKE ?", term, term, term)
	}
	if req.HostID != "" {
		query = query.Where("host_id = ?", req.HostID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.MinPrice != nil {
		query = query.Where("price >= ?", *req.MinPrice)
	}
	if req.MaxPrice != nil {
		query = query.Where("price <= ?", *req.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&tours).Error
	return tours, total, err
}

// CreateWithQuota creates a tour and claims one slot of the host's
// tour quota in the same transaction. The guarded UPDATE makes the
// quota check atomic under concurrent creates.
func (r *tourRepository) CreateWithQuota(ctx context.Context, tour *domain.Tour) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Host{}).
			Where("id = ? AND current_tour_count < tour_limit", tour.HostID).
			UpdateColumn("current_tour_count", gorm.Expr("current_tour_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return common.ErrTourLimitReached
		}
		return tx.Create(tour).Error
	})
}

// Update updates a tour
func (r *tourRepository) Update(ctx context.Context, tour *domain.Tour) error {
	return r.db.WithContext(ctx).Save(tour).Error
}

// DeleteWithQuota soft-deletes a tour and releases its quota slot
func (r *tourRepository) DeleteWithQuota(ctx context.Context, tour *domain.Tour) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(tour).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Host{}).
			Where("id = ? AND current_tour_count > 0", tour.HostID).
			UpdateColumn("current_tour_count", gorm.Expr("current_tour_count - 1")).Error
	})
}

// CountByHostID counts live tours owned by a host
func (r *tourRepository) CountByHostID(ctx context.Context, hostID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Tour{}).Where("host_id = ?", hostID).Count(&count).Error
	return count, err
}
