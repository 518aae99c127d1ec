package repository

import (
	"context"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// BlogRepository blog data access interface
type BlogRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Blog, error)
	FindPublished(ctx context.Context, p *common.Pagination) ([]*domain.Blog, int64, error)
	FindByHostID(ctx context.Context, hostID string, p *common.Pagination) ([]*domain.Blog, int64, error)
	CountByHostID(ctx context.Context, hostID string) (int64, error)
	Create(ctx context.Context, blog *domain.Blog) error
	Update(ctx context.Context, blog *domain.Blog) error
	Delete(ctx context.Context, blog *domain.Blog) error
	IncrementViewCount(ctx context.Context, id string) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new BlogRepository
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

// FindByID finds a blog post with its host preloaded
func (r *blogRepository) FindByID(ctx context.Context, id string) (*domain.Blog, error) {
	var blog domain.Blog
	err := r.db.WithContext(ctx).Preload("Host").Where("id = ?", id).First(&blog).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindPublished lists published posts for public consumption
func (r *blogRepository) FindPublished(ctx context.Context, p *common.Pagination) ([]*domain.Blog, int64, error) {
	var blogs []*domain.Blog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Blog{}).
		Where("status = ?", domain.BlogStatusPublished)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Host").
		Order("published_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Find(&blogs).Error
	return blogs, total, err
}

// FindByHostID lists all of a host's posts including drafts
func (r *blogRepository) FindByHostID(ctx context.Context, hostID string, p *common.Pagination) ([]*domain.Blog, int64, error) {
	var blogs []*domain.Blog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Blog{}).Where("host_id = ?", hostID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&blogs).Error
	return blogs, total, err
}

// CountByHostID counts a host's live posts for quota checks
func (r *blogRepository) CountByHostID(ctx context.Context, hostID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Blog{}).Where("host_id = ?", hostID).Count(&count).Error
	return count, err
}

// Create creates a blog post
func (r *blogRepository) Create(ctx context.Context, blog *domain.Blog) error {
	return r.db.WithContext(ctx).Create(blog).Error
}

// Update updates a blog post
func (r *blogRepository) Update(ctx context.Context, blog *domain.Blog) error {
	return r.db.WithContext(ctx).Save(blog).Error
}

// Delete soft-deletes a blog post
func (r *blogRepository) Delete(ctx context.Context, blog *domain.Blog) error {
	return r.db.WithContext(ctx).Delete(blog).Error
}

// IncrementViewCount bumps the view counter without racing readers
func (r *blogRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
