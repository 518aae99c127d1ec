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

// BlogService defines the business logic for host blog posts
type BlogService interface {
	CreateBlog(ctx context.Context, userID string, req *domain.CreateBlogRequest) (*domain.Blog, error)
	GetBlog(ctx context.Context, id string) (*domain.Blog, error)
	ListPublished(ctx context.Context, p *common.Pagination) ([]*domain.Blog, int64, error)
	ListMyBlogs(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Blog, int64, error)
	UpdateBlog(ctx context.Context, id, userID string, req *domain.UpdateBlogRequest) (*domain.Blog, error)
	DeleteBlog(ctx context.Context, id, userID string, role domain.UserRole) error
}

type blogService struct {
	blogs repository.BlogRepository
	users repository.UserRepository
	subs  repository.SubscriptionRepository
}

// NewBlogService creates a new BlogService
func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, subs repository.SubscriptionRepository) BlogService {
	return &blogService{blogs: blogs, users: users, subs: subs}
}

// blogLimitFor resolves the caller's blog quota from the active plan.
// Hosts without a subscription get no blog allowance.
func (s *blogService) blogLimitFor(ctx context.Context, hostID string) (int, error) {
	sub, err := s.subs.FindActiveByHostID(ctx, hostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if sub.Plan == nil {
		return 0, nil
	}
	return sub.Plan.BlogLimit, nil
}

// CreateBlog creates a post for the calling host, enforcing the plan's
// blog quota
func (s *blogService) CreateBlog(ctx context.Context, userID string, req *domain.CreateBlogRequest) (*domain.Blog, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrHostNotFound
		}
		return nil, err
	}

	limit, err := s.blogLimitFor(ctx, host.ID)
	if err != nil {
		return nil, err
	}
	if limit != domain.BlogLimitUnlimited {
		count, err := s.blogs.CountByHostID(ctx, host.ID)
		if err != nil {
			return nil, err
		}
		if count >= int64(limit) {
			return nil, common.ErrBlogLimitReached
		}
	}

	blog := &domain.Blog{
		HostID:  host.ID,
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
		Status:  domain.BlogStatusDraft,
	}
	if req.Status == string(domain.BlogStatusPublished) {
		now := time.Now()
		blog.Status = domain.BlogStatusPublished
		blog.PublishedAt = &now
	}

	if err := s.blogs.Create(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// GetBlog retrieves a post and bumps its view counter
func (s *blogService) GetBlog(ctx context.Context, id string) (*domain.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBlogNotFound
		}
		return nil, err
	}

	_ = s.blogs.IncrementViewCount(ctx, id)
	return blog, nil
}

// ListPublished lists published posts for public consumption
func (s *blogService) ListPublished(ctx context.Context, p *common.Pagination) ([]*domain.Blog, int64, error) {
	return s.blogs.FindPublished(ctx, p)
}

// ListMyBlogs lists the calling host's posts including drafts
func (s *blogService) ListMyBlogs(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Blog, int64, error) {
	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrHostNotFound
		}
		return nil, 0, err
	}
	return s.blogs.FindByHostID(ctx, host.ID, p)
}

// UpdateBlog updates a post owned by the caller
func (s *blogService) UpdateBlog(ctx context.Context, id, userID string, req *domain.UpdateBlogRequest) (*domain.Blog, error) {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrBlogNotFound
		}
		return nil, err
	}

	host, err := s.users.FindHostByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrForbidden
		}
		return nil, err
	}
	if blog.HostID != host.ID {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Content != nil {
		blog.Content = *req.Content
	}
	if req.Summary != nil {
		blog.Summary = *req.Summary
	}
	if req.Status != nil {
		newStatus := domain.BlogStatus(*req.Status)
		if newStatus == domain.BlogStatusPublished && blog.Status != domain.BlogStatusPublished {
			now := time.Now()
			blog.PublishedAt = &now
		}
		blog.Status = newStatus
	}

	if err := s.blogs.Update(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

// DeleteBlog soft-deletes a post
func (s *blogService) DeleteBlog(ctx context.Context, id, userID string, role domain.UserRole) error {
	blog, err := s.blogs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrBlogNotFound
		}
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
		if blog.HostID != host.ID {
			return common.ErrForbidden
		}
	}

	return s.blogs.Delete(ctx, blog)
}
