package repository

import (
	"context"

	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user data access interface
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error

	FindTouristByUserID(ctx context.Context, userID string) (*domain.Tourist, error)
	FindHostByUserID(ctx context.Context, userID string) (*domain.Host, error)
	FindHostByID(ctx context.Context, hostID string) (*domain.Host, error)
	FindHostByCustomerID(ctx context.Context, customerID string) (*domain.Host, error)
	UpdateHost(ctx context.Context, host *domain.Host) error
	UpdateHostFields(ctx context.Context, hostID string, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID finds a user by ID with the role profile preloaded
func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Tourist").
		Preload("Host").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Tourist").
		Preload("Host").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks whether a user with the email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// Create creates the user together with its role profile association
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindTouristByUserID finds the tourist profile for a user
func (r *userRepository) FindTouristByUserID(ctx context.Context, userID string) (*domain.Tourist, error) {
	var tourist domain.Tourist
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&tourist).Error
	if err != nil {
		return nil, err
	}
	return &tourist, nil
}

// FindHostByUserID finds the host profile for a user
func (r *userRepository) FindHostByUserID(ctx context.Context, userID string) (*domain.Host, error) {
	var host domain.Host
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&host).Error
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// FindHostByID finds a host by its profile ID
func (r *userRepository) FindHostByID(ctx context.Context, hostID string) (*domain.Host, error) {
	var host domain.Host
	err := r.db.WithContext(ctx).Where("id = ?", hostID).First(&host).Error
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// FindHostByCustomerID finds a host by its gateway customer ID
func (r *userRepository) FindHostByCustomerID(ctx context.Context, customerID string) (*domain.Host, error) {
	var host domain.Host
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&host).Error
	if err != nil {
		return nil, err
	}
	return &host, nil
}

// UpdateHost updates a host profile
func (r *userRepository) UpdateHost(ctx context.Context, host *domain.Host) error {
	return r.db.WithContext(ctx).Save(host).Error
}

// UpdateHostFields updates selected host columns
func (r *userRepository) UpdateHostFields(ctx context.Context, hostID string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&domain.Host{}).Where("id = ?", hostID).Updates(fields).Error
}
