package repository

import (
	"context"

	"github.com/roamly/roamly-backend/internal/common"
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository payment data access interface
type PaymentRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Payment, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	FindByUserID(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Payment, int64, error)
	FindAll(ctx context.Context, req *domain.PaymentListRequest, p *common.Pagination) ([]*domain.Payment, int64, error)
	Create(ctx context.Context, payment *domain.Payment) error
	Update(ctx context.Context, payment *domain.Payment) error
	// Upsert inserts the payment or, when the transaction ID already
	// exists, refreshes its mutable columns. Webhook replays therefore
	// never produce duplicate rows.
	Upsert(ctx context.Context, payment *domain.Payment) error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *paymentRepository) FindByID(ctx context.Context, id string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByTransactionID finds a payment by gateway transaction ID
func (r *paymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByUserID lists a user's payments
func (r *paymentRepository) FindByUserID(ctx context.Context, userID string, p *common.Pagination) ([]*domain.Payment, int64, error) {
	var payments []*domain.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Payment{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&payments).Error
	return payments, total, err
}

// FindAll lists payments with filters (admin scope)
func (r *paymentRepository) FindAll(ctx context.Context, req *domain.PaymentListRequest, p *common.Pagination) ([]*domain.Payment, int64, error) {
	var payments []*domain.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Payment{})
	if req != nil {
		if req.Status != "" {
			query = query.Where("status = ?", req.Status)
		}
		if req.Type != "" {
			query = query.Where("type = ?", req.Type)
		}
		if req.UserID != "" {
			query = query.Where("user_id = ?", req.UserID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order(p.OrderClause()).
		Offset(p.Offset()).Limit(p.Limit).
		Find(&payments).Error
	return payments, total, err
}

// Create inserts a payment record
func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// Update updates a payment record
func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// Upsert inserts or refreshes a payment keyed by transaction ID
func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "amount", "failure_reason", "gateway_response", "paid_at", "updated_at",
		}),
	}).Create(payment).Error
}
