package migration

import (
	"github.com/roamly/roamly-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all marketplace tables and seeds the default
// subscription plans when the plans table is empty.
func Run(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Tourist{},
		&domain.Host{},
		&domain.Tour{},
		&domain.Booking{},
		&domain.SubscriptionPlan{},
		&domain.Subscription{},
		&domain.Payment{},
		&domain.UnreconciledEvent{},
		&domain.Blog{},
	); err != nil {
		return err
	}

	var count int64
	db.Model(&domain.SubscriptionPlan{}).Count(&count)
	if count == 0 {
		return seedPlans(db)
	}

	return nil
}

func seedPlans(db *gorm.DB) error {
	plans := domain.DefaultPlans()
	return db.Create(&plans).Error
}
