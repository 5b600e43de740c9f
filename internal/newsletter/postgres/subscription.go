package postgres

import (
	"gorm.io/gorm"

	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/newsletter"
	newsletterpkg "github.com/hopebridge/donation-management/internal/newsletter"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) newsletterpkg.Repository {
	return &SubscriptionRepository{
		db: db,
	}
}

func (r *SubscriptionRepository) Create(sub *datamodel.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByEmail(email string) (*datamodel.Subscription, error) {
	var sub datamodel.Subscription
	err := r.db.Where("email = ?", email).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&datamodel.Subscription{}).
		Distinct("email").
		Pluck("email", &emails).Error
	return emails, err
}
