package postgres

import (
	"time"

	"gorm.io/gorm"

	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
	donationpkg "github.com/hopebridge/donation-management/internal/donation"
)

type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) donationpkg.Repository {
	return &DonationRepository{
		db: db,
	}
}

func (r *DonationRepository) Create(d *datamodel.Donation) error {
	return r.db.Create(d).Error
}

func (r *DonationRepository) GetByID(id int64) (*datamodel.Donation, error) {
	var d datamodel.Donation
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetByTransactionReference(reference string) (*datamodel.Donation, error) {
	var d datamodel.Donation
	err := r.db.Where("transaction_reference = ?", reference).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DonationRepository) GetLatestPendingByEmail(email string) (*datamodel.Donation, int64, error) {
	var count int64
	err := r.db.Model(&datamodel.Donation{}).
		Where("email = ? AND payment_status = ?", email, datamodel.StatusPending).
		Count(&count).Error
	if err != nil {
		return nil, 0, err
	}

	var d datamodel.Donation
	err = r.db.Where("email = ? AND payment_status = ?", email, datamodel.StatusPending).
		Order("created_at DESC").
		First(&d).Error
	if err != nil {
		return nil, count, err
	}
	return &d, count, nil
}

// UpdateReconciliation writes the webhook outcome. The WHERE clause
// doubles as the transition guard: completed is terminal, so a stale or
// replayed webhook matches zero rows instead of regressing the status.
func (r *DonationRepository) UpdateReconciliation(id int64, status, paymentMethod string, transactionReference *string) (int64, error) {
	updates := map[string]interface{}{
		"payment_status": status,
		"payment_method": paymentMethod,
		"updated_at":     time.Now(),
	}

	if transactionReference != nil {
		updates["transaction_reference"] = *transactionReference
	}

	tx := r.db.Model(&datamodel.Donation{}).
		Where("id = ? AND payment_status <> ?", id, datamodel.StatusCompleted).
		Updates(updates)

	return tx.RowsAffected, tx.Error
}

func (r *DonationRepository) ListDonorEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&datamodel.Donation{}).
		Distinct("email").
		Pluck("email", &emails).Error
	return emails, err
}
