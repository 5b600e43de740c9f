package postgres

import (
	"time"

	"gorm.io/gorm"

	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/member"
	memberpkg "github.com/hopebridge/donation-management/internal/member"
)

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) memberpkg.Repository {
	return &MemberRepository{
		db: db,
	}
}

func (r *MemberRepository) Create(m *datamodel.Member) error {
	return r.db.Create(m).Error
}

func (r *MemberRepository) GetByID(id int64) (*datamodel.Member, error) {
	var m datamodel.Member
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&datamodel.Member{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *MemberRepository) ListApprovedEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&datamodel.Member{}).
		Where("status = ?", datamodel.StatusApproved).
		Distinct("email").
		Pluck("email", &emails).Error
	return emails, err
}
