package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	datamodel "github.com/hopebridge/donation-management/internal/core/datamodel/donation"
	donationpkg "github.com/hopebridge/donation-management/internal/donation"
	"github.com/hopebridge/donation-management/internal/donation/postgres"
)

func TestDonationRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Donation Repository Suite")
}

// SQLiteDonation mirrors the donations table without the postgres-only
// column defaults, for in-memory testing.
type SQLiteDonation struct {
	ID                   int64           `gorm:"primaryKey"`
	DonorName            string          `gorm:"column:donor_name;not null"`
	Email                string          `gorm:"column:email;not null;index"`
	Phone                *string         `gorm:"column:phone"`
	Amount               decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Frequency            string          `gorm:"column:frequency"`
	PaymentStatus        string          `gorm:"column:payment_status;index"`
	PaymentMethod        *string         `gorm:"column:payment_method"`
	TransactionReference *string         `gorm:"column:transaction_reference;uniqueIndex"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (SQLiteDonation) TableName() string {
	return "donations"
}

func strPtr(s string) *string {
	return &s
}

var _ = Describe("Donation Repository", func() {
	var (
		db   *gorm.DB
		repo donationpkg.Repository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDonation{})
		Expect(err).NotTo(HaveOccurred())

		repo = postgres.NewDonationRepository(db)
	})

	createDonation := func(email, status string, reference *string, createdAt time.Time) *datamodel.Donation {
		d := &datamodel.Donation{
			DonorName:            "Test Donor",
			Email:                email,
			Amount:               decimal.NewFromInt(25),
			Frequency:            datamodel.FrequencyOneTime,
			PaymentStatus:        status,
			TransactionReference: reference,
			CreatedAt:            createdAt,
			UpdatedAt:            createdAt,
		}
		Expect(repo.Create(d)).To(Succeed())
		return d
	}

	Describe("GetByTransactionReference", func() {
		It("should find the record carrying the reference", func() {
			created := createDonation("jane@mail.com", datamodel.StatusPending, strPtr("DON-abc"), time.Now())

			found, err := repo.GetByTransactionReference("DON-abc")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(created.ID))
		})

		It("should return gorm.ErrRecordNotFound for an unknown reference", func() {
			_, err := repo.GetByTransactionReference("DON-unknown")
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("GetLatestPendingByEmail", func() {
		It("should return the newest pending record and the candidate count", func() {
			older := time.Now().Add(-2 * time.Hour)
			newer := time.Now().Add(-1 * time.Hour)

			createDonation("jane@mail.com", datamodel.StatusPending, nil, older)
			newest := createDonation("jane@mail.com", datamodel.StatusPending, nil, newer)
			createDonation("jane@mail.com", datamodel.StatusCompleted, strPtr("DON-done"), time.Now())

			found, count, err := repo.GetLatestPendingByEmail("jane@mail.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(newest.ID))
			Expect(count).To(Equal(int64(2)))
		})

		It("should not match pending records of other donors", func() {
			createDonation("other@mail.com", datamodel.StatusPending, nil, time.Now())

			_, _, err := repo.GetLatestPendingByEmail("jane@mail.com")
			Expect(err).To(Equal(gorm.ErrRecordNotFound))
		})
	})

	Describe("UpdateReconciliation", func() {
		It("should update status and payment method on a pending record", func() {
			d := createDonation("jane@mail.com", datamodel.StatusPending, strPtr("DON-abc"), time.Now())

			rows, err := repo.UpdateReconciliation(d.ID, datamodel.StatusCompleted, "bank_transfer", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			updated, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.PaymentStatus).To(Equal(datamodel.StatusCompleted))
			Expect(*updated.PaymentMethod).To(Equal("bank_transfer"))
		})

		It("should backfill the transaction reference when provided", func() {
			d := createDonation("jane@mail.com", datamodel.StatusPending, nil, time.Now())

			rows, err := repo.UpdateReconciliation(d.ID, datamodel.StatusCompleted, "card", strPtr("DON-late"))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			updated, _ := repo.GetByID(d.ID)
			Expect(updated.TransactionReference).NotTo(BeNil())
			Expect(*updated.TransactionReference).To(Equal("DON-late"))
		})

		It("should skip the write when the record is already completed", func() {
			d := createDonation("jane@mail.com", datamodel.StatusCompleted, strPtr("DON-abc"), time.Now())

			rows, err := repo.UpdateReconciliation(d.ID, datamodel.StatusFailed, "card", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(0)))

			unchanged, _ := repo.GetByID(d.ID)
			Expect(unchanged.PaymentStatus).To(Equal(datamodel.StatusCompleted))
		})

		It("should allow pending to move to failed and then to completed", func() {
			d := createDonation("jane@mail.com", datamodel.StatusPending, strPtr("DON-abc"), time.Now())

			rows, err := repo.UpdateReconciliation(d.ID, datamodel.StatusFailed, "card", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))

			// a late success after a transient failure report still lands
			rows, err = repo.UpdateReconciliation(d.ID, datamodel.StatusCompleted, "card", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(Equal(int64(1)))
		})
	})

	Describe("ListDonorEmails", func() {
		It("should return distinct donor emails", func() {
			createDonation("jane@mail.com", datamodel.StatusCompleted, strPtr("DON-1"), time.Now())
			createDonation("jane@mail.com", datamodel.StatusPending, nil, time.Now())
			createDonation("bob@mail.com", datamodel.StatusCompleted, strPtr("DON-2"), time.Now())

			emails, err := repo.ListDonorEmails()
			Expect(err).NotTo(HaveOccurred())
			Expect(emails).To(ConsistOf("jane@mail.com", "bob@mail.com"))
		})
	})
})
