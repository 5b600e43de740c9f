package donation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment status values. Statuses reported by the gateway that are not
// PAID are stored lower-cased verbatim, so this set is open-ended.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	FrequencyOneTime = "one-time"
)

type Donation struct {
	ID                   int64           `gorm:"primaryKey"`
	DonorName            string          `gorm:"column:donor_name;not null"`
	Email                string          `gorm:"column:email;not null;index"`
	Phone                *string         `gorm:"column:phone"`
	Amount               decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Frequency            string          `gorm:"column:frequency;default:one-time"`
	PaymentStatus        string          `gorm:"column:payment_status;default:pending;index"`
	PaymentMethod        *string         `gorm:"column:payment_method"`
	TransactionReference *string         `gorm:"column:transaction_reference;uniqueIndex"`
	CreatedAt            time.Time       `gorm:"column:created_at;default:now()"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;default:now()"`
}

// Settled reports whether the donation has reached its terminal state.
// A completed donation is never overwritten by later webhook deliveries.
func (d *Donation) Settled() bool {
	return d.PaymentStatus == StatusCompleted
}
