package newsletter

import "time"

type Subscription struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;default:now()"`
}
