package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer maps an internal account to its Stripe customer record. One row
// per user, created lazily on the first checkout that needs a billing
// identity and never deleted afterwards.
type Customer struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	StripeCustomerID string    `gorm:"column:stripe_customer_id;not null;uniqueIndex"`
	Email            string    `gorm:"column:email"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
