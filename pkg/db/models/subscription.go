package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/busybiz/busybiz-backend/pkg/enums"
)

// Subscription persists Stripe subscription state per customer. Rows are
// upserted keyed by the Stripe subscription id and soft-canceled rather than
// removed, so repeated deliveries of the same event converge on one record.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StripeCustomerID     string                   `gorm:"column:stripe_customer_id;not null;index"`
	StripeSubscriptionID string                   `gorm:"column:stripe_subscription_id;not null;uniqueIndex:uq_subscriptions_stripe_subscription_id"`
	PriceID              *string                  `gorm:"column:price_id"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CancelAtPeriodEnd    bool                     `gorm:"column:cancel_at_period_end;not null;default:false"`
	PaymentMethodBrand   *string                  `gorm:"column:payment_method_brand"`
	PaymentMethodLast4   *string                  `gorm:"column:payment_method_last4"`
	Status               enums.SubscriptionStatus `gorm:"column:status;not null"`
	DeletedAt            *time.Time               `gorm:"column:deleted_at"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
