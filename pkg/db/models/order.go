package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/busybiz/busybiz-backend/pkg/enums"
)

// Order records a completed checkout session. Rows are append-only and keyed
// by the Stripe checkout session id, which doubles as the idempotency key for
// redelivered webhook events.
type Order struct {
	ID                uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CheckoutSessionID string            `gorm:"column:checkout_session_id;not null;uniqueIndex:uq_orders_checkout_session_id"`
	PaymentIntentID   string            `gorm:"column:payment_intent_id"`
	StripeCustomerID  string            `gorm:"column:stripe_customer_id;not null;index"`
	AmountSubtotal    int64             `gorm:"column:amount_subtotal;not null"`
	AmountTotal       int64             `gorm:"column:amount_total;not null"`
	Currency          string            `gorm:"column:currency;not null"`
	PaymentStatus     string            `gorm:"column:payment_status;not null"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'completed'"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = enums.OrderStatusCompleted
	}
	return nil
}
