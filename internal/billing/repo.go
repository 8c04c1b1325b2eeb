package billing

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/busybiz/busybiz-backend/pkg/db/models"
	"github.com/busybiz/busybiz-backend/pkg/enums"
)

// Repository handles order and subscription persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) (created bool, err error)
	FindOrderBySessionID(ctx context.Context, checkoutSessionID string) (*models.Order, error)
	ListOrdersByCustomer(ctx context.Context, stripeCustomerID string) ([]models.Order, error)

	UpsertSubscription(ctx context.Context, subscription *models.Subscription) error
	FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	FindSubscriptionByCustomer(ctx context.Context, stripeCustomerID string) (*models.Subscription, error)
	MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string, deletedAt time.Time) (found bool, err error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateOrder inserts an order keyed by checkout session id. A conflicting
// insert is a redelivered webhook, reported as created=false rather than an
// error so handlers stay re-run safe.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_session_id"}},
			DoNothing: true,
		}).
		Create(order)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindOrderBySessionID(ctx context.Context, checkoutSessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("checkout_session_id = ?", checkoutSessionID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByCustomer(ctx context.Context, stripeCustomerID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", stripeCustomerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpsertSubscription writes the latest provider state keyed by subscription
// id. Last write wins; redelivered or reordered events converge on one row.
func (r *repository) UpsertSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"stripe_customer_id",
				"price_id",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"payment_method_brand",
				"payment_method_last4",
				"status",
				"updated_at",
			}),
		}).
		Create(subscription).Error
}

func (r *repository) FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (r *repository) FindSubscriptionByCustomer(ctx context.Context, stripeCustomerID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", stripeCustomerID).
		Order("created_at DESC").
		First(&subscription).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

// MarkSubscriptionCanceled soft-cancels the row and reports whether one
// matched, so callers can tell a cancellation apart from a no-op.
func (r *repository) MarkSubscriptionCanceled(ctx context.Context, stripeSubscriptionID string, deletedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]any{
			"status":     enums.SubscriptionStatusCanceled,
			"deleted_at": deletedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
