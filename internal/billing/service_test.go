package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/busybiz/busybiz-backend/internal/customers"
	"github.com/busybiz/busybiz-backend/pkg/db/models"
	"github.com/busybiz/busybiz-backend/pkg/enums"
)

func newReadService(t *testing.T) (Service, Repository, customers.Repository) {
	t.Helper()
	db := setupBillingTestDB(t)

	customersTable := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  stripe_customer_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(customersTable).Error)
	t.Cleanup(func() {
		db.Exec("DELETE FROM customers")
	})

	repo := NewRepository(db)
	customersRepo := customers.NewRepository(db)
	svc, err := NewService(ServiceParams{Repo: repo, CustomersRepo: customersRepo})
	require.NoError(t, err)
	return svc, repo, customersRepo
}

func TestListUserOrders(t *testing.T) {
	svc, repo, customersRepo := newReadService(t)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, customersRepo.Create(ctx, &models.Customer{
		UserID:           userID,
		StripeCustomerID: "cus_read_orders",
		Email:            "anna@example.dk",
	}))

	for _, sessionID := range []string{"cs_read_1", "cs_read_2"} {
		_, err := repo.CreateOrder(ctx, &models.Order{
			CheckoutSessionID: sessionID,
			StripeCustomerID:  "cus_read_orders",
			AmountTotal:       299900,
			Currency:          "dkk",
			PaymentStatus:     "paid",
			Status:            enums.OrderStatusCompleted,
		})
		require.NoError(t, err)
	}

	orders, err := svc.ListUserOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
}

func TestListUserOrdersWithoutMappingIsEmpty(t *testing.T) {
	svc, _, _ := newReadService(t)

	orders, err := svc.ListUserOrders(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestGetUserSubscription(t *testing.T) {
	svc, repo, customersRepo := newReadService(t)
	ctx := context.Background()

	userID := uuid.New()
	require.NoError(t, customersRepo.Create(ctx, &models.Customer{
		UserID:           userID,
		StripeCustomerID: "cus_read_sub",
		Email:            "anna@example.dk",
	}))
	require.NoError(t, repo.UpsertSubscription(ctx, &models.Subscription{
		StripeCustomerID:     "cus_read_sub",
		StripeSubscriptionID: "sub_read_1",
		Status:               enums.SubscriptionStatusActive,
	}))

	sub, err := svc.GetUserSubscription(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, "sub_read_1", sub.StripeSubscriptionID)
}

func TestGetUserSubscriptionWithoutMappingIsNil(t *testing.T) {
	svc, _, _ := newReadService(t)

	sub, err := svc.GetUserSubscription(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Nil(t, sub)
}

func TestReadServiceRejectsNilUser(t *testing.T) {
	svc, _, _ := newReadService(t)

	_, err := svc.ListUserOrders(context.Background(), uuid.Nil)
	require.Error(t, err)
	_, err = svc.GetUserSubscription(context.Background(), uuid.Nil)
	require.Error(t, err)
}
