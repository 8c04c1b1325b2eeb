package customers

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/busybiz/busybiz-backend/pkg/db/models"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:customers_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  stripe_customer_id TEXT NOT NULL UNIQUE,
  email TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM customers")
	})

	return db
}

type stubStripeCustomers struct {
	nextID string
	err    error
	calls  int
	email  string
	meta   map[string]string
}

func (s *stubStripeCustomers) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	s.calls++
	s.email = email
	s.meta = metadata
	if s.err != nil {
		return "", s.err
	}
	return s.nextID, nil
}

func TestEnsureCustomerCreatesMappingOnFirstUse(t *testing.T) {
	db := setupCustomersTestDB(t)
	stripeStub := &stubStripeCustomers{nextID: "cus_new"}
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Stripe: stripeStub})
	require.NoError(t, err)

	userID := uuid.New()
	got, err := svc.EnsureCustomer(context.Background(), userID, "anna@example.dk")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", got)
	assert.Equal(t, "anna@example.dk", stripeStub.email)
	assert.Equal(t, userID.String(), stripeStub.meta["user_id"])

	var stored models.Customer
	require.NoError(t, db.Where("user_id = ?", userID).First(&stored).Error)
	assert.Equal(t, "cus_new", stored.StripeCustomerID)
}

func TestEnsureCustomerReturnsExistingWithoutStripeCall(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.Customer{
		UserID:           userID,
		StripeCustomerID: "cus_existing",
		Email:            "anna@example.dk",
	}))

	stripeStub := &stubStripeCustomers{nextID: "cus_should_not_be_used"}
	svc, err := NewService(ServiceParams{Repo: repo, Stripe: stripeStub})
	require.NoError(t, err)

	got, err := svc.EnsureCustomer(context.Background(), userID, "anna@example.dk")
	require.NoError(t, err)
	assert.Equal(t, "cus_existing", got)
	assert.Zero(t, stripeStub.calls)
}

func TestEnsureCustomerPropagatesStripeFailure(t *testing.T) {
	db := setupCustomersTestDB(t)
	stripeStub := &stubStripeCustomers{err: errors.New("rate limited")}
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Stripe: stripeStub})
	require.NoError(t, err)

	_, err = svc.EnsureCustomer(context.Background(), uuid.New(), "anna@example.dk")
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Customer{}).Count(&count).Error)
	assert.Zero(t, count)
}

type racingRepo struct {
	Repository
	winner  *models.Customer
	lookups int
}

func (r *racingRepo) Create(ctx context.Context, customer *models.Customer) error {
	return errors.New("UNIQUE constraint failed: customers.user_id")
}

// FindByUserID misses on the first call and returns the winning row on the
// read-back, simulating a concurrent request inserting between the two.
func (r *racingRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Customer, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.winner, nil
}

func TestEnsureCustomerConvergesOnConcurrentCreate(t *testing.T) {
	userID := uuid.New()
	repo := &racingRepo{winner: &models.Customer{UserID: userID, StripeCustomerID: "cus_winner"}}
	stripeStub := &stubStripeCustomers{nextID: "cus_loser"}
	svc, err := NewService(ServiceParams{Repo: repo, Stripe: stripeStub})
	require.NoError(t, err)

	got, err := svc.EnsureCustomer(context.Background(), userID, "anna@example.dk")
	require.NoError(t, err)
	assert.Equal(t, "cus_winner", got)
	assert.Equal(t, 2, repo.lookups)
}

func TestEnsureCustomerRejectsNilUser(t *testing.T) {
	db := setupCustomersTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Stripe: &stubStripeCustomers{nextID: "cus_x"}})
	require.NoError(t, err)

	_, err = svc.EnsureCustomer(context.Background(), uuid.Nil, "anna@example.dk")
	require.Error(t, err)
}

func TestRepositoryFindByStripeID(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	require.NoError(t, repo.Create(context.Background(), &models.Customer{
		UserID:           userID,
		StripeCustomerID: "cus_by_stripe",
	}))

	found, err := repo.FindByStripeID(context.Background(), "cus_by_stripe")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, userID, found.UserID)

	missing, err := repo.FindByStripeID(context.Background(), "cus_absent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
