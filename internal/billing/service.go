package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/busybiz/busybiz-backend/internal/customers"
	"github.com/busybiz/busybiz-backend/pkg/db/models"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
)

// Service is the read surface over a user's billing history. Users without a
// Stripe customer mapping have never bought anything, which reads as empty
// history rather than an error.
type Service interface {
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

type ServiceParams struct {
	Repo          Repository
	CustomersRepo customers.Repository
}

type service struct {
	repo          Repository
	customersRepo customers.Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.CustomersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers repo required")
	}
	return &service{repo: params.Repo, customersRepo: params.CustomersRepo}, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	mapping, err := s.customersRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer mapping")
	}
	if mapping == nil {
		return []models.Order{}, nil
	}
	orders, err := s.repo.ListOrdersByCustomer(ctx, mapping.StripeCustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) GetUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	mapping, err := s.customersRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer mapping")
	}
	if mapping == nil {
		return nil, nil
	}
	sub, err := s.repo.FindSubscriptionByCustomer(ctx, mapping.StripeCustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}
