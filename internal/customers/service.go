package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/busybiz/busybiz-backend/pkg/db"
	"github.com/busybiz/busybiz-backend/pkg/db/models"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

// StripeCustomerClient exposes the subset of Stripe operations the directory
// needs, so the service can be tested without the live API.
type StripeCustomerClient interface {
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error)
}

// Service resolves the Stripe billing identity for an internal account,
// creating one on first use.
type Service interface {
	EnsureCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error)
}

type ServiceParams struct {
	Repo   Repository
	Stripe StripeCustomerClient
	Logger *logger.Logger
}

type service struct {
	repo   Repository
	stripe StripeCustomerClient
	logg   *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customer repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &service{
		repo:   params.Repo,
		stripe: params.Stripe,
		logg:   params.Logger,
	}, nil
}

func (s *service) EnsureCustomer(ctx context.Context, userID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	existing, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup customer mapping")
	}
	if existing != nil {
		return existing.StripeCustomerID, nil
	}

	stripeCustomerID, err := s.stripe.CreateCustomer(ctx, strings.TrimSpace(email), map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
	}

	mapping := &models.Customer{
		UserID:           userID,
		StripeCustomerID: stripeCustomerID,
		Email:            strings.TrimSpace(email),
	}
	if err := s.repo.Create(ctx, mapping); err != nil {
		if db.IsUniqueViolation(err, "") {
			// Another request won the race. Read back its mapping so both
			// callers converge on one Stripe customer; this one's identity
			// stays unused and expires on Stripe's side.
			winner, lookupErr := s.repo.FindByUserID(ctx, userID)
			if lookupErr == nil && winner != nil {
				return winner.StripeCustomerID, nil
			}
		}
		// The upstream identity exists but the mapping write failed. There is
		// no compensating delete; the next attempt creates a fresh identity
		// and the orphan expires unused on Stripe's side.
		if s.logg != nil {
			s.logg.Error(ctx, "customer mapping write failed after stripe create", err)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist customer mapping")
	}

	return stripeCustomerID, nil
}
