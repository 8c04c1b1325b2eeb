package checkout

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/busybiz/busybiz-backend/internal/catalog"
	"github.com/busybiz/busybiz-backend/internal/customers"
	"github.com/busybiz/busybiz-backend/pkg/auth"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

// sessionIDPlaceholder is resolved by Stripe when redirecting back after a
// completed payment.
const sessionIDPlaceholder = "session_id={CHECKOUT_SESSION_ID}"

// CreateSessionInput carries the request for a hosted checkout page. User is
// nil for guest checkout, in which case Stripe creates a fresh payer identity.
type CreateSessionInput struct {
	PriceID    string
	SuccessURL string
	CancelURL  string
	User       *auth.AccessTokenClaims
}

// Service initiates provider-hosted checkout sessions.
type Service interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (string, error)
}

type ServiceParams struct {
	Customers customers.Service
	Stripe    StripeCheckoutClient
	Logger    *logger.Logger
}

type service struct {
	customers customers.Service
	stripe    StripeCheckoutClient
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers service required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &service{
		customers: params.Customers,
		stripe:    params.Stripe,
		logg:      params.Logger,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, input CreateSessionInput) (string, error) {
	priceID := strings.TrimSpace(input.PriceID)
	if priceID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "priceId is required")
	}
	if strings.TrimSpace(input.SuccessURL) == "" || strings.TrimSpace(input.CancelURL) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "successUrl and cancelUrl are required")
	}
	product, ok := catalog.FindByPriceID(priceID)
	if !ok || !product.Purchasable() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "priceId does not match a purchasable product")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(appendSessionPlaceholder(input.SuccessURL)),
		CancelURL:  stripe.String(input.CancelURL),
	}

	if input.User != nil {
		customerID, err := s.customers.EnsureCustomer(ctx, input.User.UserID, input.User.Email)
		if err != nil {
			return "", err
		}
		params.Customer = stripe.String(customerID)
		params.AddMetadata("user_id", input.User.UserID.String())
	} else {
		params.CustomerCreation = stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways))
	}

	sess, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return "", checkoutError(err)
	}
	if sess == nil || sess.URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe returned no checkout url")
	}

	return sess.URL, nil
}

// appendSessionPlaceholder attaches the provider's session-id token with the
// right query separator.
func appendSessionPlaceholder(successURL string) string {
	if strings.Contains(successURL, "?") {
		return successURL + "&" + sessionIDPlaceholder
	}
	return successURL + "?" + sessionIDPlaceholder
}

// checkoutError lifts Stripe's own error classification into the service's
// taxonomy: bad price references are caller mistakes, everything else is an
// upstream failure.
func checkoutError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, stripeErr.Msg)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, stripeErr.Msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
}
