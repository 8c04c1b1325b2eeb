package stripewebhook

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentmethod"

	pkgstripe "github.com/busybiz/busybiz-backend/pkg/stripe"
)

// StripePaymentMethodClient fetches payment method details for subscription
// events. Card brand/last4 on a subscription row comes from here.
type StripePaymentMethodClient interface {
	GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error)
}

type stripeClientWrapper struct{}

func NewStripeClient(api *pkgstripe.Client) StripePaymentMethodClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	return paymentmethod.Get(id, params)
}
