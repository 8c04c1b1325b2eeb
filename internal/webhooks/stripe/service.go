package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/busybiz/busybiz-backend/internal/billing"
	"github.com/busybiz/busybiz-backend/internal/customers"
	"github.com/busybiz/busybiz-backend/pkg/db/models"
	"github.com/busybiz/busybiz-backend/pkg/enums"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type ServiceParams struct {
	BillingRepo   billing.Repository
	CustomersRepo customers.Repository
	StripeClient  StripePaymentMethodClient
	Logger        *logger.Logger
}

// Service reconciles Stripe webhook events into local billing state. Every
// handler is safe to re-run: orders insert-or-skip on the session id and
// subscriptions upsert on the subscription id.
type Service struct {
	billingRepo   billing.Repository
	customersRepo customers.Repository
	stripe        StripePaymentMethodClient
	logg          *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.CustomersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "customers repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		billingRepo:   params.BillingRepo,
		customersRepo: params.CustomersRepo,
		stripe:        params.StripeClient,
		logg:          params.Logger,
	}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	ctx = s.logg.WithStripeEvent(ctx, event.ID, string(event.Type))

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.recordOrder(ctx, &session)
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.syncSubscription(ctx, &stripeSub)
	case stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode subscription event")
		}
		return s.cancelSubscription(ctx, &stripeSub)
	default:
		s.logg.Info(ctx, "unhandled stripe event type")
		return nil
	}
}

// recordOrder persists a completed checkout session as an order. Sessions
// whose Stripe customer has no directory mapping are acknowledged and logged
// rather than failed, so Stripe does not retry an event we can never place.
func (s *Service) recordOrder(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}
	customerID := customerIDFromSession(session)
	if customerID == "" {
		s.logg.Warn(ctx, "checkout session has no customer, skipping order")
		return nil
	}

	mapping, err := s.customersRepo.FindByStripeID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer mapping")
	}
	if mapping == nil {
		ctx = s.logg.WithField(ctx, "stripe_customer_id", customerID)
		s.logg.Warn(ctx, "no customer mapping for checkout session, skipping order")
		return nil
	}

	order := &models.Order{
		CheckoutSessionID: session.ID,
		PaymentIntentID:   paymentIntentID(session),
		StripeCustomerID:  customerID,
		AmountSubtotal:    session.AmountSubtotal,
		AmountTotal:       session.AmountTotal,
		Currency:          string(session.Currency),
		PaymentStatus:     string(session.PaymentStatus),
		Status:            enums.OrderStatusCompleted,
	}

	created, err := s.billingRepo.CreateOrder(ctx, order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	if !created {
		s.logg.Info(ctx, "order already recorded for checkout session")
		return nil
	}
	s.logg.Info(ctx, "order recorded from checkout session")
	return nil
}

func (s *Service) syncSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil || stripeSub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	customerID := ""
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}
	if customerID == "" {
		s.logg.Warn(ctx, "subscription event has no customer, skipping")
		return nil
	}

	mapping, err := s.customersRepo.FindByStripeID(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up customer mapping")
	}
	if mapping == nil {
		ctx = s.logg.WithField(ctx, "stripe_customer_id", customerID)
		s.logg.Warn(ctx, "no customer mapping for subscription, skipping")
		return nil
	}

	brand, last4 := s.paymentMethodDetails(ctx, stripeSub)

	status, err := enums.ParseSubscriptionStatus(string(stripeSub.Status))
	if err != nil {
		// Stripe adds statuses over time. Store the raw value instead of
		// failing the event, which would make Stripe redeliver forever.
		ctx = s.logg.WithField(ctx, "stripe_status", string(stripeSub.Status))
		s.logg.Warn(ctx, "unknown subscription status, storing raw value")
		status = enums.SubscriptionStatus(stripeSub.Status)
	}

	sub := &models.Subscription{
		StripeCustomerID:     customerID,
		StripeSubscriptionID: stripeSub.ID,
		PriceID:              priceIDFromItems(stripeSub),
		CancelAtPeriodEnd:    stripeSub.CancelAtPeriodEnd,
		PaymentMethodBrand:   brand,
		PaymentMethodLast4:   last4,
		Status:               status,
	}
	sub.CurrentPeriodStart, sub.CurrentPeriodEnd = periodFromItems(stripeSub)

	if err := s.billingRepo.UpsertSubscription(ctx, sub); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist subscription")
	}
	s.logg.Info(ctx, "subscription synced")
	return nil
}

func (s *Service) cancelSubscription(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub == nil || stripeSub.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subscription id required")
	}
	found, err := s.billingRepo.MarkSubscriptionCanceled(ctx, stripeSub.ID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
	}
	if !found {
		ctx = s.logg.WithField(ctx, "stripe_subscription_id", stripeSub.ID)
		s.logg.Warn(ctx, "no subscription row for deleted event, skipping")
		return nil
	}
	s.logg.Info(ctx, "subscription marked canceled")
	return nil
}

// paymentMethodDetails fetches the card brand and last4 for the default
// payment method. Failures are logged and ignored, the subscription row is
// still written.
func (s *Service) paymentMethodDetails(ctx context.Context, stripeSub *stripe.Subscription) (*string, *string) {
	if stripeSub.DefaultPaymentMethod == nil || stripeSub.DefaultPaymentMethod.ID == "" {
		return nil, nil
	}
	pm, err := s.stripe.GetPaymentMethod(ctx, stripeSub.DefaultPaymentMethod.ID)
	if err != nil {
		s.logg.Error(ctx, "fetch payment method details", err)
		return nil, nil
	}
	if pm == nil || pm.Card == nil {
		return nil, nil
	}
	brand := string(pm.Card.Brand)
	last4 := pm.Card.Last4
	return &brand, &last4
}

func customerIDFromSession(session *stripe.CheckoutSession) string {
	if session.Customer == nil {
		return ""
	}
	return session.Customer.ID
}

func paymentIntentID(session *stripe.CheckoutSession) string {
	if session.PaymentIntent == nil {
		return ""
	}
	return session.PaymentIntent.ID
}

func priceIDFromItems(sub *stripe.Subscription) *string {
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return nil
	}
	id := sub.Items.Data[0].Price.ID
	return &id
}

func periodFromItems(sub *stripe.Subscription) (*time.Time, *time.Time) {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, nil
	}
	item := sub.Items.Data[0]
	return toTimePtr(item.CurrentPeriodStart), toTimePtr(item.CurrentPeriodEnd)
}

func toTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
