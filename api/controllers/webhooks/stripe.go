package webhooks

import (
	"context"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

type receivedResponse struct {
	Received bool `json:"received"`
}

// StripeWebhook receives Stripe events. Signature failures answer with a
// plain-text 400 and no side effects; processing failures answer 500 so
// Stripe redelivers; everything else acknowledges with {"received": true}.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteErrorBody(w, http.StatusInternalServerError, responses.ErrorBody{Error: "webhook handler unavailable"})
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteErrorBody(w, http.StatusInternalServerError, responses.ErrorBody{Error: "failed to read request body"})
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "webhook signature verification failed", err)
			}
			http.Error(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
			return
		}

		if logg != nil {
			ctx = logg.WithStripeEvent(ctx, event.ID, string(event.Type))
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "webhook idempotency check failed", err)
			}
			responses.WriteErrorBody(w, http.StatusInternalServerError, responses.ErrorBody{Error: "failed to process event"})
			return
		}
		if alreadyProcessed {
			if logg != nil {
				logg.Info(ctx, "duplicate stripe event acknowledged")
			}
			responses.WriteSuccess(w, receivedResponse{Received: true})
			return
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			_ = guard.Release(ctx, event.ID)
			if logg != nil {
				logg.Error(ctx, "webhook event processing failed", err)
			}
			responses.WriteErrorBody(w, http.StatusInternalServerError, responses.ErrorBody{Error: "failed to process event"})
			return
		}

		if logg != nil {
			logg.Info(ctx, "stripe event processed")
		}
		responses.WriteSuccess(w, receivedResponse{Received: true})
	}
}
