package controllers

import (
	"context"
	"net/http"

	"github.com/busybiz/busybiz-backend/api/middleware"
	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/api/validators"
	"github.com/busybiz/busybiz-backend/internal/checkout"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

// CheckoutService describes the checkout methods used by the HTTP controllers.
type CheckoutService interface {
	CreateSession(ctx context.Context, input checkout.CreateSessionInput) (string, error)
}

type createCheckoutSessionRequest struct {
	PriceID    string `json:"priceId" validate:"required"`
	SuccessURL string `json:"successUrl" validate:"required,url"`
	CancelURL  string `json:"cancelUrl" validate:"required,url"`
}

type createCheckoutSessionResponse struct {
	URL string `json:"url"`
}

// CreateCheckoutSession starts a hosted checkout for a price. Works for both
// guests and signed-in users; the auth middleware seeds claims when present.
func CreateCheckoutSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createCheckoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		url, err := svc.CreateSession(ctx, checkout.CreateSessionInput{
			PriceID:    payload.PriceID,
			SuccessURL: payload.SuccessURL,
			CancelURL:  payload.CancelURL,
			User:       middleware.ClaimsFromContext(ctx),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, createCheckoutSessionResponse{URL: url})
	}
}
