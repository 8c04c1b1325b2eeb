package controllers

import (
	"net/http"
	"time"

	"github.com/busybiz/busybiz-backend/api/middleware"
	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/internal/billing"
	"github.com/busybiz/busybiz-backend/pkg/db/models"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type orderResponse struct {
	ID                string `json:"id"`
	CheckoutSessionID string `json:"checkout_session_id"`
	AmountSubtotal    int64  `json:"amount_subtotal"`
	AmountTotal       int64  `json:"amount_total"`
	Currency          string `json:"currency"`
	PaymentStatus     string `json:"payment_status"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
}

type orderListResponse struct {
	Orders []orderResponse `json:"orders"`
}

type subscriptionResponse struct {
	SubscriptionID     string  `json:"subscription_id"`
	PriceID            *string `json:"price_id,omitempty"`
	Status             string  `json:"status"`
	CurrentPeriodStart *string `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *string `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool    `json:"cancel_at_period_end"`
	PaymentMethodBrand *string `json:"payment_method_brand,omitempty"`
	PaymentMethodLast4 *string `json:"payment_method_last4,omitempty"`
}

// MyOrders lists the authenticated user's purchase history, newest first.
func MyOrders(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		claims := middleware.ClaimsFromContext(ctx)
		if claims == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		orders, err := svc.ListUserOrders(ctx, claims.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			out = append(out, orderToResponse(order))
		}
		responses.WriteSuccess(w, orderListResponse{Orders: out})
	}
}

// MySubscription returns the user's current subscription, or 404 when they
// have none.
func MySubscription(svc billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}
		claims := middleware.ClaimsFromContext(ctx)
		if claims == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		sub, err := svc.GetUserSubscription(ctx, claims.UserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if sub == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no subscription"))
			return
		}

		responses.WriteSuccess(w, subscriptionToResponse(sub))
	}
}

func orderToResponse(order models.Order) orderResponse {
	return orderResponse{
		ID:                order.ID.String(),
		CheckoutSessionID: order.CheckoutSessionID,
		AmountSubtotal:    order.AmountSubtotal,
		AmountTotal:       order.AmountTotal,
		Currency:          order.Currency,
		PaymentStatus:     order.PaymentStatus,
		Status:            string(order.Status),
		CreatedAt:         order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func subscriptionToResponse(sub *models.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		SubscriptionID:     sub.StripeSubscriptionID,
		PriceID:            sub.PriceID,
		Status:             string(sub.Status),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		PaymentMethodBrand: sub.PaymentMethodBrand,
		PaymentMethodLast4: sub.PaymentMethodLast4,
	}
	if sub.CurrentPeriodStart != nil {
		v := sub.CurrentPeriodStart.UTC().Format(time.RFC3339)
		resp.CurrentPeriodStart = &v
	}
	if sub.CurrentPeriodEnd != nil {
		v := sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
		resp.CurrentPeriodEnd = &v
	}
	return resp
}
