package controllers

import (
	"context"
	"net/http"

	"github.com/busybiz/busybiz-backend/api/responses"
	"github.com/busybiz/busybiz-backend/api/validators"
	"github.com/busybiz/busybiz-backend/internal/contact"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// SendContactMessage relays a contact form submission to the site owner.
func SendContactMessage(svc contact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var payload contactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		id, err := svc.SendMessage(ctx, contact.Message{
			Name:    payload.Name,
			Email:   payload.Email,
			Subject: payload.Subject,
			Body:    payload.Message,
		})
		if err != nil {
			writeContactError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, contactResponse{
			Success: true,
			Message: "Email sent successfully",
			ID:      id,
		})
	}
}

// writeContactError pins the relay's error contract: validation stays 400,
// everything else is a 500 with a stable message so provider internals never
// reach the visitor.
func writeContactError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed != nil && typed.Code() == pkgerrors.CodeValidation {
		responses.WriteError(ctx, logg, w, err)
		return
	}

	if logg != nil {
		logg.Error(ctx, "contact.relay_failed", err)
	}

	msg := "Failed to send email"
	if typed != nil && typed.Code() == pkgerrors.CodeInternal {
		msg = "Email service not configured"
	}
	responses.WriteErrorBody(w, http.StatusInternalServerError, responses.ErrorBody{Error: msg})
}
