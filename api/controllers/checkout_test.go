package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/busybiz/busybiz-backend/api/middleware"
	"github.com/busybiz/busybiz-backend/internal/checkout"
	"github.com/busybiz/busybiz-backend/pkg/auth"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type stubCheckoutService struct {
	lastInput checkout.CreateSessionInput
	url       string
	err       error
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, input checkout.CreateSessionInput) (string, error) {
	s.lastInput = input
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func testControllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestCreateCheckoutSessionReturnsURL(t *testing.T) {
	svc := &stubCheckoutService{url: "https://checkout.stripe.com/c/pay/cs_1"}
	handler := CreateCheckoutSession(svc, testControllerLogger())

	body := strings.NewReader(`{"priceId":"price_seo","successUrl":"https://busybiz.dk/success","cancelUrl":"https://busybiz.dk/"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["url"] != "https://checkout.stripe.com/c/pay/cs_1" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if svc.lastInput.PriceID != "price_seo" || svc.lastInput.User != nil {
		t.Fatalf("unexpected input: %+v", svc.lastInput)
	}
}

func TestCreateCheckoutSessionForwardsClaims(t *testing.T) {
	svc := &stubCheckoutService{url: "https://checkout.stripe.com/c/pay/cs_2"}
	handler := CreateCheckoutSession(svc, testControllerLogger())

	body := strings.NewReader(`{"priceId":"price_seo","successUrl":"https://busybiz.dk/success","cancelUrl":"https://busybiz.dk/"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", body)
	claims := &auth.AccessTokenClaims{Email: "anna@example.dk"}
	req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastInput.User != claims {
		t.Fatal("expected claims forwarded to the service")
	}
}

func TestCreateCheckoutSessionMissingPriceID(t *testing.T) {
	svc := &stubCheckoutService{url: "https://checkout.stripe.com/c/pay/cs_3"}
	handler := CreateCheckoutSession(svc, testControllerLogger())

	body := strings.NewReader(`{"successUrl":"https://busybiz.dk/success","cancelUrl":"https://busybiz.dk/"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.lastInput.PriceID != "" {
		t.Fatal("service must not be called on validation failure")
	}
}

func TestCreateCheckoutSessionServiceError(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeValidation, "No such price: 'price_x'")}
	handler := CreateCheckoutSession(svc, testControllerLogger())

	body := strings.NewReader(`{"priceId":"price_x","successUrl":"https://busybiz.dk/success","cancelUrl":"https://busybiz.dk/"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/sessions", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown price, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No such price") {
		t.Fatalf("expected provider message, got %s", rec.Body.String())
	}
}
