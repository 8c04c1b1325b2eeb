package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/busybiz/busybiz-backend/pkg/auth"
	"github.com/busybiz/busybiz-backend/pkg/config"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "busybiz-test"}
}

func mintToken(t *testing.T, cfg config.JWTConfig, userID uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(cfg, time.Now(), userID, "anna@example.dk", time.Hour)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func claimsCapturingHandler(captured **auth.AccessTokenClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	var captured *auth.AccessTokenClaims
	handler := Auth(testJWTConfig(), logg)(claimsCapturingHandler(&captured))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if captured != nil {
		t.Fatal("handler must not run without credentials")
	}
}

func TestAuthSeedsClaims(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := testJWTConfig()
	userID := uuid.New()

	var captured *auth.AccessTokenClaims
	handler := Auth(cfg, logg)(claimsCapturingHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/me/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, userID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured == nil || captured.UserID != userID {
		t.Fatalf("expected claims for %s, got %+v", userID, captured)
	}
}

func TestOptionalAuthAllowsGuests(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	var captured *auth.AccessTokenClaims
	handler := OptionalAuth(testJWTConfig(), logg)(claimsCapturingHandler(&captured))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout/sessions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured != nil {
		t.Fatal("guest request must carry no claims")
	}
}

func TestOptionalAuthRejectsBadToken(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	var captured *auth.AccessTokenClaims
	handler := OptionalAuth(testJWTConfig(), logg)(claimsCapturingHandler(&captured))

	req := httptest.NewRequest(http.MethodPost, "/checkout/sessions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("a malformed token must not downgrade to guest, got %d", rec.Code)
	}
}
