package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/busybiz/busybiz-backend/internal/contact"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
)

type stubContactService struct {
	lastMsg contact.Message
	id      string
	err     error
	calls   int
}

func (s *stubContactService) SendMessage(ctx context.Context, msg contact.Message) (string, error) {
	s.calls++
	s.lastMsg = msg
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

func TestSendContactMessageSuccess(t *testing.T) {
	svc := &stubContactService{id: "email_1"}
	handler := SendContactMessage(svc, testControllerLogger())

	body := strings.NewReader(`{"name":"Anna","email":"anna@example.dk","subject":"SEO","message":"Hej"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp contactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.ID != "email_1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if svc.lastMsg.Body != "Hej" {
		t.Fatalf("unexpected message: %+v", svc.lastMsg)
	}
}

func TestSendContactMessageValidation(t *testing.T) {
	svc := &stubContactService{id: "email_1"}
	handler := SendContactMessage(svc, testControllerLogger())

	cases := []string{
		`{"email":"anna@example.dk","message":"Hej"}`,
		`{"name":"Anna","message":"Hej"}`,
		`{"name":"Anna","email":"anna@example.dk"}`,
		`{"name":"Anna","email":"not-an-email","message":"Hej"}`,
	}
	for _, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %s: expected 400, got %d", payload, rec.Code)
		}
	}
	if svc.calls != 0 {
		t.Fatalf("service must not be called on validation failure, got %d calls", svc.calls)
	}
}

func TestSendContactMessageProviderFailureIs500(t *testing.T) {
	svc := &stubContactService{err: pkgerrors.New(pkgerrors.CodeDependency, "resend unavailable")}
	handler := SendContactMessage(svc, testControllerLogger())

	body := strings.NewReader(`{"name":"Anna","email":"anna@example.dk","message":"Hej"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to send email") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestSendContactMessageUnconfiguredIs500(t *testing.T) {
	svc := &stubContactService{err: pkgerrors.New(pkgerrors.CodeInternal, "email service not configured")}
	handler := SendContactMessage(svc, testControllerLogger())

	body := strings.NewReader(`{"name":"Anna","email":"anna@example.dk","message":"Hej"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Email service not configured") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
