package contact

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/busybiz/busybiz-backend/pkg/config"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

type stubMailer struct {
	lastParams *resend.SendEmailRequest
	response   *resend.SendEmailResponse
	err        error
	calls      int
}

func (m *stubMailer) Send(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	m.calls++
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func testResendConfig() config.ResendConfig {
	return config.ResendConfig{
		APIKey:    "re_test_key",
		FromEmail: "BusyBiz Kontaktformular <onboarding@resend.dev>",
		ToEmail:   "owner@busybiz.dk",
	}
}

func newContactService(t *testing.T, mailer Mailer, cfg config.ResendConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Mailer: mailer,
		Config: cfg,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func TestSendMessageRelaysEmail(t *testing.T) {
	mailer := &stubMailer{response: &resend.SendEmailResponse{Id: "email_123"}}
	svc := newContactService(t, mailer, testResendConfig())

	id, err := svc.SendMessage(context.Background(), Message{
		Name:    "Anna Jensen",
		Email:   "anna@example.dk",
		Subject: "SEO hjælp",
		Body:    "Hej, jeg vil gerne høre mere om jeres SEO-pakke.",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	if id != "email_123" {
		t.Fatalf("expected provider id, got %q", id)
	}

	params := mailer.lastParams
	if params.ReplyTo != "anna@example.dk" {
		t.Fatalf("reply-to must point at the visitor, got %q", params.ReplyTo)
	}
	if len(params.To) != 1 || params.To[0] != "owner@busybiz.dk" {
		t.Fatalf("unexpected recipient: %v", params.To)
	}
	if !strings.Contains(params.Subject, "Anna Jensen") || !strings.Contains(params.Subject, "SEO hjælp") {
		t.Fatalf("unexpected subject: %q", params.Subject)
	}
	if !strings.Contains(params.Html, "Anna Jensen") || !strings.Contains(params.Text, "SEO-pakke") {
		t.Fatal("expected message content in both bodies")
	}
}

func TestSendMessageValidationSkipsProvider(t *testing.T) {
	mailer := &stubMailer{response: &resend.SendEmailResponse{Id: "email_123"}}
	svc := newContactService(t, mailer, testResendConfig())

	cases := []struct {
		name string
		msg  Message
	}{
		{"missing name", Message{Email: "a@b.dk", Body: "hej"}},
		{"missing email", Message{Name: "Anna", Body: "hej"}},
		{"missing message", Message{Name: "Anna", Email: "a@b.dk"}},
		{"bad email shape", Message{Name: "Anna", Email: "not-an-email", Body: "hej"}},
		{"email with spaces", Message{Name: "Anna", Email: "a b@c.dk", Body: "hej"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SendMessage(context.Background(), tc.msg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if mailer.calls != 0 {
		t.Fatalf("no provider call expected on validation failure, got %d", mailer.calls)
	}
}

func TestSendMessageFailsClosedWhenUnconfigured(t *testing.T) {
	svc := newContactService(t, nil, config.ResendConfig{})

	_, err := svc.SendMessage(context.Background(), Message{
		Name:  "Anna",
		Email: "anna@example.dk",
		Body:  "hej",
	})
	if err == nil {
		t.Fatal("expected failure when the relay is not configured")
	}
	if !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendMessageProviderFailure(t *testing.T) {
	mailer := &stubMailer{err: errors.New("resend unavailable")}
	svc := newContactService(t, mailer, testResendConfig())

	_, err := svc.SendMessage(context.Background(), Message{
		Name:  "Anna",
		Email: "anna@example.dk",
		Body:  "hej",
	})
	if err == nil {
		t.Fatal("expected provider failure to surface")
	}
}

func TestRenderBodiesDefaultSubject(t *testing.T) {
	msg := Message{Name: "Anna", Email: "anna@example.dk", Body: "hej"}
	at := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	html := renderHTML(msg, at)
	if !strings.Contains(html, "Ingen emne") {
		t.Fatal("expected default subject in html body")
	}
	text := renderText(msg, at)
	if !strings.Contains(text, "Ingen emne") {
		t.Fatal("expected default subject in text body")
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	msg := Message{
		Name:  "Anna",
		Email: "anna@example.dk",
		Body:  `<script>alert("x")</script>`,
	}
	html := renderHTML(msg, time.Now())
	if strings.Contains(html, "<script>") {
		t.Fatal("message content must be escaped")
	}
}
