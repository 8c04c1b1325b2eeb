package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/busybiz/busybiz-backend/pkg/config"
	pkgerrors "github.com/busybiz/busybiz-backend/pkg/errors"
	"github.com/busybiz/busybiz-backend/pkg/logger"
)

// Message is a validated contact form submission.
type Message struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// Mailer sends a single transactional email. The production implementation
// wraps Resend.
type Mailer interface {
	Send(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type resendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) Mailer {
	if apiKey == "" {
		return nil
	}
	return &resendMailer{client: resend.NewClient(apiKey)}
}

func (m *resendMailer) Send(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	return m.client.Emails.SendWithContext(ctx, params)
}

type ServiceParams struct {
	Mailer Mailer
	Config config.ResendConfig
	Logger *logger.Logger
}

// Service relays contact form submissions to the site owner's inbox. A nil
// Mailer means the relay is not configured and every send fails closed.
type Service interface {
	SendMessage(ctx context.Context, msg Message) (string, error)
}

type service struct {
	mailer Mailer
	cfg    config.ResendConfig
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		mailer: params.Mailer,
		cfg:    params.Config,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

func (s *service) SendMessage(ctx context.Context, msg Message) (string, error) {
	if err := validateMessage(msg); err != nil {
		return "", err
	}
	if s.mailer == nil || !s.cfg.Configured() {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "email service not configured")
	}

	subject := msg.Subject
	if subject == "" {
		subject = "Kontaktformular"
	}

	params := &resend.SendEmailRequest{
		From:    s.cfg.FromEmail,
		To:      []string{s.cfg.ToEmail},
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("Ny besked fra %s - %s", msg.Name, subject),
		Html:    renderHTML(msg, s.now().UTC()),
		Text:    renderText(msg, s.now().UTC()),
	}

	sent, err := s.mailer.Send(ctx, params)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send contact email")
	}
	if sent == nil || sent.Id == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "email provider returned no id")
	}

	ctx = s.logg.WithField(ctx, "email_id", sent.Id)
	s.logg.Info(ctx, "contact email relayed")
	return sent.Id, nil
}

func validateMessage(msg Message) error {
	missing := []string{}
	if strings.TrimSpace(msg.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(msg.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(msg.Body) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Missing required fields").
			WithDetails(map[string]any{"fields": missing})
	}
	if !looksLikeEmail(msg.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "Invalid email format")
	}
	return nil
}

// looksLikeEmail applies the same loose shape check the contact form uses:
// one @ with a dot somewhere after it, no whitespace.
func looksLikeEmail(email string) bool {
	if strings.ContainsAny(email, " \t\n") {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
