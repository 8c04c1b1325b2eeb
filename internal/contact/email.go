package contact

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

var copenhagen = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		return time.UTC
	}
	return loc
}()

var htmlTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
      .header { background: linear-gradient(135deg, #4fa88b 0%, #6ba896 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
      .header h1 { margin: 0; font-size: 24px; }
      .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
      .field { margin-bottom: 20px; }
      .field-label { font-weight: 600; color: #4fa88b; margin-bottom: 5px; }
      .field-value { background: white; padding: 12px; border-radius: 5px; border-left: 3px solid #4fa88b; }
      .message-box { background: white; padding: 15px; border-radius: 5px; border-left: 3px solid #4fa88b; white-space: pre-wrap; word-wrap: break-word; }
      .footer { margin-top: 30px; padding-top: 20px; border-top: 2px solid #e0e0e0; text-align: center; color: #666; font-size: 12px; }
    </style>
  </head>
  <body>
    <div class="header">
      <h1>Ny Kontaktformular Besked</h1>
      <p style="margin: 5px 0 0 0; opacity: 0.9;">BusyBiz Hjemmeside</p>
    </div>
    <div class="content">
      <div class="field">
        <div class="field-label">Navn:</div>
        <div class="field-value">{{.Name}}</div>
      </div>
      <div class="field">
        <div class="field-label">Email:</div>
        <div class="field-value"><a href="mailto:{{.Email}}" style="color: #4fa88b; text-decoration: none;">{{.Email}}</a></div>
      </div>
      <div class="field">
        <div class="field-label">Emne:</div>
        <div class="field-value">{{.Subject}}</div>
      </div>
      <div class="field">
        <div class="field-label">Besked:</div>
        <div class="message-box">{{.Body}}</div>
      </div>
    </div>
    <div class="footer">
      <p>Denne besked blev sendt fra BusyBiz kontaktformularen</p>
      <p>Modtaget: {{.ReceivedAt}}</p>
    </div>
  </body>
</html>`))

type emailData struct {
	Name       string
	Email      string
	Subject    string
	Body       string
	ReceivedAt string
}

func renderHTML(msg Message, receivedAt time.Time) string {
	subject := msg.Subject
	if subject == "" {
		subject = "Ingen emne"
	}
	var buf strings.Builder
	err := htmlTemplate.Execute(&buf, emailData{
		Name:       msg.Name,
		Email:      msg.Email,
		Subject:    subject,
		Body:       msg.Body,
		ReceivedAt: receivedAt.In(copenhagen).Format("02-01-2006 15.04"),
	})
	if err != nil {
		// Execute only fails on a writer error, which strings.Builder never
		// produces. Fall back to the plain text body regardless.
		return renderText(msg, receivedAt)
	}
	return buf.String()
}

func renderText(msg Message, receivedAt time.Time) string {
	subject := msg.Subject
	if subject == "" {
		subject = "Ingen emne"
	}
	return fmt.Sprintf(`Ny Kontaktformular Besked fra BusyBiz

Navn: %s
Email: %s
Emne: %s

Besked:
%s

---
Modtaget: %s`,
		msg.Name, msg.Email, subject, msg.Body,
		receivedAt.In(copenhagen).Format("02-01-2006 15.04"))
}
