package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"applybrain-backend/config"
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/logger"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional mail through Resend when an API key is
// set, otherwise through SMTP.
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	appURL    string
	resend    *resend.Client
	send      func(to, subject, html string) error
}

// WelcomeEmailData holds the data for the onboarding welcome email
type WelcomeEmailData struct {
	FirstName string
	Role      string
	Skills    []string
	HomeURL   string
}

func NewEmailService(cfg *config.Config) *EmailService {
	s := &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		appURL:    cfg.FrontendURL,
	}
	if cfg.ResendAPIKey != "" {
		s.resend = resend.NewClient(cfg.ResendAPIKey)
		s.send = s.sendResend
	} else {
		s.send = s.sendSMTP
	}
	return s
}

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Welcome to ApplyBrain</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h1>You're all set, {{.FirstName}}!</h1>
        <p>Your profile is ready. We'll start matching you with <strong>{{.Role}}</strong> roles right away.</p>
        {{if .Skills}}<p>Skills we'll highlight: {{range $i, $s := .Skills}}{{if $i}}, {{end}}{{$s}}{{end}}</p>{{end}}
        <p><a href="{{.HomeURL}}" style="display: inline-block; background: #6366f1; color: white; padding: 12px 24px; border-radius: 8px; text-decoration: none;">Go to your dashboard</a></p>
    </div>
</body>
</html>`

var welcomeTmpl = template.Must(template.New("welcome").Parse(welcomeEmailTemplate))

// RenderWelcome renders the welcome email body.
func RenderWelcome(data WelcomeEmailData) (string, error) {
	var body bytes.Buffer
	if err := welcomeTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

// OnboardingCompleted sends the welcome email for a freshly submitted profile.
func (s *EmailService) OnboardingCompleted(ctx context.Context, p *domain.UserProfile) error {
	if !s.IsConfigured() {
		logger.Log.Debug("Email not configured; skipping welcome email", "user_id", p.UserID)
		return nil
	}
	html, err := RenderWelcome(WelcomeEmailData{
		FirstName: p.FirstName,
		Role:      p.Role,
		Skills:    p.Skills,
		HomeURL:   s.appURL + domain.PathHome,
	})
	if err != nil {
		return err
	}
	return s.send(p.Email, "Welcome to ApplyBrain", html)
}

func (s *EmailService) sendResend(to, subject, html string) error {
	_, err := s.resend.Emails.Send(&resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailService) sendSMTP(to, subject, html string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail, to, subject, html,
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured reports whether either transport has credentials.
func (s *EmailService) IsConfigured() bool {
	if s.resend != nil {
		return true
	}
	return s.host != "" && s.username != "" && s.password != ""
}
