package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendPasswordRecovery(ctx context.Context, email, code string) error {
	if email == "" {
		return fmt.Errorf("recipient is required")
	}
	subject, html := passwordRecoveryEmailTemplate(code, s.appName)
	return s.send(ctx, "password_recovery", email, subject, html, slog.String("code", code))
}

func (s *EmailService) SendVerification(ctx context.Context, email, name, key string) error {
	if email == "" {
		return fmt.Errorf("recipient is required")
	}
	verifyURL := fmt.Sprintf("%s/plumbing/auth/verify/%s", s.appURL, url.PathEscape(key))
	subject, html := verificationEmailTemplate(name, verifyURL, s.appName)
	return s.send(ctx, "verification", email, subject, html, slog.String("url", verifyURL))
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, html string, extra slog.Attr) error {
	if s.isDev {
		slog.InfoContext(ctx, "email sent (dev mode)", "type", kind, "to", to, "subject", subject, extra)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s No-Reply <%s>", s.appName, s.fromEmail),
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	slog.InfoContext(ctx, "email sent", "type", kind, "to", to)
	return nil
}
