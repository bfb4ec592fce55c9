package services

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"TalentHive/internal/logger"
)

type EmailService struct {
	Client *resend.Client
	From   string
	log    *logger.Logger
}

func NewEmailService(apiKey, from string, log *logger.Logger) *EmailService {
	if from == "" {
		from = "onboarding@resend.dev" // Resend's default test sender
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info("email service initialized", "from", from, "api_key", logger.Mask(apiKey))
	return &EmailService{Client: resend.NewClient(apiKey), From: from, log: log}
}

// Send sends one HTML email via Resend.
func (es *EmailService) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    es.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}
	sent, err := es.Client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	es.log.Debug("email sent", "to", to, "id", sent.Id)
	return nil
}
