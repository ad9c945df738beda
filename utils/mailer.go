package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESMailer delivers one-time codes over email via AWS SES.
type SESMailer struct {
	client *ses.Client
	source string
}

func NewSESMailer(client *ses.Client) *SESMailer {
	return &SESMailer{client: client, source: os.Getenv("SES_EMAIL")}
}

func (m *SESMailer) SendOTPEmail(ctx context.Context, to, purpose, code string) error {
	subject := "Your NutriBowl Login OTP"
	body := fmt.Sprintf("Hello %s, your login OTP is %s", to, code)
	if purpose == "signup" {
		subject = "Verify your email - NutriBowl Signup"
		body = fmt.Sprintf("Hello %s, thank you for signing up! Your verification OTP is %s", to, code)
	}
	return m.send(ctx, to, subject, body)
}

func (m *SESMailer) send(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(m.source),
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		slog.Error("SES send failed", "to", to, "error", err)
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}
