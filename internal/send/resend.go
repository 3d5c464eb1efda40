package send

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

type resendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) (Sender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: RESEND_API_KEY is required", ErrInvalidConfig)
	}
	return &resendSender{client: resend.NewClient(apiKey)}, nil
}

func (s *resendSender) Send(ctx context.Context, msg Message, _ literal.Value) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return sent.Id, nil
}

func (s *resendSender) Name() string { return ProviderResend }
