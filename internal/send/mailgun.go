package send

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

const mailgunTimeout = 30 * time.Second

type mailgunSender struct {
	client *mailgun.MailgunImpl
}

// NewMailgunSender targets the EU API when region is "eu".
func NewMailgunSender(apiKey, domain, region string) (Sender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: MAILGUN_API_KEY is required", ErrInvalidConfig)
	}
	if domain == "" {
		return nil, fmt.Errorf("%w: MAILGUN_DOMAIN is required", ErrInvalidConfig)
	}
	mg := mailgun.NewMailgun(domain, apiKey)
	if region == "eu" {
		mg.SetAPIBase("https://api.eu.mailgun.net/v3")
	}
	return &mailgunSender{client: mg}, nil
}

func (s *mailgunSender) Send(ctx context.Context, msg Message, _ literal.Value) (string, error) {
	m := s.client.NewMessage(msg.From, msg.Subject, "", msg.To...)
	m.SetHtml(msg.HTML)

	ctx, cancel := context.WithTimeout(ctx, mailgunTimeout)
	defer cancel()

	_, id, err := s.client.Send(ctx, m)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return id, nil
}

func (s *mailgunSender) Name() string { return ProviderMailgun }
