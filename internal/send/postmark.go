package send

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

type postmarkSender struct {
	client *postmark.Client
}

func NewPostmarkSender(serverToken, accountToken string) (Sender, error) {
	if serverToken == "" {
		return nil, fmt.Errorf("%w: POSTMARK_SERVER_TOKEN is required", ErrInvalidConfig)
	}
	return &postmarkSender{client: postmark.NewClient(serverToken, accountToken)}, nil
}

func (s *postmarkSender) Send(ctx context.Context, msg Message, _ literal.Value) (string, error) {
	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:       msg.From,
		To:         strings.Join(msg.To, ","),
		Subject:    msg.Subject,
		Tag:        "nge",
		HTMLBody:   msg.HTML,
		TrackOpens: true,
	})
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return "", errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return resp.MessageID, nil
}

func (s *postmarkSender) Name() string { return ProviderPostmark }
