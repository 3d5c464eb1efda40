package send

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

// Sender is a delivery backend.
type Sender interface {
	Send(ctx context.Context, msg Message, data literal.Value) (id string, err error)
	Name() string
}

// FromSender adapts a Sender to Func. Message fields are taken from data.
func FromSender(s Sender, defaultFrom string, logger *slog.Logger) Func {
	return func(ctx context.Context, html string, data literal.Value) error {
		msg, err := MessageFromData(html, data, defaultFrom)
		if err != nil {
			return err
		}
		id, err := s.Send(ctx, msg, data)
		if err != nil {
			return err
		}
		logger.Info("Email sent", "provider", s.Name(), "id", id, "to", msg.To, "subject", msg.Subject)
		return nil
	}
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg Config, fs afero.Fs, logger *slog.Logger) (Sender, error) {
	switch cfg.Provider {
	case ProviderPostmark:
		return NewPostmarkSender(cfg.PostmarkServerToken, cfg.PostmarkAccountToken)
	case ProviderResend:
		return NewResendSender(cfg.ResendAPIKey)
	case ProviderMailgun:
		return NewMailgunSender(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunRegion)
	case ProviderDev:
		return NewDevSender(fs, cfg.DevDir)
	case ProviderLog, "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
