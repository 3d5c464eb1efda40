package send

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

type logSender struct {
	logger *slog.Logger
}

// NewLogSender returns a sender that only logs the envelope.
func NewLogSender(logger *slog.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, msg Message, _ literal.Value) (string, error) {
	id := uuid.NewString()
	s.logger.Info("Email captured",
		"id", id,
		"from", msg.From,
		"to", msg.To,
		"subject", msg.Subject,
		"htmlLength", len(msg.HTML))
	return id, nil
}

func (s *logSender) Name() string { return ProviderLog }
