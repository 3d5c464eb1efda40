package send

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

// devRecord is written next to every captured email.
type devRecord struct {
	ID      string        `json:"id"`
	SentAt  time.Time     `json:"sentAt"`
	Message Message       `json:"message"`
	Data    literal.Value `json:"data"`
}

// DevSender captures emails as files instead of delivering them: <id>.html
// holds the body and <id>.json the envelope and request data.
type DevSender struct {
	fs  afero.Fs
	dir string
	now func() time.Time
}

func NewDevSender(fs afero.Fs, dir string) (*DevSender, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: dev outbox directory is required", ErrInvalidConfig)
	}
	return &DevSender{fs: fs, dir: dir, now: time.Now}, nil
}

func (s *DevSender) Send(ctx context.Context, msg Message, data literal.Value) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create outbox: %v", ErrSendFailed, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(devRecord{ID: id, SentAt: s.now().UTC(), Message: msg, Data: data}); err != nil {
		return "", fmt.Errorf("%w: encode record: %v", ErrSendFailed, err)
	}

	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, id+".html"), []byte(msg.HTML), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, id+".json"), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return id, nil
}

func (s *DevSender) Name() string { return ProviderDev }
