package cmd

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/send"
)

func (s *Serve) Dispatcher(fs afero.Fs, logger *slog.Logger) (*send.Dispatcher, error) {
	return s.dispatcher(fs, logger)
}
