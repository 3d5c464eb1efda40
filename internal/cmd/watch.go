package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/watch"
)

type Watch struct {
	Project  `embed:""`
	Debounce time.Duration `help:"Quiet period after the last change before regenerating" default:"250ms" env:"NGE_WATCH_DEBOUNCE"`
}

// Run generates once and again after every settled burst of template changes.
func (w *Watch) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()
	gen := w.Generator(fs, logger)
	dir := gen.Config().TemplatesDir
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return fmt.Errorf("templates directory %s does not exist; run nge setup first", dir)
	}
	if _, err := gen.GenerateAll(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(dir, w.Debounce, func(ctx context.Context) error {
		_, err := gen.GenerateAll(ctx)
		return err
	}, logger)
	if err != nil {
		return err
	}
	defer watcher.Close()
	return watcher.Run(ctx)
}
