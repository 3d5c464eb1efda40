package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
)

type Generate struct {
	Project `embed:""`
}

// Run is called by Kong when the generate command is executed.
func (g *Generate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := g.Generator(afero.NewOsFs(), logger)
	_, err := gen.GenerateAll(ctx)
	return err
}

type Regenerate struct {
	Project `embed:""`
}

// Run removes the files of the previous pass, then generates again.
func (r *Regenerate) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := r.Generator(afero.NewOsFs(), logger)
	if err := gen.Clean(); err != nil {
		return err
	}
	_, err := gen.GenerateAll(ctx)
	return err
}
