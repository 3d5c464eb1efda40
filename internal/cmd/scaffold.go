package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/scaffold"
)

type Add struct {
	Location `embed:""`
	Name     string `arg:"" help:"Template name, e.g. welcome or v1/welcome"`
	Dir      string `help:"Directory to create the template in, relative to the emails directory"`
	Data     bool   `help:"Also write <name>.data.ts with an example request body" default:"false"`
}

// Run is called by Kong when the add command is executed.
func (a *Add) Run(logger *slog.Logger) error {
	fs := afero.NewOsFs()
	emailsDir := a.TemplatesDir(fs)

	dir := a.Dir
	if _, subDir, err := scaffold.ParseName(a.Name); err != nil {
		return err
	} else if subDir == "" && dir == "" && scaffold.Interactive() {
		dirs, err := scaffold.ListDirectories(fs, emailsDir)
		if err != nil {
			return err
		}
		prompter := scaffold.NewLinePrompter(os.Stdout)
		dir, err = scaffold.ChooseDirectory(prompter, dirs)
		_ = prompter.Close()
		if err != nil {
			return err
		}
	}

	res, err := scaffold.AddTemplate(fs, emailsDir, a.Name, scaffold.AddOptions{Dir: dir, Data: a.Data})
	if err != nil {
		return err
	}
	for _, f := range res.Files {
		logger.Info("Created", "file", f)
	}
	logger.Info("Email template ready",
		"template", res.RelativePath,
		"preview", common.PreviewPath(res.RelativePath),
		"route", "POST "+common.RoutePath(res.RelativePath))
	return nil
}

type Setup struct {
	Location `embed:""`
}

// Run is called by Kong when the setup command is executed.
func (s *Setup) Run(logger *slog.Logger) error {
	fs := afero.NewOsFs()
	emailsDir := s.TemplatesDir(fs)
	logger.Info("Setting up emails directory", "dir", emailsDir)

	res, err := scaffold.Setup(fs, emailsDir)
	if err != nil {
		return err
	}
	for _, f := range res.Created {
		logger.Info("Created", "file", f)
	}
	for _, f := range res.Skipped {
		logger.Info("Skipped (exists)", "file", f)
	}
	logger.Info("Setup complete. Run 'nge serve' and open /__emails/example to preview.")
	return nil
}
