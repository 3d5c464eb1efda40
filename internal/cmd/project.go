package cmd

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/generator"
	"github.com/nge-dev/nge/internal/scaffold"
)

// Location finds the emails directory of a project.
type Location struct {
	Root      string `help:"Nuxt project root" default:"." env:"NGE_ROOT" type:"path"`
	EmailsDir string `help:"Email templates directory; defaults to app/emails, src/emails or emails below the root" env:"NGE_EMAILS_DIR"`
}

// TemplatesDir returns the configured emails directory or the one detected below Root.
func (l *Location) TemplatesDir(fs afero.Fs) string {
	if l.EmailsDir == "" {
		return scaffold.FindEmailsDir(fs, l.Root)
	}
	if filepath.IsAbs(l.EmailsDir) {
		return l.EmailsDir
	}
	return filepath.Join(l.Root, l.EmailsDir)
}

// Project holds the generation settings shared by generate, regenerate, watch and serve.
type Project struct {
	Location        `embed:""`
	ServerDir       string        `help:"Route handler output directory, relative to the root" default:"server/api/emails" env:"NGE_SERVER_DIR"`
	UtilsDir        string        `help:"Server utils directory receiving nge.ts, relative to the root" default:"server/utils" env:"NGE_UTILS_DIR"`
	BuildDir        string        `help:"Build directory receiving preview wrappers and the manifest, relative to the root" default:".nuxt" env:"NGE_BUILD_DIR"`
	Guard           bool          `help:"Generated handlers check the access credential before rendering" default:"false" env:"NGE_GUARD"`
	GuardRateLimit  int           `help:"Requests per window and client IP allowed by generated guards (0 disables)" default:"60" env:"NGE_GUARD_RATE_LIMIT"`
	GuardRateWindow time.Duration `help:"Rate limit window of generated guards" default:"1m" env:"NGE_GUARD_RATE_WINDOW"`
	SendHook        string        `help:"Hook called by generated handlers when no send handler is configured" default:"nge:send" env:"NGE_SEND_HOOK"`
	TextOnly        bool          `help:"Extract props by text scanning only, without the TypeScript parser" default:"false" env:"NGE_TEXT_ONLY"`
}

// GeneratorConfig resolves the generator paths against Root.
func (p *Project) GeneratorConfig(fs afero.Fs) generator.Config {
	cfg := generator.Config{
		TemplatesDir: p.TemplatesDir(fs),
		ServerDir:    filepath.Join(p.Root, p.ServerDir),
		WrappersDir:  filepath.Join(p.Root, p.BuildDir, "email-wrappers"),
		ManifestDir:  filepath.Join(p.Root, p.BuildDir, "nge"),
		Guard:        p.Guard,
		RateLimit:    p.GuardRateLimit,
		RateWindow:   p.GuardRateWindow,
		SendHook:     p.SendHook,
		TextOnly:     p.TextOnly,
	}
	if p.UtilsDir != "" {
		cfg.UtilsDir = filepath.Join(p.Root, p.UtilsDir)
	}
	// "~/emails" only resolves for the detected layouts.
	if p.EmailsDir != "" {
		cfg.TemplateImportBase = filepath.ToSlash(cfg.TemplatesDir)
	}
	return cfg
}

func (p *Project) Generator(fs afero.Fs, logger *slog.Logger) *generator.Generator {
	return generator.New(fs, p.GeneratorConfig(fs), logger)
}
