package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/codegen/generator/nuxt"
	"github.com/nge-dev/nge/internal/codegen/generator/openapi"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
	"github.com/nge-dev/nge/internal/codegen/scanner"
)

var ErrMissingCompanionFile = errors.New("missing companion file")

const (
	ManifestFile = "nge.manifest.json"
	OpenAPIFile  = "openapi.json"
)

// Config locates the template tree and the generated outputs.
type Config struct {
	TemplatesDir string
	ServerDir    string
	// UtilsDir receives the server utility the route handlers import.
	// Defaults to the utils directory two levels above ServerDir.
	UtilsDir    string
	WrappersDir string
	ManifestDir string
	// LayoutImport is the preview layout component imported by every wrapper.
	LayoutImport string
	// TemplateImportBase prefixes template imports, e.g. "~/emails".
	TemplateImportBase string
	// Guard makes route handlers call the access check before rendering.
	Guard    bool
	SendHook string
	// RateLimit and RateWindow configure the guard's per-IP limit.
	RateLimit  int
	RateWindow time.Duration
	// TextOnly disables the structured parser and extracts props by text scanning.
	TextOnly bool
}

// RouteSink receives the routes of a finished pass.
type RouteSink interface {
	Register(routes []meta.RouteRegistration) error
}

// RouteSinkFunc adapts a function to RouteSink.
type RouteSinkFunc func(routes []meta.RouteRegistration) error

func (f RouteSinkFunc) Register(routes []meta.RouteRegistration) error { return f(routes) }

type Generator struct {
	fs        afero.Fs
	cfg       Config
	extractor *scanner.Extractor
	sink      RouteSink
	logger    *slog.Logger
}

func New(fs afero.Fs, cfg Config, logger *slog.Logger) *Generator {
	if cfg.TemplateImportBase == "" {
		cfg.TemplateImportBase = "~/emails"
	}
	if cfg.LayoutImport == "" {
		cfg.LayoutImport = "~/layouts/nge-preview.vue"
	}
	if cfg.ManifestDir == "" {
		cfg.ManifestDir = cfg.WrappersDir
	}
	if cfg.UtilsDir == "" {
		cfg.UtilsDir = filepath.Join(filepath.Dir(filepath.Dir(cfg.ServerDir)), "utils")
	}
	var parser scanner.ComponentParser
	if !cfg.TextOnly {
		parser = scanner.NewTreeSitterParser()
	}
	return &Generator{
		fs:        fs,
		cfg:       cfg,
		extractor: scanner.NewExtractor(fs, parser, logger),
		logger:    logger,
	}
}

// SetSink registers a sink called after every successful pass.
func (g *Generator) SetSink(sink RouteSink) {
	g.sink = sink
}

// Config returns the effective configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// GenerateAll runs one generation pass and returns the registered routes.
func (g *Generator) GenerateAll(ctx context.Context) ([]meta.RouteRegistration, error) {
	manifest, err := g.GenerateManifest(ctx)
	if err != nil {
		return nil, err
	}
	return manifest.Routes, nil
}

// GenerateManifest runs one generation pass: every template gets a route
// handler and a preview wrapper, then the manifest and OpenAPI document are
// written. Output files are overwritten wholesale.
func (g *Generator) GenerateManifest(ctx context.Context) (*meta.Manifest, error) {
	units, err := g.Load(ctx)
	if err != nil {
		return nil, err
	}

	manifest := &meta.Manifest{
		Routes: []meta.RouteRegistration{},
		Pages:  []meta.PageRegistration{},
	}
	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, artifact := range g.Artifacts(unit) {
			if err := g.write(artifact.OutputPath, artifact.Source); err != nil {
				return nil, err
			}
			g.logger.Debug("Generated file", "kind", artifact.Kind, "path", artifact.OutputPath)
		}
		manifest.Routes = append(manifest.Routes, meta.RouteRegistration{
			RoutePath:   common.RoutePath(unit.RelativePath),
			Method:      "POST",
			HandlerFile: g.handlerPath(unit),
		})
		manifest.Pages = append(manifest.Pages, meta.PageRegistration{
			Name: common.PageName(unit.RelativePath),
			Path: common.PreviewPath(unit.RelativePath),
			File: g.wrapperPath(unit),
		})
	}

	if len(units) > 0 {
		utils := g.UtilsArtifact()
		if err := g.write(utils.OutputPath, utils.Source); err != nil {
			return nil, err
		}
		manifest.Support = append(manifest.Support, utils.OutputPath)
	}

	if err := g.writeManifest(manifest, units); err != nil {
		return nil, err
	}

	if g.sink != nil {
		if err := g.sink.Register(manifest.Routes); err != nil {
			return nil, fmt.Errorf("register routes: %w", err)
		}
	}

	g.logger.Info("Generated email routes", "templates", len(units), "server", g.cfg.ServerDir, "wrappers", g.cfg.WrappersDir)
	return manifest, nil
}

// Load discovers the templates and extracts their schema and example payload.
// A missing templates directory yields no templates.
func (g *Generator) Load(ctx context.Context) ([]meta.TemplateUnit, error) {
	exists, err := afero.DirExists(g.fs, g.cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("stat templates dir: %w", err)
	}
	if !exists {
		g.logger.Warn("Templates directory does not exist", "dir", g.cfg.TemplatesDir)
		return nil, nil
	}

	units, err := g.discover(g.cfg.TemplatesDir, "")
	if err != nil {
		return nil, err
	}
	for i := range units {
		unit := &units[i]
		unit.Schema = g.extractor.Extract(ctx, unit.SourceFile)
		var payload literal.Value
		ok := false
		if unit.DataFile != "" {
			payload, ok = g.extractor.ExamplePayload(ctx, unit.DataFile, unit.Name)
		}
		unit.ExamplePayload = nuxt.ExamplePayload(payload, ok, unit.Schema)
	}
	return units, nil
}

// discover returns the template units below dir; rel is dir relative to the
// templates root.
func (g *Generator) discover(dir, rel string) ([]meta.TemplateUnit, error) {
	entries, err := afero.ReadDir(g.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read templates dir %s: %w", dir, err)
	}

	var units []meta.TemplateUnit
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if entry.Name() == common.PartialsDir {
				g.logger.Debug("Skipping partials directory", "dir", full)
				continue
			}
			sub, err := g.discover(full, path.Join(rel, entry.Name()))
			if err != nil {
				return nil, err
			}
			units = append(units, sub...)
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".vue") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".vue")
		unit := meta.TemplateUnit{
			Name:          name,
			RelativePath:  common.RelativePath(rel, name),
			SourceFile:    full,
			CompanionFile: filepath.Join(dir, name+".mjml"),
		}
		if ok, _ := afero.Exists(g.fs, unit.CompanionFile); !ok {
			g.logger.Warn("Skipping template",
				"template", unit.RelativePath,
				"error", fmt.Errorf("%w: %s", ErrMissingCompanionFile, unit.CompanionFile))
			continue
		}
		if dataFile := filepath.Join(dir, name+".data.ts"); fileExists(g.fs, dataFile) {
			unit.DataFile = dataFile
		}
		units = append(units, unit)
	}
	return units, nil
}

// Artifacts builds the generated files of one template without writing them.
func (g *Generator) Artifacts(unit meta.TemplateUnit) []meta.GeneratedArtifact {
	templateImport := g.cfg.TemplateImportBase + "/" + unit.RelativePath + ".vue"
	return []meta.GeneratedArtifact{
		{
			Kind:       meta.ArtifactRouteHandler,
			OutputPath: g.handlerPath(unit),
			Source: nuxt.RouteHandler(unit.Name, unit.RelativePath, unit.ExamplePayload, nuxt.RouteOptions{
				Guard:          g.cfg.Guard,
				TemplateImport: templateImport,
				SendHook:       g.cfg.SendHook,
			}),
		},
		{
			Kind:       meta.ArtifactPreviewWrapper,
			OutputPath: g.wrapperPath(unit),
			Source:     nuxt.WrapperComponent(g.cfg.LayoutImport, templateImport, unit.Schema),
		},
	}
}

// UtilsArtifact builds the server utility shared by all route handlers.
func (g *Generator) UtilsArtifact() meta.GeneratedArtifact {
	return meta.GeneratedArtifact{
		Kind:       meta.ArtifactServerUtils,
		OutputPath: filepath.Join(g.cfg.UtilsDir, nuxt.UtilsFile),
		Source: nuxt.ServerUtils(nuxt.UtilsOptions{
			Guard:      g.cfg.Guard,
			RateLimit:  g.cfg.RateLimit,
			RateWindow: g.cfg.RateWindow,
		}),
	}
}

// Clean removes the files listed in the previous manifest along with the
// manifest itself. Nothing else in the output directories is touched.
func (g *Generator) Clean() error {
	manifestPath := filepath.Join(g.cfg.ManifestDir, ManifestFile)
	data, err := afero.ReadFile(g.fs, manifestPath)
	if err != nil {
		if exists, _ := afero.Exists(g.fs, manifestPath); !exists {
			return nil
		}
		return fmt.Errorf("read manifest: %w", err)
	}
	var manifest meta.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest %s: %w", manifestPath, err)
	}

	var files []string
	for _, r := range manifest.Routes {
		files = append(files, r.HandlerFile)
	}
	for _, p := range manifest.Pages {
		files = append(files, p.File)
	}
	files = append(files, manifest.Support...)
	files = append(files, filepath.Join(g.cfg.ManifestDir, OpenAPIFile), manifestPath)

	for _, f := range files {
		if err := g.fs.Remove(f); err != nil && fileExists(g.fs, f) {
			return fmt.Errorf("remove %s: %w", f, err)
		}
	}
	g.logger.Info("Removed generated files", "count", len(files))
	return nil
}

func (g *Generator) handlerPath(unit meta.TemplateUnit) string {
	return filepath.Join(g.cfg.ServerDir, filepath.FromSlash(unit.RelativePath)+".post.ts")
}

func (g *Generator) wrapperPath(unit meta.TemplateUnit) string {
	return filepath.Join(g.cfg.WrappersDir, filepath.FromSlash(unit.RelativePath)+".vue")
}

func (g *Generator) writeManifest(manifest *meta.Manifest, units []meta.TemplateUnit) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := g.write(filepath.Join(g.cfg.ManifestDir, ManifestFile), string(data)+"\n"); err != nil {
		return err
	}

	doc, err := openapi.Build(units, openapi.Options{Secured: g.cfg.Guard})
	if err != nil {
		return err
	}
	raw, err := openapi.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}
	return g.write(filepath.Join(g.cfg.ManifestDir, OpenAPIFile), string(raw))
}

func (g *Generator) write(p, content string) error {
	if err := g.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(p), err)
	}
	if err := afero.WriteFile(g.fs, p, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

func fileExists(fs afero.Fs, p string) bool {
	ok, err := afero.Exists(fs, p)
	return err == nil && ok
}
