// Package render turns an email's .mjml companion into HTML. The Handlebars
// layer is evaluated first, then the MJML markup is compiled. Files in the
// components directory are available as partials under their base name, so
// {{> header}} includes components/header.mjml.
package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Boostport/mjml-go"
	"github.com/aymerick/raymond"
	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/codegen/literal"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrRender           = errors.New("render failed")
	ErrCompile          = errors.New("mjml compile failed")
)

// Compiler turns MJML markup into HTML.
type Compiler interface {
	Compile(ctx context.Context, markup string) (string, error)
}

// CompilerFunc adapts a function to Compiler.
type CompilerFunc func(ctx context.Context, markup string) (string, error)

func (f CompilerFunc) Compile(ctx context.Context, markup string) (string, error) {
	return f(ctx, markup)
}

// MJML compiles with the WebAssembly build of the mjml compiler.
type MJML struct {
	Minify bool
}

func (m MJML) Compile(ctx context.Context, markup string) (string, error) {
	html, err := mjml.ToHTML(ctx, markup, mjml.WithMinify(m.Minify))
	if err != nil {
		var mjmlErr mjml.Error
		if errors.As(err, &mjmlErr) && len(mjmlErr.Details) > 0 {
			return "", fmt.Errorf("%s: line %d: %s", mjmlErr.Message, mjmlErr.Details[0].Line, mjmlErr.Details[0].Message)
		}
		return "", err
	}
	return html, nil
}

type Option func(*Renderer)

// WithCompiler replaces the MJML compiler.
func WithCompiler(c Compiler) Option {
	return func(r *Renderer) {
		r.compiler = c
	}
}

type Renderer struct {
	fs       afero.Fs
	dir      string
	compiler Compiler

	mu        sync.RWMutex
	partials  map[string]string
	templates map[string]*raymond.Template
}

// New returns a renderer for the templates below dir. Partials are loaded
// lazily on first use and again after Reset.
func New(fs afero.Fs, dir string, opts ...Option) *Renderer {
	r := &Renderer{fs: fs, dir: dir, compiler: MJML{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reset drops the parsed templates and partials so edits on disk are seen.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.partials = nil
	r.templates = nil
}

// Render expands the companion file at path with data and compiles the
// resulting MJML to HTML.
func (r *Renderer) Render(ctx context.Context, path string, data literal.Value) (string, error) {
	markup, err := r.Expand(path, data)
	if err != nil {
		return "", err
	}
	html, err := r.compiler.Compile(ctx, markup)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCompile, path, err)
	}
	return html, nil
}

// Expand executes the Handlebars layer of the companion file at path with
// data as the context and returns the MJML markup.
func (r *Renderer) Expand(path string, data literal.Value) (string, error) {
	tpl, err := r.template(path)
	if err != nil {
		return "", err
	}
	out, err := tpl.Exec(data.Any())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRender, path, err)
	}
	return out, nil
}

func (r *Renderer) template(path string) (*raymond.Template, error) {
	r.mu.RLock()
	tpl, ok := r.templates[path]
	r.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.templates[path]; ok {
		return tpl, nil
	}
	if r.partials == nil {
		partials, err := LoadPartials(r.fs, filepath.Join(r.dir, common.PartialsDir))
		if err != nil {
			return nil, err
		}
		r.partials = partials
		r.templates = make(map[string]*raymond.Template)
	}

	source, err := afero.ReadFile(r.fs, path)
	if err != nil {
		if ok, _ := afero.Exists(r.fs, path); !ok {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	tpl, err = raymond.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrRender, path, err)
	}
	tpl.RegisterPartials(r.partials)
	r.templates[path] = tpl
	return tpl, nil
}

// LoadPartials reads every .mjml file directly inside dir keyed by base name.
// A missing directory yields no partials.
func LoadPartials(fs afero.Fs, dir string) (map[string]string, error) {
	partials := map[string]string{}
	if ok, _ := afero.DirExists(fs, dir); !ok {
		return partials, nil
	}
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read partials dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".mjml" {
			continue
		}
		data, err := afero.ReadFile(fs, filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read partial %s: %w", e.Name(), err)
		}
		partials[strings.TrimSuffix(e.Name(), ".mjml")] = string(data)
	}
	return partials, nil
}
