// Package server is the development HTTP server. It serves the same send
// route contract as the generated handlers, so templates can be rendered and
// posted to without the host application running, plus a preview UI and the
// OpenAPI document.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"github.com/nge-dev/nge/internal/codegen/generator"
	"github.com/nge-dev/nge/internal/codegen/generator/openapi"
	"github.com/nge-dev/nge/internal/codegen/meta"
	"github.com/nge-dev/nge/internal/ratelimit"
	"github.com/nge-dev/nge/internal/render"
	"github.com/nge-dev/nge/internal/send"
)

const shutdownTimeout = 5 * time.Second

// TemplateLoader discovers the templates served by the server.
type TemplateLoader interface {
	Load(ctx context.Context) ([]meta.TemplateUnit, error)
}

var _ TemplateLoader = (*generator.Generator)(nil)

type Server struct {
	cfg        Config
	loader     TemplateLoader
	renderer   *render.Renderer
	dispatcher *send.Dispatcher
	limiter    *ratelimit.Limiter
	logger     *slog.Logger

	mu      sync.RWMutex
	units   map[string]meta.TemplateUnit
	order   []string
	openAPI []byte

	handler http.Handler
	srv     *http.Server
	ln      net.Listener
}

// New wires a server. limiter may be nil to disable rate limiting. Call
// Reload before serving requests.
func New(cfg Config, loader TemplateLoader, renderer *render.Renderer, dispatcher *send.Dispatcher, limiter *ratelimit.Limiter, logger *slog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		loader:     loader,
		renderer:   renderer,
		dispatcher: dispatcher,
		limiter:    limiter,
		logger:     logger,
		units:      map[string]meta.TemplateUnit{},
	}
	s.handler = s.routes()
	return s
}

// Config returns the server configuration.
func (s *Server) Config() Config { return s.cfg }

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Reload rediscovers the templates and rebuilds the OpenAPI document. On
// failure the previous registry stays in place.
func (s *Server) Reload(ctx context.Context) error {
	units, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	doc, err := openapi.Build(units, openapi.Options{Secured: s.cfg.APIKey != ""})
	if err != nil {
		return err
	}
	raw, err := openapi.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}

	byPath := make(map[string]meta.TemplateUnit, len(units))
	order := make([]string, 0, len(units))
	for _, u := range units {
		byPath[u.RelativePath] = u
		order = append(order, u.RelativePath)
	}
	sort.Strings(order)

	s.mu.Lock()
	s.units = byPath
	s.order = order
	s.openAPI = raw
	s.mu.Unlock()
	s.renderer.Reset()

	s.logger.Info("Loaded email templates", "count", len(units))
	return nil
}

func (s *Server) lookup(rel string) (meta.TemplateUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[rel]
	return u, ok
}

func (s *Server) snapshot() ([]meta.TemplateUnit, []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]meta.TemplateUnit, 0, len(s.order))
	for _, rel := range s.order {
		out = append(out, s.units[rel])
	}
	return out, s.openAPI
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(s.requestID)
	r.Use(s.recoverer)
	r.Use(s.accessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, ErrNotFound("Page not found: "+r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, ErrMethodNotAllowed("Method not allowed: "+r.Method))
	})

	r.Route("/api/emails", func(r chi.Router) {
		r.Use(s.requireKey)
		r.Use(s.rateLimit)
		r.Post("/*", s.handleSend)
	})
	r.Get("/__emails", s.handleIndex)
	r.Get("/__emails/*", s.handlePreview)
	r.Get("/_openapi.json", s.handleOpenAPI)

	if !s.cfg.Compress {
		return r
	}
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	if err != nil {
		s.logger.Warn("Compression disabled", "error", err)
		return r
	}
	return wrapper(r)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Dev server listening", "addr", ln.Addr().String(), "preview", "http://"+ln.Addr().String()+"/__emails")
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Dev server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
