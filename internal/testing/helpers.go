// Package testing holds helpers shared by package tests.
package testing

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/generator"
	"github.com/nge-dev/nge/internal/render"
	"github.com/nge-dev/nge/internal/send"
	"github.com/nge-dev/nge/internal/server"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SeedFS returns an in-memory file system holding files, keyed by absolute path.
func SeedFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		if err := afero.WriteFile(fs, p, []byte(content), 0o644); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}
	return fs
}

// StartDevServer serves the templates below templatesDir on a free port.
// fn may be nil, in which case rendered emails are only logged. Returns the
// address and a function to call when done.
func StartDevServer(t *testing.T, fs afero.Fs, templatesDir string, cfg server.Config, fn send.Func) (addr string, srv *server.Server, done func()) {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	logger := DiscardLogger()

	gen := generator.New(fs, generator.Config{TemplatesDir: templatesDir}, logger)
	srv = server.New(cfg, gen, render.New(fs, templatesDir), send.NewDispatcher(fn, nil, logger), nil, logger)
	if err := srv.Reload(context.Background()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("dev server start failed: %v", err)
	}

	done = func() {
		_ = srv.Close()
	}
	return srv.Addr(), srv, done
}

// PostJSON posts body to path on addr and returns the status and response body.
func PostJSON(t *testing.T, addr, path, body string, headers map[string]string) (int, http.Header, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, resp.Header, string(data)
}
