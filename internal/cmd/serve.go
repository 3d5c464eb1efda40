package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/configpaths"
	"github.com/nge-dev/nge/internal/hooks"
	"github.com/nge-dev/nge/internal/ratelimit"
	"github.com/nge-dev/nge/internal/render"
	"github.com/nge-dev/nge/internal/send"
	"github.com/nge-dev/nge/internal/server"
	"github.com/nge-dev/nge/internal/server/auth"
	"github.com/nge-dev/nge/internal/watch"
)

type Serve struct {
	Project  `embed:""`
	HTTP     server.Config `embed:"" prefix:"http."`
	Watch    bool          `help:"Reload templates on change" default:"false" env:"NGE_SERVE_WATCH"`
	Generate bool          `help:"Also write the Nuxt handlers and wrappers, on start and on every reload" default:"false" env:"NGE_SERVE_GENERATE"`
	EnvFile  []string      `help:"Files with provider settings (NGE_SEND_PROVIDER, POSTMARK_SERVER_TOKEN, ...)" default:".env" env:"NGE_ENV_FILE"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger)
}

func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger) error {
	fs := afero.NewOsFs()
	gen := s.Generator(fs, logger)
	templatesDir := gen.Config().TemplatesDir

	if s.HTTP.Auth && s.HTTP.APIKey == "" {
		key, err := s.loadKey(fs, logger)
		if err != nil {
			return err
		}
		s.HTTP.APIKey = key
	}

	limiter, closeStore, err := s.rateLimiter(ctx, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher, err := s.dispatcher(fs, logger)
	if err != nil {
		return err
	}

	srv := server.New(s.HTTP, gen, render.New(fs, templatesDir), dispatcher, limiter, logger)
	reload := func(ctx context.Context) error {
		if s.Generate {
			if _, err := gen.GenerateAll(ctx); err != nil {
				return err
			}
		}
		return srv.Reload(ctx)
	}
	if err := reload(ctx); err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		logger.Error("failed to start dev server", "error", err)
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Warn("Dev server shutdown", "error", err)
		}
	}()

	if s.Watch {
		if ok, _ := afero.DirExists(fs, templatesDir); !ok {
			logger.Warn("Not watching, templates directory does not exist", "dir", templatesDir)
		} else {
			watcher, err := watch.New(templatesDir, 0, reload, logger)
			if err != nil {
				return err
			}
			defer watcher.Close()
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Warn("Watcher stopped", "error", err)
				}
			}()
		}
	}

	<-ctx.Done()
	logger.Info("Shutting down dev server")
	return nil
}

func (s *Serve) loadKey(fs afero.Fs, logger *slog.Logger) (string, error) {
	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := filepath.Join(keyFileDir, auth.KeyFileName)
	key, created, err := auth.LoadOrCreateKey(fs, keyFilePath)
	if err != nil {
		return "", err
	}
	if created {
		logger.Info("Generated API key", "path", keyFilePath)
		logger.Info("-------------------------------------")
		logger.Info("Your nge API key is:")
		logger.Info("-------------------------------------")
		logger.Info(key)
		logger.Info("-------------------------------------")
		logger.Info("Send it as 'Authorization: Bearer <key>' or 'X-API-Key: <key>'")
		logger.Info("You can change this key at any time by editing the file")
	} else {
		logger.Info("Using API key from file", "path", keyFilePath)
	}
	return key, nil
}

func (s *Serve) rateLimiter(ctx context.Context, logger *slog.Logger) (*ratelimit.Limiter, func(), error) {
	noop := func() {}
	if s.HTTP.RateLimit <= 0 {
		return nil, noop, nil
	}

	var (
		store     ratelimit.Store
		closeFunc = noop
	)
	if s.HTTP.RedisURL != "" {
		client, err := ratelimit.Connect(ctx, s.HTTP.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		store = ratelimit.NewRedisStore(client, "")
		closeFunc = func() { _ = client.Close() }
		logger.Info("Rate limiting with redis", "limit", s.HTTP.RateLimit, "window", s.HTTP.RateWindow)
	} else {
		mem := ratelimit.NewMemoryStore()
		store = mem
		closeFunc = mem.Close
		logger.Info("Rate limiting in memory", "limit", s.HTTP.RateLimit, "window", s.HTTP.RateWindow)
	}

	limiter, err := ratelimit.NewLimiter(store, s.HTTP.RateLimit, s.HTTP.RateWindow)
	if err != nil {
		closeFunc()
		return nil, noop, err
	}
	return limiter, closeFunc, nil
}

// dispatcher registers the configured provider on the send hook, the same
// path the generated Nuxt handlers take.
func (s *Serve) dispatcher(fs afero.Fs, logger *slog.Logger) (*send.Dispatcher, error) {
	cfg, err := send.LoadConfig(s.EnvFile...)
	if err != nil {
		return nil, err
	}
	sender, err := send.NewSender(cfg, fs, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Send provider", "provider", sender.Name(), "from", cfg.From)

	registry := hooks.NewRegistry()
	dispatcher := send.NewDispatcher(nil, registry, logger).WithHook(s.SendHook)
	registry.Hook(dispatcher.Hook(), send.HookHandler(send.FromSender(sender, cfg.From, logger)))
	return dispatcher, nil
}
