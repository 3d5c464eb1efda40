package cmd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/cmd"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/server"
	"github.com/nge-dev/nge/internal/server/auth"
)

func TestServeGeneratesKeyAndStops(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("AppData", home)
	t.Setenv("NGE_SEND_PROVIDER", "dev")
	t.Setenv("NGE_SEND_DEV_DIR", filepath.Join(home, "outbox"))

	root := t.TempDir()
	s := &cmd.Serve{
		Project: cmd.Project{
			Location:  cmd.Location{Root: root},
			ServerDir: "server/api/emails",
			BuildDir:  ".nuxt",
			SendHook:  "nge:send",
		},
		HTTP: server.Config{
			Addr:       "127.0.0.1:0",
			Auth:       true,
			RateLimit:  10,
			RateWindow: time.Minute,
		},
		Watch:   true,
		EnvFile: []string{filepath.Join(root, "missing.env")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.StartServer(ctx, discard()) }()

	keyFile := filepath.Join(home, "nge", auth.KeyFileName)
	require.Eventually(t, func() bool {
		_, err := os.Stat(keyFile)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	key, err := os.ReadFile(keyFile)
	require.NoError(t, err)
	assert.Len(t, string(key), auth.AutoGenKeyLength)
}

func TestServeRejectsUnknownProvider(t *testing.T) {
	t.Setenv("NGE_SEND_PROVIDER", "carrier-pigeon")
	s := &cmd.Serve{
		Project: cmd.Project{Location: cmd.Location{Root: t.TempDir()}, ServerDir: "s", BuildDir: ".nuxt"},
		HTTP:    server.Config{Addr: "127.0.0.1:0"},
	}
	assert.Error(t, s.StartServer(context.Background(), discard()))
}

func TestServeDispatchesThroughConfiguredHook(t *testing.T) {
	t.Setenv("NGE_SEND_PROVIDER", "log")
	s := &cmd.Serve{Project: cmd.Project{SendHook: "mail:send"}}

	d, err := s.Dispatcher(afero.NewMemMapFs(), discard())
	require.NoError(t, err)
	assert.Equal(t, "mail:send", d.Hook())
	assert.NoError(t, d.Dispatch(context.Background(), "<p>hi</p>", literal.Object(
		literal.Member{Key: "to", Value: literal.String("a@b.c")},
	)))
}
