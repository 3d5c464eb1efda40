package watch_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/watch"
)

func TestRelevant(t *testing.T) {
	tests := map[string]bool{
		"/a/welcome.vue":            true,
		"/a/welcome.mjml":           true,
		"/a/welcome.data.ts":        true,
		"/a/components/header.mjml": true,
		"/a/README.md":              false,
		"/a/.welcome.vue.swp":       false,
		"/a/welcome.vue~":           false,
		"/a/.hidden.vue":            false,
	}
	for name, want := range tests {
		assert.Equal(t, want, watch.Relevant(name), name)
	}
}

func startWatcher(t *testing.T, dir string, calls *atomic.Int32) {
	t.Helper()
	w, err := watch.New(dir, 50*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	for _, name := range []string{"a.vue", "a.mjml", "b.vue", "b.mjml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	sub := filepath.Join(dir, "v1")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	before := calls.Load()
	require.NoError(t, os.WriteFile(filepath.Join(sub, "order.vue"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() > before }, 3*time.Second, 10*time.Millisecond)
}

func TestNewMissingRoot(t *testing.T) {
	_, err := watch.New(filepath.Join(t.TempDir(), "missing"), 0, func(context.Context) error { return nil },
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}
