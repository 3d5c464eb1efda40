package send_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/hooks"
	"github.com/nge-dev/nge/internal/send"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func body(members ...literal.Member) literal.Value { return literal.Object(members...) }

func m(k string, v literal.Value) literal.Member { return literal.Member{Key: k, Value: v} }

func TestDispatchPrefersFunc(t *testing.T) {
	registry := hooks.NewRegistry()
	hookCalled := false
	registry.Hook(send.HookName, func(ctx context.Context, payload any) error {
		hookCalled = true
		return nil
	})

	var gotHTML string
	d := send.NewDispatcher(func(ctx context.Context, html string, data literal.Value) error {
		gotHTML = html
		return nil
	}, registry, discard())

	require.NoError(t, d.Dispatch(context.Background(), "<p>hi</p>", body()))
	assert.Equal(t, "<p>hi</p>", gotHTML)
	assert.False(t, hookCalled)
}

func TestDispatchFallsBackToHook(t *testing.T) {
	registry := hooks.NewRegistry()
	var got send.Payload
	registry.Hook(send.HookName, func(ctx context.Context, payload any) error {
		got = payload.(send.Payload)
		return nil
	})

	d := send.NewDispatcher(nil, registry, discard())
	data := body(m("to", literal.String("a@b.c")))
	require.NoError(t, d.Dispatch(context.Background(), "<p>hi</p>", data))
	assert.Equal(t, "<p>hi</p>", got.HTML)
	assert.True(t, data.Equal(got.Data))
}

func TestDispatchWithoutHandler(t *testing.T) {
	assert.NoError(t, send.NewDispatcher(nil, nil, discard()).Dispatch(context.Background(), "x", body()))
	assert.NoError(t, send.NewDispatcher(nil, hooks.NewRegistry(), discard()).Dispatch(context.Background(), "x", body()))
}

func TestDispatchWrapsFailures(t *testing.T) {
	boom := errors.New("smtp down")
	d := send.NewDispatcher(func(ctx context.Context, html string, data literal.Value) error { return boom }, nil, discard())
	err := d.Dispatch(context.Background(), "x", body())
	assert.ErrorIs(t, err, send.ErrSendFailed)
	assert.ErrorIs(t, err, boom)

	registry := hooks.NewRegistry()
	registry.Hook(send.HookName, func(ctx context.Context, payload any) error { return boom })
	err = send.NewDispatcher(nil, registry, discard()).Dispatch(context.Background(), "x", body())
	assert.ErrorIs(t, err, send.ErrSendFailed)
	assert.ErrorIs(t, err, boom)
}

func TestMessageFromData(t *testing.T) {
	tests := []struct {
		name    string
		data    literal.Value
		want    send.Message
		wantErr bool
	}{
		{
			name: "defaults",
			data: body(m("to", literal.String("a@b.c"))),
			want: send.Message{From: "noreply@example.com", To: []string{"a@b.c"}, Subject: "No Subject", HTML: "<p/>"},
		},
		{
			name: "all fields",
			data: body(
				m("to", literal.String("a@b.c, d@e.f")),
				m("subject", literal.String("Hello")),
				m("from", literal.String("team@example.com")),
			),
			want: send.Message{From: "team@example.com", To: []string{"a@b.c", "d@e.f"}, Subject: "Hello", HTML: "<p/>"},
		},
		{
			name: "array recipients",
			data: body(m("to", literal.Array(literal.String("a@b.c"), literal.Number(1), literal.String(" ")))),
			want: send.Message{From: "noreply@example.com", To: []string{"a@b.c"}, Subject: "No Subject", HTML: "<p/>"},
		},
		{name: "missing recipient", data: body(m("subject", literal.String("x"))), wantErr: true},
		{name: "wrong recipient kind", data: body(m("to", literal.Number(3))), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := send.MessageFromData("<p/>", tt.data, "noreply@example.com")
			if tt.wantErr {
				assert.ErrorIs(t, err, send.ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDevSender(t *testing.T) {
	fs := afero.NewMemMapFs()
	s, err := send.NewDevSender(fs, "/outbox")
	require.NoError(t, err)

	fn := send.FromSender(s, "noreply@example.com", discard())
	data := body(m("to", literal.String("a@b.c")), m("subject", literal.String("Hi")))
	require.NoError(t, fn(context.Background(), "<p>hello</p>", data))

	entries, err := afero.ReadDir(fs, "/outbox")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".html") {
			htmlFile = e.Name()
		} else {
			jsonFile = e.Name()
		}
	}
	assert.Equal(t, strings.TrimSuffix(htmlFile, ".html"), strings.TrimSuffix(jsonFile, ".json"))

	html, err := afero.ReadFile(fs, "/outbox/"+htmlFile)
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(html))

	raw, err := afero.ReadFile(fs, "/outbox/"+jsonFile)
	require.NoError(t, err)
	var record struct {
		ID      string         `json:"id"`
		Message send.Message   `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, strings.TrimSuffix(htmlFile, ".html"), record.ID)
	assert.Equal(t, []string{"a@b.c"}, record.Message.To)
	assert.Equal(t, "Hi", record.Data["subject"])
}

func TestFromSenderRejectsInvalidMessage(t *testing.T) {
	s, err := send.NewDevSender(afero.NewMemMapFs(), "/outbox")
	require.NoError(t, err)
	err = send.FromSender(s, "noreply@example.com", discard())(context.Background(), "x", body())
	assert.ErrorIs(t, err, send.ErrInvalidMessage)
}

func TestNewSender(t *testing.T) {
	fs := afero.NewMemMapFs()
	tests := []struct {
		name     string
		cfg      send.Config
		wantName string
		wantErr  bool
	}{
		{name: "log default", cfg: send.Config{}, wantName: "log"},
		{name: "dev", cfg: send.Config{Provider: "dev", DevDir: "/tmp/out"}, wantName: "dev"},
		{name: "dev without dir", cfg: send.Config{Provider: "dev"}, wantErr: true},
		{name: "postmark", cfg: send.Config{Provider: "postmark", PostmarkServerToken: "t"}, wantName: "postmark"},
		{name: "postmark without token", cfg: send.Config{Provider: "postmark"}, wantErr: true},
		{name: "resend", cfg: send.Config{Provider: "resend", ResendAPIKey: "re_x"}, wantName: "resend"},
		{name: "resend without key", cfg: send.Config{Provider: "resend"}, wantErr: true},
		{name: "mailgun", cfg: send.Config{Provider: "mailgun", MailgunAPIKey: "k", MailgunDomain: "mg.example.com", MailgunRegion: "eu"}, wantName: "mailgun"},
		{name: "mailgun without domain", cfg: send.Config{Provider: "mailgun", MailgunAPIKey: "k"}, wantErr: true},
		{name: "unknown", cfg: send.Config{Provider: "carrier-pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := send.NewSender(tt.cfg, fs, discard())
			if tt.wantErr {
				assert.ErrorIs(t, err, send.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("NGE_SEND_PROVIDER", "dev")
	t.Setenv("NGE_SEND_DEV_DIR", "/tmp/mail")

	cfg, err := send.LoadConfig("does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Provider)
	assert.Equal(t, "/tmp/mail", cfg.DevDir)
	assert.Equal(t, "noreply@example.com", cfg.From)
	assert.Equal(t, "us", cfg.MailgunRegion)
}

func TestHookHandler(t *testing.T) {
	registry := hooks.NewRegistry()
	var got string
	registry.Hook(send.HookName, send.HookHandler(func(ctx context.Context, html string, data literal.Value) error {
		got = html
		return nil
	}))

	d := send.NewDispatcher(nil, registry, discard())
	require.NoError(t, d.Dispatch(context.Background(), "<p>hook</p>", body()))
	assert.Equal(t, "<p>hook</p>", got)

	err := send.HookHandler(func(context.Context, string, literal.Value) error { return nil })(context.Background(), "not a payload")
	assert.ErrorIs(t, err, send.ErrInvalidMessage)
}

func TestDispatcherCustomHook(t *testing.T) {
	registry := hooks.NewRegistry()
	var defaultCalls, customCalls int
	registry.Hook(send.HookName, func(context.Context, any) error {
		defaultCalls++
		return nil
	})
	registry.Hook("mail:send", func(context.Context, any) error {
		customCalls++
		return nil
	})

	d := send.NewDispatcher(nil, registry, discard()).WithHook("mail:send")
	assert.Equal(t, "mail:send", d.Hook())
	require.NoError(t, d.Dispatch(context.Background(), "x", body()))
	assert.Equal(t, 0, defaultCalls)
	assert.Equal(t, 1, customCalls)

	assert.Equal(t, send.HookName, send.NewDispatcher(nil, registry, discard()).WithHook("").Hook())
}
