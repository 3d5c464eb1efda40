package cmd_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	toml "github.com/pelletier/go-toml"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v3"

	"github.com/nge-dev/nge/internal/cmd"
	ngetesting "github.com/nge-dev/nge/internal/testing"
)

func discard() *slog.Logger { return ngetesting.DiscardLogger() }

func TestTemplateForServe(t *testing.T) {
	root, err := cmd.TemplateFor("serve")
	require.NoError(t, err)

	assert.Equal(t, ".", root["root"])
	assert.Equal(t, "server/api/emails", root["server_dir"])
	assert.Equal(t, false, root["watch"])
	assert.Equal(t, ".env", root["env_file"])

	http, ok := root["http"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ":3300", http["addr"])
	assert.Equal(t, "", http["api_key"])
	assert.Equal(t, "1m", http["rate_window"])
	assert.Equal(t, int64(1048576), http["max_body_bytes"])
	assert.Contains(t, http, "redis_url")

	_, err = cmd.TemplateFor("proxy")
	assert.Error(t, err)
}

func TestTemplateForWatch(t *testing.T) {
	root, err := cmd.TemplateFor("watch")
	require.NoError(t, err)
	assert.Equal(t, "250ms", root["debounce"])
	assert.Equal(t, "nge:send", root["send_hook"])
	assert.NotContains(t, root, "http")
}

func TestMarshalFormats(t *testing.T) {
	root, err := cmd.TemplateFor("generate")
	require.NoError(t, err)

	data, err := cmd.Marshal(root, "json")
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, ".nuxt", fromJSON["build_dir"])

	data, err = cmd.Marshal(root, "yml")
	require.NoError(t, err)
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, ".nuxt", fromYAML["build_dir"])

	data, err = cmd.Marshal(root, "toml")
	require.NoError(t, err)
	tree, err := toml.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, ".nuxt", tree.Get("build_dir"))

	_, err = cmd.Marshal(root, "ini")
	assert.Error(t, err)
}

func TestConfigInitRun(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "conf", "serve.yaml")
	ci := &cmd.ConfigInit{Command: "serve", Format: "yaml", Output: dest}
	require.NoError(t, ci.Run())

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_key:")

	assert.Error(t, ci.Run(), "refuses to overwrite")
	ci.Force = true
	assert.NoError(t, ci.Run())
}

func TestConfigInitUserDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("user config dir comes from AppData")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	ci := &cmd.ConfigInit{Command: "watch", Format: "toml", User: true}
	require.NoError(t, ci.Run())

	_, err := os.Stat(filepath.Join(xdg, "nge", "watch.toml"))
	assert.NoError(t, err)
}

func TestLocationTemplatesDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/p/app", 0o755))

	assert.Equal(t, "/p/app/emails", (&cmd.Location{Root: "/p"}).TemplatesDir(fs))
	assert.Equal(t, "/p/mail", (&cmd.Location{Root: "/p", EmailsDir: "mail"}).TemplatesDir(fs))
	assert.Equal(t, "/abs/mail", (&cmd.Location{Root: "/p", EmailsDir: "/abs/mail"}).TemplatesDir(fs))
}

func TestProjectGeneratorConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := &cmd.Project{
		Location:       cmd.Location{Root: "/p"},
		ServerDir:      "server/api/emails",
		UtilsDir:       "server/utils",
		BuildDir:       ".nuxt",
		Guard:          true,
		GuardRateLimit: 10,
		SendHook:       "nge:send",
	}
	cfg := p.GeneratorConfig(fs)
	assert.Equal(t, "/p/server/utils", cfg.UtilsDir)
	assert.True(t, cfg.Guard)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, "/p/emails", cfg.TemplatesDir)
	assert.Equal(t, "/p/server/api/emails", cfg.ServerDir)
	assert.Equal(t, "/p/.nuxt/email-wrappers", cfg.WrappersDir)
	assert.Equal(t, "/p/.nuxt/nge", cfg.ManifestDir)
	assert.Empty(t, cfg.TemplateImportBase)

	p.EmailsDir = "mail"
	assert.Equal(t, "/p/mail", p.GeneratorConfig(fs).TemplateImportBase)
}

func TestGenerateAndRegenerate(t *testing.T) {
	root := t.TempDir()
	emails := filepath.Join(root, "emails")
	require.NoError(t, os.MkdirAll(emails, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(emails, "welcome.vue"),
		[]byte("<script setup lang=\"ts\">\nconst props = withDefaults(defineProps<{ title?: string }>(), { title: 'Hi' })\n</script>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(emails, "welcome.mjml"), []byte("<mjml>{{title}}</mjml>"), 0o644))

	project := cmd.Project{
		Location:  cmd.Location{Root: root},
		ServerDir: "server/api/emails",
		BuildDir:  ".nuxt",
		SendHook:  "nge:send",
	}
	require.NoError(t, (&cmd.Generate{Project: project}).Run(discard()))

	handler := filepath.Join(root, "server", "api", "emails", "welcome.post.ts")
	_, err := os.Stat(handler)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "server", "utils", "nge.ts"))
	require.NoError(t, err, "handlers import the generated server utility")

	require.NoError(t, os.Remove(filepath.Join(emails, "welcome.vue")))
	require.NoError(t, (&cmd.Regenerate{Project: project}).Run(discard()))
	_, err = os.Stat(handler)
	assert.True(t, os.IsNotExist(err), "regenerate drops handlers of removed templates")
}

func TestSetupAndAdd(t *testing.T) {
	root := t.TempDir()
	loc := cmd.Location{Root: root}

	require.NoError(t, (&cmd.Setup{Location: loc}).Run(discard()))
	_, err := os.Stat(filepath.Join(root, "emails", "components", "header.mjml"))
	require.NoError(t, err)

	add := &cmd.Add{Location: loc, Name: "v1/receipt", Data: true}
	require.NoError(t, add.Run(discard()))
	_, err = os.Stat(filepath.Join(root, "emails", "v1", "receipt.data.ts"))
	require.NoError(t, err)

	assert.Error(t, add.Run(discard()))
}
