package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/render"
)

func seed(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/emails/components/header.mjml": "<mj-text>{{brandName}}</mj-text>",
		"/emails/components/notes.txt":   "ignored",
		"/emails/welcome.mjml":           "{{> header}}|{{heading}}|{{#each sections}}[{{this.heading}}]{{/each}}|{{#if showFooter}}footer{{/if}}|{{total}}",
		"/emails/broken.mjml":            "{{#if}}",
		"/emails/missing-partial.mjml":   "{{> nope}}",
		"/emails/document.mjml": "<mjml><mj-body><mj-section><mj-column>" +
			"<mj-text>Hello {{name}}</mj-text>" +
			"</mj-column></mj-section></mj-body></mjml>",
	}
	for p, c := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(c), 0o644))
	}
	return fs
}

func TestRender(t *testing.T) {
	r := render.New(seed(t), "/emails")
	data := literal.Object(
		literal.Member{Key: "brandName", Value: literal.String("Acme & Co")},
		literal.Member{Key: "heading", Value: literal.String("Hi")},
		literal.Member{Key: "sections", Value: literal.Array(
			literal.Object(literal.Member{Key: "heading", Value: literal.String("A")}),
			literal.Object(literal.Member{Key: "heading", Value: literal.String("B")}),
		)},
		literal.Member{Key: "showFooter", Value: literal.Bool(false)},
		literal.Member{Key: "total", Value: literal.Number(9.5)},
	)

	out, err := r.Expand("/emails/welcome.mjml", data)
	require.NoError(t, err)
	assert.Equal(t, "<mj-text>Acme &amp; Co</mj-text>|Hi|[A][B]||9.5", out)
}

func TestRenderCompilesMJML(t *testing.T) {
	r := render.New(seed(t), "/emails")
	html, err := r.Render(context.Background(), "/emails/document.mjml", literal.Object(
		literal.Member{Key: "name", Value: literal.String("Ann")},
	))
	require.NoError(t, err)
	assert.Contains(t, html, "<!doctype html>")
	assert.Contains(t, html, "Hello Ann")
	assert.NotContains(t, html, "<mj-")
}

func TestRenderCompileError(t *testing.T) {
	boom := errors.New("boom")
	var got string
	r := render.New(seed(t), "/emails", render.WithCompiler(render.CompilerFunc(func(_ context.Context, markup string) (string, error) {
		got = markup
		return "", boom
	})))

	_, err := r.Render(context.Background(), "/emails/document.mjml", literal.Object(
		literal.Member{Key: "name", Value: literal.String("Bo")},
	))
	assert.ErrorIs(t, err, render.ErrCompile)
	assert.Contains(t, got, "<mj-text>Hello Bo</mj-text>", "the compiler sees the expanded markup")

	_, err = r.Render(context.Background(), "/emails/absent.mjml", literal.Object())
	assert.ErrorIs(t, err, render.ErrTemplateNotFound)
}

func TestRenderErrors(t *testing.T) {
	r := render.New(seed(t), "/emails")

	_, err := r.Expand("/emails/absent.mjml", literal.Object())
	assert.ErrorIs(t, err, render.ErrTemplateNotFound)

	_, err = r.Expand("/emails/broken.mjml", literal.Object())
	assert.ErrorIs(t, err, render.ErrRender)

	_, err = r.Expand("/emails/missing-partial.mjml", literal.Object())
	assert.ErrorIs(t, err, render.ErrRender)
}

func TestRenderReset(t *testing.T) {
	fs := seed(t)
	r := render.New(fs, "/emails")

	out, err := r.Expand("/emails/welcome.mjml", literal.Object())
	require.NoError(t, err)
	assert.Contains(t, out, "<mj-text></mj-text>")

	require.NoError(t, afero.WriteFile(fs, "/emails/components/header.mjml", []byte("HEADER"), 0o644))
	out, err = r.Expand("/emails/welcome.mjml", literal.Object())
	require.NoError(t, err)
	assert.Contains(t, out, "<mj-text></mj-text>", "cached until reset")

	r.Reset()
	out, err = r.Expand("/emails/welcome.mjml", literal.Object())
	require.NoError(t, err)
	assert.Contains(t, out, "HEADER")
}

func TestLoadPartials(t *testing.T) {
	partials, err := render.LoadPartials(seed(t), "/emails/components")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"header": "<mj-text>{{brandName}}</mj-text>"}, partials)

	partials, err = render.LoadPartials(afero.NewMemMapFs(), "/nowhere")
	require.NoError(t, err)
	assert.Empty(t, partials)
}
