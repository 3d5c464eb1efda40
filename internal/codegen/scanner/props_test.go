package scanner_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
	"github.com/nge-dev/nge/internal/codegen/scanner"
)

const welcomeVue = `<script setup lang="ts">
import mjmlSource from './welcome.mjml?raw'

interface ContentSection {
  heading: string
  body: string
}

const props = withDefaults(defineProps<{
  // shown above the fold
  heading?: string
  count?: number
  showFooter?: boolean
  sections?: ContentSection[]
  variant?: 'primary' | 'ghost'
}>(), {
  heading: 'Welcome!',
  count: 3,
  showFooter: true,
  sections: () => [
    { heading: 'A', body: 'B' },
  ],
  extra: null,
})
</script>

<template>
  <div v-html="html" />
</template>
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExtractor(t *testing.T, files map[string]string, parser scanner.ComponentParser) *scanner.Extractor {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return scanner.NewExtractor(fs, parser, discardLogger())
}

func TestExtract(t *testing.T) {
	parsers := map[string]scanner.ComponentParser{
		"tree-sitter": scanner.NewTreeSitterParser(),
		"text only":   nil,
	}

	for name, parser := range parsers {
		t.Run(name, func(t *testing.T) {
			ex := newExtractor(t, map[string]string{"/emails/welcome.vue": welcomeVue}, parser)
			schema := ex.Extract(context.Background(), "/emails/welcome.vue")

			names := make([]string, 0, len(schema.Props))
			types := map[string]meta.PropType{}
			for _, p := range schema.Props {
				names = append(names, p.Name)
				types[p.Name] = p.Type
			}
			assert.Equal(t, []string{"heading", "count", "showFooter", "sections", "variant", "extra"}, names)
			assert.Equal(t, meta.PropString, types["heading"])
			assert.Equal(t, meta.PropNumber, types["count"])
			assert.Equal(t, meta.PropBoolean, types["showFooter"])
			assert.Equal(t, meta.PropObject, types["sections"])
			assert.Equal(t, meta.PropUnknown, types["variant"])
			assert.Equal(t, meta.PropUnknown, types["extra"])

			expected := literal.Object(
				literal.Member{Key: "heading", Value: literal.String("Welcome!")},
				literal.Member{Key: "count", Value: literal.Number(3)},
				literal.Member{Key: "showFooter", Value: literal.Bool(true)},
				literal.Member{Key: "sections", Value: literal.Array(literal.Object(
					literal.Member{Key: "heading", Value: literal.String("A")},
					literal.Member{Key: "body", Value: literal.String("B")},
				))},
				literal.Member{Key: "extra", Value: literal.Null()},
			)
			assert.True(t, expected.Equal(schema.Defaults), "defaults: %s", schema.Defaults.Text())

			heading, ok := schema.Lookup("heading")
			require.True(t, ok)
			require.NotNil(t, heading.Default)
			assert.Equal(t, "Welcome!", heading.Default.Str())

			variant, _ := schema.Lookup("variant")
			assert.Nil(t, variant.Default)
		})
	}
}

func TestExtractFallsBackToPrimitives(t *testing.T) {
	src := `<script setup lang="ts">
const base = 'x'
const props = withDefaults(defineProps<{ title?: string; url?: string; n?: number }>(), {
  title: 'Hello',
  url: base + '/path',
  n: 42,
})
</script>`

	ex := newExtractor(t, map[string]string{"/e/a.vue": src}, scanner.NewTreeSitterParser())
	schema := ex.Extract(context.Background(), "/e/a.vue")

	assert.Len(t, schema.Props, 3)
	assert.Equal(t, []string{"title", "n"}, schema.Defaults.Keys())
}

func TestExtractNamedInterface(t *testing.T) {
	src := `<script setup lang="ts">
export interface Props {
  name: string
  age?: number
  nested: { deep: string }
}
const props = withDefaults(defineProps<Props>(), { age: 30 })
</script>`

	for name, parser := range map[string]scanner.ComponentParser{"tree-sitter": scanner.NewTreeSitterParser(), "text only": nil} {
		t.Run(name, func(t *testing.T) {
			ex := newExtractor(t, map[string]string{"/e/p.vue": src}, parser)
			schema := ex.Extract(context.Background(), "/e/p.vue")

			require.Len(t, schema.Props, 3)
			assert.Equal(t, "name", schema.Props[0].Name)
			assert.Equal(t, meta.PropString, schema.Props[0].Type)
			assert.Equal(t, meta.PropNumber, schema.Props[1].Type)
			assert.Equal(t, meta.PropObject, schema.Props[2].Type)
			require.NotNil(t, schema.Props[1].Default)
			assert.Equal(t, float64(30), schema.Props[1].Default.Number())
		})
	}
}

func TestExtractRuntimeDeclaration(t *testing.T) {
	src := `<script setup>
const props = defineProps({
  title: String,
  count: { type: Number, default: 5 },
  tags: [Array, String],
})
</script>`

	ex := newExtractor(t, map[string]string{"/e/r.vue": src}, scanner.NewTreeSitterParser())
	schema := ex.Extract(context.Background(), "/e/r.vue")

	require.Len(t, schema.Props, 3)
	assert.Equal(t, meta.PropString, schema.Props[0].Type)
	assert.Equal(t, meta.PropNumber, schema.Props[1].Type)
	assert.Equal(t, meta.PropObject, schema.Props[2].Type)
	count, ok := schema.Defaults.Get("count")
	require.True(t, ok)
	assert.Equal(t, float64(5), count.Number())
}

func TestExtractEmptySchema(t *testing.T) {
	files := map[string]string{
		"/e/no-script.vue": `<template><p>static</p></template>`,
		"/e/broken.vue":    "<script setup lang=\"ts\">\nconst props = withDefaults(defineProps<{ a: string }>(), {\n",
		"/e/no-props.vue":  "<script setup lang=\"ts\">\nconst x = 1\n</script>",
	}
	ex := newExtractor(t, files, scanner.NewTreeSitterParser())

	for path := range files {
		schema := ex.Extract(context.Background(), path)
		assert.True(t, schema.Empty(), path)
		assert.Equal(t, literal.KindObject, schema.Defaults.Kind(), path)
	}

	missing := ex.Extract(context.Background(), "/e/missing.vue")
	assert.True(t, missing.Empty())
}

func TestExamplePayload(t *testing.T) {
	files := map[string]string{
		"/e/welcome.data.ts": `import { reactive } from 'vue'

export interface WelcomeData extends Record<string, unknown> {
  title: string
}

export const welcomeData = reactive<WelcomeData>({
  title: 'Welcome!',
  message: 'Hi there',
})
`,
		"/e/legacy.data.ts":  `export const testData = { to: 'a@b.c', subject: 'S' }`,
		"/e/dynamic.data.ts": `export const dynamicData = { when: Date.now() }`,
	}
	ex := newExtractor(t, files, nil)
	ctx := context.Background()

	v, ok := ex.ExamplePayload(ctx, "/e/welcome.data.ts", "welcome")
	require.True(t, ok)
	assert.Equal(t, []string{"title", "message"}, v.Keys())

	v, ok = ex.ExamplePayload(ctx, "/e/legacy.data.ts", "legacy")
	require.True(t, ok)
	assert.Equal(t, []string{"to", "subject"}, v.Keys())

	_, ok = ex.ExamplePayload(ctx, "/e/dynamic.data.ts", "dynamic")
	assert.False(t, ok)

	_, ok = ex.ExamplePayload(ctx, "/e/none.data.ts", "none")
	assert.False(t, ok)
}
