package scanner_test

import (
	"testing"

	"github.com/nge-dev/nge/internal/codegen/scanner"
	"github.com/stretchr/testify/assert"
)

func TestFindArgumentSpan(t *testing.T) {
	type testCase struct {
		name     string
		src      string
		call     string
		index    int
		expected string
		found    bool
	}

	testCases := []testCase{
		{
			name:     "braces inside string",
			src:      `withDefaults(x(), { a: '}}}' })`,
			call:     "withDefaults",
			index:    1,
			expected: `{ a: '}}}' }`,
			found:    true,
		},
		{
			name:     "first argument with generics",
			src:      "const props = withDefaults(defineProps<{ a?: string }>(), {\n  a: 'x',\n})",
			call:     "withDefaults",
			index:    0,
			expected: `defineProps<{ a?: string }>()`,
			found:    true,
		},
		{
			name:     "template literal with nested interpolation",
			src:      "withDefaults(p(), { a: `x ${ {b: '}'}.b } )`, c: 1 })",
			call:     "withDefaults",
			index:    1,
			expected: "{ a: `x ${ {b: '}'}.b } )`, c: 1 }",
			found:    true,
		},
		{
			name:     "comments are skipped",
			src:      "withDefaults(p(), /* ) */ { a: 1 } // )\n)",
			call:     "withDefaults",
			index:    1,
			expected: "/* ) */ { a: 1 } // )",
			found:    true,
		},
		{
			name:     "escaped quote in string",
			src:      `withDefaults(p(), { a: 'it\'s )' })`,
			call:     "withDefaults",
			index:    1,
			expected: `{ a: 'it\'s )' }`,
			found:    true,
		},
		{
			name:     "arrow factory default",
			src:      `withDefaults(p(), { items: () => [{ heading: 'A', body: 'B' }] })`,
			call:     "withDefaults",
			index:    1,
			expected: `{ items: () => [{ heading: 'A', body: 'B' }] }`,
			found:    true,
		},
		{
			name:  "call missing",
			src:   `const props = defineProps<{ a: string }>()`,
			call:  "withDefaults",
			index: 1,
		},
		{
			name:  "not enough arguments",
			src:   `withDefaults(defineProps())`,
			call:  "withDefaults",
			index: 1,
		},
		{
			name:  "trailing comma is empty",
			src:   `withDefaults(defineProps(), )`,
			call:  "withDefaults",
			index: 1,
		},
		{
			name:  "unterminated call",
			src:   `withDefaults(defineProps(), { a: 1 `,
			call:  "withDefaults",
			index: 1,
		},
		{
			name:  "identifier suffix does not match",
			src:   `myWithDefaults(a, b)`,
			call:  "withDefaults",
			index: 1,
		},
		{
			name:  "empty source",
			src:   ``,
			call:  "withDefaults",
			index: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			span, ok := scanner.FindArgumentSpan(tc.src, tc.call, tc.index)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.expected, span.Text(tc.src))
			}
		})
	}
}

func TestParseSFC(t *testing.T) {
	src := `<script lang="ts">
export default {}
</script>
<script setup lang="ts">
const props = defineProps<{ a: string }>()
</script>
<template><div /></template>`

	sfc := scanner.ParseSFC(src)
	if assert.NotNil(t, sfc.ScriptSetup) {
		assert.Equal(t, "ts", sfc.ScriptSetup.Lang())
		assert.Contains(t, sfc.ScriptSetup.Content, "defineProps")
	}
	if assert.NotNil(t, sfc.Script) {
		assert.Contains(t, sfc.Script.Content, "export default")
	}

	assert.Nil(t, scanner.ParseSFC("<template><p>hi</p></template>").ScriptSetup)
}

func TestClassifyType(t *testing.T) {
	cases := map[string]string{
		"string":              "string",
		"number":              "number",
		"boolean":             "boolean",
		"String":              "string",
		"string | undefined":  "string",
		"ContentSection[]":    "object",
		"Array<string>":       "object",
		"{ a: string }":       "object",
		"Date":                "object",
		"'primary' | 'ghost'": "unknown",
		"":                    "unknown",
	}
	for in, expected := range cases {
		assert.Equal(t, expected, string(scanner.ClassifyType(in)), in)
	}
}

func TestExtractPrimitives(t *testing.T) {
	v := scanner.ExtractPrimitives(`{ title: 'Hi', other: "there", count: 3, ratio: -0.5, on: true, items: () => [foo] }`)
	assert.Equal(t, []string{"title", "other", "count", "ratio", "on"}, v.Keys())
	on, _ := v.Get("on")
	assert.True(t, on.Bool())
	ratio, _ := v.Get("ratio")
	assert.Equal(t, -0.5, ratio.Number())
}
