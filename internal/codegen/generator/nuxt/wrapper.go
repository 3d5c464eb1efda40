package nuxt

import (
	"encoding/json"
	"text/template"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
)

const wrapperTemplate = `<script setup lang="ts">
{{header}}
import { reactive{{if .Hydrate}}, onMounted{{end}} } from 'vue'
import { definePageMeta } from '#imports'
import EmailsLayout from '{{js .LayoutImport}}'
import EmailComponent from '{{js .TemplateImport}}'

definePageMeta({
  layout: false,
})

const propSchema = {{.Schema}} as const

const state = reactive<Record<string, unknown>>({{.Defaults}})
{{- if .Hydrate}}

onMounted(() => {
  const params = new URLSearchParams(window.location.search)
  params.forEach((value, key) => {
    if (!(key in state)) {
      return
    }
    const current = state[key]
    if (typeof current === 'number') {
      const parsed = Number(value)
      if (!Number.isNaN(parsed)) {
        state[key] = parsed
      }
    }
    else if (typeof current === 'boolean') {
      state[key] = value === 'true'
    }
    else {
      state[key] = value
    }
  })
})
{{- end}}
</script>

<template>
  <EmailsLayout :state="state" :prop-schema="propSchema">
    <EmailComponent v-bind="state" />
  </EmailsLayout>
</template>
`

var wrapperTmpl = template.Must(template.New("wrapperComponent").Funcs(template.FuncMap{
	"header": func() string { return common.FileHeader("//") },
}).Parse(wrapperTemplate))

type schemaField struct {
	Name string        `json:"name"`
	Type meta.PropType `json:"type"`
}

// WrapperComponent returns the preview page that mounts a template inside
// the preview layout. The page state starts from the schema defaults and,
// when the schema has any props, is hydrated from URL query parameters.
func WrapperComponent(layoutImport, templateImport string, schema meta.PropertySchema) string {
	fields := make([]schemaField, 0, len(schema.Props))
	for _, p := range schema.Props {
		fields = append(fields, schemaField{Name: p.Name, Type: p.Type})
	}
	schemaJSON, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		schemaJSON = []byte("[]")
	}

	defaults, err := literal.IndentJSON(schema.DefaultsObject(), "  ")
	if err != nil {
		defaults = "{}"
	}

	data := struct {
		LayoutImport   string
		TemplateImport string
		Schema         string
		Defaults       string
		Hydrate        bool
	}{
		LayoutImport:   layoutImport,
		TemplateImport: templateImport,
		Schema:         string(schemaJSON),
		Defaults:       defaults,
		Hydrate:        !schema.Empty(),
	}
	return execute(wrapperTmpl, data)
}

// ExamplePayload picks the payload shown in API docs: the data file export
// when there is one, else the schema defaults. The result is 2-space
// indented JSON and never empty.
func ExamplePayload(fromDataFile literal.Value, haveDataFile bool, schema meta.PropertySchema) string {
	v := schema.DefaultsObject()
	if haveDataFile && !fromDataFile.IsUndefined() {
		v = fromDataFile
	}
	out, err := literal.IndentJSON(v, "  ")
	if err != nil || out == "" || out == "null" {
		return "{}"
	}
	return out
}
