package scaffold

import (
	"strings"
	"text/template"

	"github.com/nge-dev/nge/internal/codegen/common"
)

// Templates use [[ ]] delimiters because the generated files are full of
// Handlebars and Vue mustaches.

const vueTemplate = `<script setup lang="ts">
import { computed } from 'vue'
import mjml2html from 'mjml-browser'
import Handlebars from 'handlebars'
import mjmlSource from './[[.Name]].mjml?raw'

defineOptions({ name: '[[.Component]]' })

interface ContentSection {
  heading: string
  body: string
}

const props = withDefaults(defineProps<{
  previewText?: string
  heading?: string
  message?: string
  ctaLabel?: string
  ctaUrl?: string
  showFooter?: boolean
  sections?: ContentSection[]
}>(), {
  previewText: 'A message from [[.Title]].',
  heading: 'Hello!',
  message: 'This is the [[.Name]] email template.',
  ctaLabel: 'Get Started',
  ctaUrl: 'https://example.com',
  showFooter: true,
  sections: () => [],
})

const compiledTemplate = Handlebars.compile(mjmlSource)

const renderedHtml = computed(() => {
  try {
    return mjml2html(compiledTemplate({ ...props })).html
  }
  catch (e: unknown) {
    return ` + "`" + `<pre style="color:red;">${e instanceof Error ? e.message : String(e)}</pre>` + "`" + `
  }
})
</script>

<template>
  <div v-html="renderedHtml" />
</template>
`

const mjmlTemplate = `<mjml>
  <mj-head>
    <mj-attributes>
      <mj-all font-family="Arial, Helvetica, sans-serif" />
    </mj-attributes>
    <mj-preview>{{previewText}}</mj-preview>
  </mj-head>
  <mj-body background-color="#f4f4f5">
    <mj-section background-color="#ffffff" padding="32px 32px 0 32px">
      <mj-column>
        <mj-text font-size="12px" font-weight="600" text-transform="uppercase" letter-spacing="0.05em" color="#6366f1">
          [[.Title]]
        </mj-text>
        <mj-text font-size="24px" font-weight="600" color="#0f172a" padding-top="16px">
          {{heading}}
        </mj-text>
        <mj-text font-size="16px" line-height="28px" color="#475569">
          {{message}}
        </mj-text>
      </mj-column>
    </mj-section>

    {{#each sections}}
    <mj-section background-color="#ffffff" padding="8px 32px">
      <mj-column border="1px solid #e2e8f0" border-radius="6px" padding="16px">
        <mj-text font-size="16px" font-weight="600" color="#0f172a">{{this.heading}}</mj-text>
        <mj-text font-size="14px" color="#475569" padding-top="4px">{{this.body}}</mj-text>
      </mj-column>
    </mj-section>
    {{/each}}

    <mj-section background-color="#ffffff" padding="24px 32px">
      <mj-column>
        <mj-button href="{{ctaUrl}}" background-color="#6366f1" border-radius="6px" font-size="14px" inner-padding="12px 24px">
          {{ctaLabel}}
        </mj-button>
      </mj-column>
    </mj-section>

    {{#if showFooter}}
    <mj-section padding="24px 32px 32px 32px">
      <mj-column>
        <mj-text font-size="12px" color="#94a3b8" align="center">
          You received this email because you are subscribed.
        </mj-text>
      </mj-column>
    </mj-section>
    {{/if}}
  </mj-body>
</mjml>
`

const dataTemplate = `// Example request body for POST [[.Route]].
export const [[.Export]] = {
  to: 'someone@example.com',
  subject: '[[.Title]]',
  heading: 'Hello!',
  message: 'This is the [[.Name]] email template.',
  showFooter: true,
  sections: [
    { heading: 'First', body: 'Sections repeat through {{#each sections}}.' },
  ],
}
`

const headerPartial = `<mj-section background-color="#4f46e5" padding="20px 32px">
  <mj-column>
    <mj-text color="#ffffff" font-size="18px" font-weight="700" letter-spacing="-0.02em">
      {{brandName}}
    </mj-text>
  </mj-column>
</mj-section>
`

const dividerPartial = `<mj-section padding="0 32px">
  <mj-column>
    <mj-divider border-color="#e2e8f0" padding="16px 0" />
  </mj-column>
</mj-section>
`

const footerPartial = `<mj-section padding="24px 32px">
  <mj-column>
    <mj-text font-size="12px" color="#94a3b8" align="center" line-height="20px">
      You received this email from {{brandName}}.<br />
      <a href="{{unsubscribeUrl}}" style="color: #6366f1; text-decoration: none;">Unsubscribe</a>
    </mj-text>
  </mj-column>
</mj-section>
`

const exampleMjml = `<mjml>
  <mj-head>
    <mj-attributes>
      <mj-all font-family="Arial, Helvetica, sans-serif" />
    </mj-attributes>
    <mj-preview>{{previewText}}</mj-preview>
  </mj-head>
  <mj-body background-color="#f4f4f5">
    {{> header}}

    <mj-section background-color="#ffffff" padding="32px">
      <mj-column>
        <mj-text font-size="22px" font-weight="600" color="#0f172a">{{heading}}</mj-text>
        <mj-text font-size="15px" line-height="26px" color="#475569" padding-top="12px">{{message}}</mj-text>
      </mj-column>
    </mj-section>

    {{> divider}}

    {{#each sections}}
    <mj-section background-color="#ffffff" padding="8px 32px">
      <mj-column border="1px solid #e2e8f0" border-radius="6px" padding="16px">
        <mj-text font-size="16px" font-weight="600" color="#0f172a">{{this.heading}}</mj-text>
        <mj-text font-size="14px" color="#475569" padding-top="4px">{{this.body}}</mj-text>
      </mj-column>
    </mj-section>
    {{/each}}

    <mj-section background-color="#ffffff" padding="24px 32px">
      <mj-column>
        <mj-button href="{{ctaUrl}}" background-color="#4f46e5" border-radius="6px" font-size="14px" inner-padding="12px 24px">
          {{ctaLabel}}
        </mj-button>
      </mj-column>
    </mj-section>

    {{> footer}}
  </mj-body>
</mjml>
`

const exampleVue = `<script setup lang="ts">
import { computed } from 'vue'
import mjml2html from 'mjml-browser'
import Handlebars from 'handlebars'
import mjmlSource from './example.mjml?raw'

defineOptions({ name: 'ExampleNge' })

interface ContentSection {
  heading: string
  body: string
}

const props = withDefaults(defineProps<{
  previewText?: string
  brandName?: string
  heading?: string
  message?: string
  ctaLabel?: string
  ctaUrl?: string
  unsubscribeUrl?: string
  sections?: ContentSection[]
}>(), {
  previewText: 'You have a new message.',
  brandName: 'My Brand',
  heading: 'Welcome!',
  message: 'This example uses the header, divider and footer partials from components/.',
  ctaLabel: 'Get Started',
  ctaUrl: 'https://example.com',
  unsubscribeUrl: 'https://example.com/unsubscribe',
  sections: () => [
    { heading: 'Header', body: 'Included with {{> header}} from components/header.mjml.' },
    { heading: 'Divider', body: 'Included with {{> divider}} from components/divider.mjml.' },
    { heading: 'Footer', body: 'Included with {{> footer}} from components/footer.mjml.' },
  ],
})

const compiledTemplate = Handlebars.compile(mjmlSource)

const renderedHtml = computed(() => {
  try {
    return mjml2html(compiledTemplate({ ...props })).html
  }
  catch (e: unknown) {
    return ` + "`" + `<pre style="color:red;">${e instanceof Error ? e.message : String(e)}</pre>` + "`" + `
  }
})
</script>

<template>
  <div v-html="renderedHtml" />
</template>
`

func parse(name, text string) *template.Template {
	return template.Must(template.New(name).Delims("[[", "]]").Parse(text))
}

var (
	vueTmpl  = parse("vue", vueTemplate)
	mjmlTmpl = parse("mjml", mjmlTemplate)
	dataTmpl = parse("data", dataTemplate)
)

type templateData struct {
	Name      string
	Title     string
	Component string
	Export    string
	Route     string
}

func newTemplateData(name, rel string) templateData {
	export := name + "Data"
	if !isIdentifier(name) {
		export = "testData"
	}
	return templateData{
		Name:      name,
		Title:     common.Capitalize(name),
		Component: common.ComponentName(name),
		Export:    export,
		Route:     common.RoutePath(rel),
	}
}

func execute(tmpl *template.Template, data templateData) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		panic("scaffold: execute " + tmpl.Name() + ": " + err.Error())
	}
	return b.String()
}
