package nuxt

import (
	"strings"
	"text/template"

	"github.com/nge-dev/nge/internal/codegen/common"
)

// DefaultSendHook is the hook called when no send handler is configured.
const DefaultSendHook = "nge:send"

// RouteOptions tunes the generated route handler.
type RouteOptions struct {
	// Guard adds the access check that answers 401/429 before rendering.
	Guard bool
	// TemplateImport overrides the import path of the template component.
	// Defaults to ~/emails/<relativePath>.vue.
	TemplateImport string
	// SendHook overrides the hook name, DefaultSendHook when empty.
	SendHook string
}

const routeHandlerTemplate = `{{header}}
import { defineEventHandler, readBody, createError } from 'h3'
import { defineRouteMeta, useNitroApp, getSendGenEmailsHandler{{if .Guard}}, assertGenEmailsAccess{{end}} } from '#imports'
import { render } from '@vue-email/render'
import EmailTemplate from '{{js .TemplateImport}}'

defineRouteMeta({
  openAPI: {
    tags: ['nge'],
    summary: 'Render and send the {{js .Name}} email',
    description: 'Renders {{js .RelativePath}} with the request body as props and hands the HTML to the send hook.',
    requestBody: {
      required: true,
      content: {
        'application/json': {
          example: {{.Example}},
        },
      },
    },
    responses: {
      200: { description: 'Email rendered successfully' },{{if .Guard}}
      401: { description: 'Missing or invalid credential' },
      429: { description: 'Too many requests' },{{end}}
      500: { description: 'Render or send failure' },
    },
  },
})

export default defineEventHandler(async (event) => {
{{- if .Guard}}
  await assertGenEmailsAccess(event)
{{- end}}
  const body = await readBody<Record<string, unknown>>(event)

  try {
    const html = await render(EmailTemplate, body, { pretty: true })

    const sendGenEmailsHandler = getSendGenEmailsHandler()
    if (sendGenEmailsHandler) {
      await sendGenEmailsHandler(html, body)
    }
    else {
      // @ts-ignore custom hook is not part of the Nitro hook types
      await useNitroApp().hooks.callHook('{{js .SendHook}}', { html, data: body })
    }

    return {
      success: true,
      message: 'Email rendered successfully',
      html,
    }
  }
  catch (error: unknown) {
    const message = error instanceof Error ? error.message : 'Failed to render or send email'
    throw createError({
      statusCode: 500,
      statusMessage: message,
    })
  }
})
`

var routeTmpl = template.Must(template.New("routeHandler").Funcs(template.FuncMap{
	"header": func() string { return common.FileHeader("//") },
}).Parse(routeHandlerTemplate))

// RouteHandler returns the source of the POST handler for one template.
// examplePayloadJSON is embedded as-is; an empty payload becomes {}.
func RouteHandler(name, relativePath, examplePayloadJSON string, opts RouteOptions) string {
	if strings.TrimSpace(examplePayloadJSON) == "" {
		examplePayloadJSON = "{}"
	}
	if opts.TemplateImport == "" {
		opts.TemplateImport = "~/emails/" + relativePath + ".vue"
	}
	if opts.SendHook == "" {
		opts.SendHook = DefaultSendHook
	}

	data := struct {
		Name           string
		RelativePath   string
		Example        string
		TemplateImport string
		SendHook       string
		Guard          bool
	}{
		Name:           name,
		RelativePath:   relativePath,
		Example:        examplePayloadJSON,
		TemplateImport: opts.TemplateImport,
		SendHook:       opts.SendHook,
		Guard:          opts.Guard,
	}
	return execute(routeTmpl, data)
}

// execute renders a template that is known to be valid for its data;
// a failure is a programming error.
func execute(tmpl *template.Template, data any) string {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		panic("nuxt: execute " + tmpl.Name() + ": " + err.Error())
	}
	return b.String()
}
