package nuxt

import (
	"text/template"
	"time"

	"github.com/nge-dev/nge/internal/codegen/common"
)

// UtilsFile is the server utility written next to the Nitro server utils,
// where the '#imports' of every route handler resolve.
const UtilsFile = "nge.ts"

// UtilsOptions tunes the generated server utility.
type UtilsOptions struct {
	// Guard adds assertGenEmailsAccess, the credential and rate-limit check.
	Guard bool
	// RateLimit is the number of requests per window and client IP. 0 disables it.
	RateLimit  int
	RateWindow time.Duration
}

const utilsTemplate = `{{header}}
{{- if .Guard}}
import type { H3Event } from 'h3'
import { createError, getHeader, getRequestIP, setResponseHeader } from 'h3'
{{- end}}
import { useRuntimeConfig } from '#imports'

type SendGenEmailsHandler = (html: string, data: Record<string, unknown>) => Promise<void> | void

interface NgeRuntimeConfig {
  sendGenEmails?: unknown
  apiKey?: unknown
}

function ngeConfig(): NgeRuntimeConfig {
  return (useRuntimeConfig().nge ?? {}) as NgeRuntimeConfig
}

// Returns runtimeConfig.nge.sendGenEmails when it is a function.
export function getSendGenEmailsHandler(): SendGenEmailsHandler | null {
  const handler = ngeConfig().sendGenEmails
  return typeof handler === 'function' ? handler as SendGenEmailsHandler : null
}
{{- if .Guard}}

const rateLimit = {{.RateLimit}}
const rateWindowMs = {{.RateWindowMs}}
const hits = new Map<string, { count: number, resetAt: number }>()

function presentedCredential(event: H3Event): string {
  const authorization = getHeader(event, 'authorization') ?? ''
  if (authorization.toLowerCase().startsWith('bearer ')) {
    return authorization.slice(7).trim()
  }
  return (getHeader(event, 'x-api-key') ?? '').trim()
}

function safeEqual(a: string, b: string): boolean {
  if (a.length !== b.length) {
    return false
  }
  let diff = 0
  for (let i = 0; i < a.length; i++) {
    diff |= a.charCodeAt(i) ^ b.charCodeAt(i)
  }
  return diff === 0
}

// Answers 401 without a matching Bearer or X-API-Key credential and 429
// once a client IP exceeds rateLimit requests in the current window.
export async function assertGenEmailsAccess(event: H3Event): Promise<void> {
  const apiKey = String(ngeConfig().apiKey ?? process.env.NGE_API_KEY ?? '')
  if (!apiKey) {
    throw createError({ statusCode: 500, statusMessage: 'API key is not configured' })
  }
  if (!safeEqual(presentedCredential(event), apiKey)) {
    throw createError({ statusCode: 401, statusMessage: 'Missing or invalid credential' })
  }
  if (rateLimit <= 0) {
    return
  }

  const key = getRequestIP(event, { xForwardedFor: true }) ?? 'unknown'
  const now = Date.now()
  let entry = hits.get(key)
  if (!entry || entry.resetAt <= now) {
    entry = { count: 0, resetAt: now + rateWindowMs }
    hits.set(key, entry)
  }
  entry.count++
  if (entry.count > rateLimit) {
    setResponseHeader(event, 'Retry-After', Math.max(1, Math.ceil((entry.resetAt - now) / 1000)))
    throw createError({ statusCode: 429, statusMessage: 'Too many requests' })
  }
}
{{- end}}
`

var utilsTmpl = template.Must(template.New("serverUtils").Funcs(template.FuncMap{
	"header": func() string { return common.FileHeader("//") },
}).Parse(utilsTemplate))

// ServerUtils returns the source of the server utility imported by the
// generated route handlers.
func ServerUtils(opts UtilsOptions) string {
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}
	if opts.RateLimit < 0 {
		opts.RateLimit = 0
	}
	data := struct {
		Guard        bool
		RateLimit    int
		RateWindowMs int64
	}{
		Guard:        opts.Guard,
		RateLimit:    opts.RateLimit,
		RateWindowMs: opts.RateWindow.Milliseconds(),
	}
	return execute(utilsTmpl, data)
}
