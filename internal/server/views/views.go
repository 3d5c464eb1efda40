// Package views holds the HTML of the preview UI as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// IndexEntry is one row of the template index.
type IndexEntry struct {
	RelativePath string
	PreviewPath  string
	RoutePath    string
	Props        int
}

// PropRow is one prop of the preview form.
type PropRow struct {
	Name  string
	Type  string
	Value string
}

// PreviewData feeds the preview page.
type PreviewData struct {
	RelativePath string
	RoutePath    string
	ShareURL     string
	Props        []PropRow
	HTML         string
	RenderError  string
	Example      string
}

const style = `body{font-family:system-ui,sans-serif;margin:2rem;color:#0f172a}` +
	`table{border-collapse:collapse}td,th{border:1px solid #e2e8f0;padding:.35rem .6rem;text-align:left}` +
	`pre{background:#f8fafc;border:1px solid #e2e8f0;padding:1rem;overflow:auto}` +
	`iframe.email{width:100%;min-height:32rem;border:1px solid #e2e8f0}` +
	`.error{color:#b91c1c}code{font-size:.9em}`

// Page wraps body in the document shell.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><title>%s</title><style>%s</style></head><body>`,
			templ.EscapeString(title), style); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Index lists every template with links to its preview.
func Index(entries []IndexEntry) templ.Component {
	return Page("nge emails", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Email templates</h1>`); err != nil {
			return err
		}
		if len(entries) == 0 {
			_, err := io.WriteString(w, `<p>No templates found. Run <code>nge add welcome</code> or <code>nge setup</code>.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<table><thead><tr><th>Template</th><th>Route</th><th>Props</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, `<tr><td><a href="%s">%s</a></td><td><code>POST %s</code></td><td>%d</td></tr>`,
				templ.EscapeString(string(templ.URL(e.PreviewPath))),
				templ.EscapeString(e.RelativePath),
				templ.EscapeString(e.RoutePath),
				e.Props); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	}))
}

// Preview shows one template rendered with its defaults and URL params.
func Preview(d PreviewData) templ.Component {
	return Page(d.RelativePath+" - nge", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<p><a href="/__emails">All templates</a></p><h1>%s</h1><p><code>POST %s</code> &middot; <a href="%s">share</a></p>`,
			templ.EscapeString(d.RelativePath),
			templ.EscapeString(d.RoutePath),
			templ.EscapeString(string(templ.URL(d.ShareURL)))); err != nil {
			return err
		}

		if len(d.Props) > 0 {
			if _, err := io.WriteString(w, `<form method="get"><table><thead><tr><th>Prop</th><th>Type</th><th>Value</th></tr></thead><tbody>`); err != nil {
				return err
			}
			for _, p := range d.Props {
				if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td><input name="%s" value="%s"></td></tr>`,
					templ.EscapeString(p.Name),
					templ.EscapeString(p.Type),
					templ.EscapeString(p.Name),
					templ.EscapeString(p.Value)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tbody></table><button type="submit">Update</button></form>`); err != nil {
				return err
			}
		}

		if d.RenderError != "" {
			if _, err := fmt.Fprintf(w, `<h2>Render error</h2><pre class="error">%s</pre>`, templ.EscapeString(d.RenderError)); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintf(w, `<h2>Rendered email</h2><iframe class="email" title="%s" srcdoc="%s"></iframe>`,
			templ.EscapeString(d.RelativePath), templ.EscapeString(d.HTML)); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w, `<h2>Example request body</h2><pre>%s</pre>`, templ.EscapeString(d.Example))
		return err
	}))
}

// NotFound is the preview page for an unknown template.
func NotFound(rel string) templ.Component {
	return Page("Not found - nge", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>Unknown template</h1><p>No email template <code>%s</code>. <a href="/__emails">All templates</a></p>`,
			templ.EscapeString(rel))
		return err
	}))
}
