// Package templates renders the HTML pages of the catalog site.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ProductView is what the detail page shows for one product.
type ProductView struct {
	Name        string
	Code        string
	Description string
	Image       string
	Link        string
	// CodeImage is the site path of the product's QR artifact, or "".
	CodeImage string
	Fields    []Field
}

// Field is one labelled value in the details table.
type Field struct {
	Label string
	Value string
}

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f5f2;color:#222}` +
	`main{max-width:720px;margin:0 auto;padding:24px}` +
	`.card{background:#fff;border-radius:12px;padding:24px;box-shadow:0 1px 4px rgba(0,0,0,.08)}` +
	`.hero{width:100%;max-height:420px;object-fit:cover;border-radius:8px}` +
	`.placeholder{height:240px;border-radius:8px;background:#e4e1da;display:flex;align-items:center;justify-content:center;color:#777}` +
	`.code{color:#777;font-size:.9em;letter-spacing:.05em}` +
	`table{width:100%;border-collapse:collapse;margin-top:16px}` +
	`th,td{text-align:left;padding:6px 8px;border-bottom:1px solid #eee;vertical-align:top}` +
	`.button{display:inline-block;margin-top:16px;padding:10px 18px;background:#222;color:#fff;border-radius:6px;text-decoration:none}` +
	`.qr{margin-top:24px;text-align:center}.qr img{width:160px;height:160px}`

// layout wraps body in the shared page chrome.
func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s</title><style>%s</style></head><body><main>`,
			templ.EscapeString(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// ProductPage renders the detail page of one product.
func ProductPage(p ProductView) templ.Component {
	return layout(p.Name, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<article class="card">`)

		if p.Image != "" {
			fmt.Fprintf(&b, `<img class="hero" src="%s" alt="%s">`,
				templ.EscapeString(string(templ.URL(p.Image))), templ.EscapeString(p.Name))
		} else {
			b.WriteString(`<div class="placeholder">No image</div>`)
		}

		fmt.Fprintf(&b, `<h1>%s</h1>`, templ.EscapeString(p.Name))
		if p.Code != "" {
			fmt.Fprintf(&b, `<p class="code">%s</p>`, templ.EscapeString(p.Code))
		}
		if p.Description != "" {
			fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(p.Description))
		}

		if len(p.Fields) > 0 {
			b.WriteString(`<table>`)
			for _, f := range p.Fields {
				fmt.Fprintf(&b, `<tr><th>%s</th><td>%s</td></tr>`,
					templ.EscapeString(f.Label), templ.EscapeString(f.Value))
			}
			b.WriteString(`</table>`)
		}

		if p.Link != "" {
			fmt.Fprintf(&b, `<a class="button" href="%s" rel="noopener" target="_blank">View product</a>`,
				templ.EscapeString(string(templ.URL(p.Link))))
		}

		if p.CodeImage != "" {
			fmt.Fprintf(&b, `<div class="qr"><img src="%s" alt="QR code for %s"></div>`,
				templ.EscapeString(p.CodeImage), templ.EscapeString(p.Name))
		}

		b.WriteString(`</article>`)
		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// NotFoundPage renders the page for an unknown product identifier.
func NotFoundPage(id string) templ.Component {
	return layout("Product not found", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		msg := "No product was requested."
		if id != "" {
			msg = fmt.Sprintf("No product matches %q.", id)
		}
		_, err := fmt.Fprintf(w,
			`<article class="card"><h1>Product not found</h1><p>%s</p><a class="button" href="/">Back to catalog</a></article>`,
			templ.EscapeString(msg))
		return err
	}))
}
