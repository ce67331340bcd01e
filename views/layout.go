// Package views holds the page components. They are plain templ components
// so callers can swap any of them through the application's ViewFuncs.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// pageWriter writes markup and remembers the first error.
type pageWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (p *pageWriter) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s escaped; it is also safe inside quoted attributes.
func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

// href writes a sanitized URL for an href or src attribute.
func (p *pageWriter) href(s string) {
	p.text(string(templ.URL(s)))
}

func (p *pageWriter) component(c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(p.ctx, p.w)
}

func (p *pageWriter) meta(attr, name, value string) {
	if value == "" {
		return
	}
	p.raw(`<meta ` + attr + `="`)
	p.text(name)
	p.raw(`" content="`)
	p.text(value)
	p.raw("\">\n")
}

func page(fn func(p *pageWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{ctx: ctx, w: w}
		fn(p)
		return p.err
	})
}

// Layout wraps body in the HTML document with head metadata and navigation.
func Layout(site SiteConfig, meta PageMeta, body templ.Component) templ.Component {
	return page(func(p *pageWriter) {
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = site.Name + " | " + meta.Title
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}

		p.raw("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		p.raw("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
		p.raw("<title>")
		p.text(title)
		p.raw("</title>\n")
		if meta.URL != "" {
			p.raw(`<link rel="canonical" href="`)
			p.href(meta.URL)
			p.raw("\">\n")
		}
		if meta.NoIndex {
			p.meta("name", "robots", "noindex")
		}
		p.meta("name", "description", meta.Description)
		p.meta("property", "og:type", ogType)
		p.meta("property", "og:url", meta.URL)
		p.meta("property", "og:title", meta.Title)
		p.meta("property", "og:description", meta.Description)
		p.meta("property", "og:image", meta.Image)
		p.meta("name", "twitter:title", meta.Title)
		p.meta("name", "twitter:description", meta.Description)
		p.meta("name", "twitter:image", meta.Image)
		if meta.Image != "" {
			p.meta("name", "twitter:card", "summary_large_image")
		}
		p.meta("name", "twitter:creator", twitterHandle(site.Twitter))
		p.raw("<link rel=\"icon\" type=\"image/svg+xml\" href=\"/public/favicon.svg\">\n")
		p.raw("<link rel=\"alternate\" type=\"application/rss+xml\" href=\"/feed.xml\" title=\"")
		p.text(site.Name)
		p.raw("\">\n")
		p.raw("<link rel=\"stylesheet\" href=\"/public/site.css\">\n")
		p.raw("<link rel=\"stylesheet\" href=\"/public/highlight.css\">\n")
		if meta.JSONLD != "" {
			p.raw("<script type=\"application/ld+json\">")
			p.raw(meta.JSONLD)
			p.raw("</script>\n")
		}
		p.raw("</head>\n<body>\n")

		p.raw("<header class=\"site-header\"><nav>")
		p.raw(`<a class="site-name" href="/">`)
		p.text(site.Name)
		p.raw(`</a><a href="/blog/">Blog</a></nav></header>` + "\n")
		p.raw("<main>\n")
		p.component(body)
		p.raw("</main>\n</body>\n</html>\n")
	})
}
