// Package markdown renders post bodies to sanitized HTML with heading anchors,
// external-link annotations, lazy images and diff-aware highlighted code.
package markdown

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Heading is a table-of-contents entry.
type Heading struct {
	Level int
	Text  string
	ID    string
}

// Anchor is the id attribute of the rendered heading: ID percent-encoded as
// a URL fragment. ASCII slugs are unchanged.
func (h Heading) Anchor() string {
	return (&url.URL{Fragment: h.ID}).EscapedFragment()
}

// Href is the in-page link to the heading.
func (h Heading) Href() string {
	return "#" + h.Anchor()
}

// Document is the result of a render.
type Document struct {
	HTML string
	TOC  []Heading
}

// Component returns a templ.Component that writes the document HTML.
func (d Document) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, d.HTML)
		return err
	})
}

// Renderer converts markdown to HTML. It is safe for concurrent use; all
// per-document state lives inside a single Render call.
type Renderer struct {
	highlighter Highlighter
	policy      *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithHighlighter sets the code highlighter. A nil highlighter renders code
// blocks as escaped plain text.
func WithHighlighter(h Highlighter) Option {
	return func(r *Renderer) {
		r.highlighter = h
	}
}

// WithSanitizer replaces the default sanitizing policy.
func WithSanitizer(p *bluemonday.Policy) Option {
	return func(r *Renderer) {
		r.policy = p
	}
}

// WithoutSanitizer disables the sanitizing pass.
func WithoutSanitizer() Option {
	return func(r *Renderer) {
		r.policy = nil
	}
}

// NewRenderer creates a Renderer using a chroma highlighter over
// DefaultLanguages and the package Policy.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		highlighter: NewChromaHighlighter(DefaultLanguages...),
		policy:      Policy(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts src to HTML. origin is the scheme and host of the incoming
// request; links pointing elsewhere open in a new context. A nil origin
// treats every absolute http(s) link as external.
func (r *Renderer) Render(origin *url.URL, src string) (Document, error) {
	nr := &nodeRenderer{
		origin:      origin,
		highlighter: r.highlighter,
		slugger:     NewSlugger(),
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, emoji.Emoji),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(nr, 100)),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return Document{}, fmt.Errorf("markdown: convert: %w", err)
	}
	out := buf.String()
	if r.policy != nil {
		out = r.policy.Sanitize(out)
	}
	return Document{HTML: out, TOC: nr.toc}, nil
}
