package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter turns code into HTML. The returned markup must already be
// escaped and must keep the newline structure of code. ok is false when the
// code was left alone.
type Highlighter interface {
	Highlight(code, lang string) (html string, ok bool)
}

// DefaultLanguages are the lexers considered for automatic detection.
var DefaultLanguages = []string{
	"typescript", "javascript", "tsx", "html", "xml", "css",
	"go", "bash", "json", "yaml", "diff",
}

// ChromaHighlighter highlights with chroma lexers. A fence language is used
// when chroma knows it; otherwise the registered languages are scored against
// the code and the best match wins.
type ChromaHighlighter struct {
	languages []string

	once    sync.Once
	lexers  []chroma.Lexer
	byAlias map[string]chroma.Lexer
}

// NewChromaHighlighter creates a highlighter detecting among languages.
func NewChromaHighlighter(languages ...string) *ChromaHighlighter {
	return &ChromaHighlighter{languages: languages}
}

// Init resolves the registered languages. It runs once; later calls are
// no-ops. Highlight calls it when it has not been called yet.
func (h *ChromaHighlighter) Init() {
	h.once.Do(func() {
		h.byAlias = make(map[string]chroma.Lexer, len(h.languages))
		for _, name := range h.languages {
			l := lexers.Get(name)
			if l == nil {
				continue
			}
			h.lexers = append(h.lexers, l)
			h.byAlias[strings.ToLower(name)] = l
		}
	})
}

// Languages returns the names of the registered lexers.
func (h *ChromaHighlighter) Languages() []string {
	h.Init()
	names := make([]string, 0, len(h.lexers))
	for _, l := range h.lexers {
		names = append(names, l.Config().Name)
	}
	return names
}

func (h *ChromaHighlighter) lexer(code, lang string) chroma.Lexer {
	if lang != "" {
		if l, ok := h.byAlias[strings.ToLower(lang)]; ok {
			return l
		}
		if l := lexers.Get(lang); l != nil {
			return l
		}
	}
	var (
		best  chroma.Lexer
		score float32
	)
	for _, l := range h.lexers {
		a, ok := l.(chroma.Analyser)
		if !ok {
			continue
		}
		if s := a.AnalyseText(code); s > score {
			best, score = l, s
		}
	}
	return best
}

func (h *ChromaHighlighter) Highlight(code, lang string) (string, bool) {
	h.Init()
	l := h.lexer(code, lang)
	if l == nil {
		return "", false
	}
	it, err := chroma.Coalesce(l).Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	for _, tok := range it.Tokens() {
		class := tokenClass(tok.Type)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if part == "" {
				continue
			}
			if class == "" {
				b.WriteString(Escape(part, true))
				continue
			}
			fmt.Fprintf(&b, `<span class="%s">%s</span>`, class, Escape(part, true))
		}
	}
	out := b.String()
	// lexers terminate the final line themselves
	if !strings.HasSuffix(code, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	if out == code {
		return "", false
	}
	return out, true
}

func tokenClass(t chroma.TokenType) string {
	for _, tt := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[tt]; ok && class != "" {
			return class
		}
	}
	return ""
}

// CSS returns the stylesheet for the chroma style name, scoped to
// ".chroma". Unknown names fall back to chroma's default style.
func CSS(style string) (string, error) {
	var b strings.Builder
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&b, styles.Get(style)); err != nil {
		return "", fmt.Errorf("markdown: write css: %w", err)
	}
	return b.String(), nil
}
