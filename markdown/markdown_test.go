package markdown

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

type recordingHighlighter struct {
	calls []string
	langs []string
}

func (h *recordingHighlighter) Highlight(code, lang string) (string, bool) {
	h.calls = append(h.calls, code)
	h.langs = append(h.langs, lang)
	return "", false
}

func mustOrigin(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func renderDoc(t *testing.T, r *Renderer, src string) (Document, *goquery.Document) {
	t.Helper()
	doc, err := r.Render(mustOrigin(t, "https://example.com"), src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	q, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	return doc, q
}

func TestRenderHeadingsUniqueAnchors(t *testing.T) {
	doc, q := renderDoc(t, NewRenderer(), "# Intro\n\ntext\n\n## Intro\n\n### Setup & run\n")

	want := []Heading{
		{Level: 1, Text: "Intro", ID: "intro"},
		{Level: 2, Text: "Intro", ID: "intro-1"},
		{Level: 3, Text: "Setup & run", ID: "setup--run"},
	}
	if len(doc.TOC) != len(want) {
		t.Fatalf("TOC = %+v, want %+v", doc.TOC, want)
	}
	for i := range want {
		if doc.TOC[i] != want[i] {
			t.Errorf("TOC[%d] = %+v, want %+v", i, doc.TOC[i], want[i])
		}
	}

	h2 := q.Find("h2")
	if id, _ := h2.Attr("id"); id != "intro-1" {
		t.Errorf("h2 id = %q, want %q", id, "intro-1")
	}
	a := h2.Find("a.header-link")
	if href, _ := a.Attr("href"); href != "#intro-1" {
		t.Errorf("h2 anchor href = %q, want %q", href, "#intro-1")
	}
	if a.Text() != "Intro" {
		t.Errorf("h2 anchor text = %q, want %q", a.Text(), "Intro")
	}
}

func TestRenderHeadingMarkup(t *testing.T) {
	r := NewRenderer(WithoutSanitizer())
	doc, err := r.Render(nil, "## Getting started\n")
	if err != nil {
		t.Fatal(err)
	}
	want := `<h2 id="getting-started"><a href="#getting-started" class="header-link">Getting started</a></h2>` + "\n"
	if doc.HTML != want {
		t.Errorf("Render = %q, want %q", doc.HTML, want)
	}
}

func TestRenderAnchorsResetPerDocument(t *testing.T) {
	r := NewRenderer()
	for i := 0; i < 2; i++ {
		doc, err := r.Render(nil, "# Intro\n")
		if err != nil {
			t.Fatal(err)
		}
		if doc.TOC[0].ID != "intro" {
			t.Errorf("render %d: id = %q, want %q", i, doc.TOC[0].ID, "intro")
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	src := "# A\n\n[x](https://other.dev)\n\n```go\nfunc main() {}\n```\n"
	r := NewRenderer()
	first, _ := renderDoc(t, r, src)
	second, _ := renderDoc(t, r, src)
	if first.HTML != second.HTML {
		t.Errorf("Render not deterministic:\n%s\n---\n%s", first.HTML, second.HTML)
	}
}

func TestRenderLinks(t *testing.T) {
	src := "[same](https://example.com/page) [other](https://other.dev/x) [rel](/about) [frag](#top) [mail](mailto:me@example.com)\n"
	_, q := renderDoc(t, NewRenderer(), src)

	tests := []struct {
		text     string
		external bool
	}{
		{"same", false},
		{"other", true},
		{"rel", false},
		{"frag", false},
		{"mail", false},
	}
	for _, tt := range tests {
		a := q.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Text() == tt.text
		})
		if a.Length() != 1 {
			t.Fatalf("link %q not found", tt.text)
		}
		target, hasTarget := a.Attr("target")
		rel, _ := a.Attr("rel")
		if tt.external {
			if target != "_blank" || rel != "noreferrer noopener nofollow" {
				t.Errorf("link %q: target=%q rel=%q, want external attributes", tt.text, target, rel)
			}
			continue
		}
		if hasTarget {
			t.Errorf("link %q: unexpected target=%q", tt.text, target)
		}
	}
}

func TestRenderLinkNilOrigin(t *testing.T) {
	r := NewRenderer(WithoutSanitizer())
	doc, err := r.Render(nil, "[x](https://example.com) [y](/local)\n")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(doc.HTML, `target="_blank"`) != 1 {
		t.Errorf("Render = %q, want exactly one external link", doc.HTML)
	}
}

func TestRenderImagesLazy(t *testing.T) {
	_, q := renderDoc(t, NewRenderer(), "![A *cat*](/cat.png \"Cat\")\n")
	img := q.Find("img")
	if img.Length() != 1 {
		t.Fatal("img not found")
	}
	attrs := map[string]string{"loading": "lazy", "src": "/cat.png", "alt": "A cat", "title": "Cat"}
	for name, want := range attrs {
		if got, _ := img.Attr(name); got != want {
			t.Errorf("img %s = %q, want %q", name, got, want)
		}
	}
}

func TestRenderImageAndLinkTitlesKeepPunctuation(t *testing.T) {
	tests := []struct {
		alt, title string
	}{
		{"What?", "Really?"},
		{"a & b", "x; y"},
		{"Diagram: A -> B", "1 > 0"},
		{`Say "hi"`, "it's fine"},
	}
	for _, tt := range tests {
		src := "![" + tt.alt + "](/img.png \"" + strings.ReplaceAll(tt.title, `"`, `\"`) + "\")\n"
		_, q := renderDoc(t, NewRenderer(), src)
		img := q.Find("img")
		if got, _ := img.Attr("alt"); got != tt.alt {
			t.Errorf("alt for %q = %q, want %q", src, got, tt.alt)
		}
		if got, _ := img.Attr("title"); got != tt.title {
			t.Errorf("title for %q = %q, want %q", src, got, tt.title)
		}
	}

	_, q := renderDoc(t, NewRenderer(), "[docs](/docs \"Docs: read me?\")\n")
	if got, _ := q.Find("a").Attr("title"); got != "Docs: read me?" {
		t.Errorf("link title = %q, want %q", got, "Docs: read me?")
	}
}

func TestRenderNonASCIIHeadingAnchor(t *testing.T) {
	for _, r := range []*Renderer{NewRenderer(), NewRenderer(WithoutSanitizer())} {
		doc, q := renderDoc(t, r, "## Über uns\n")
		if len(doc.TOC) != 1 || doc.TOC[0].ID != "über-uns" {
			t.Fatalf("TOC = %+v", doc.TOC)
		}
		if got := doc.TOC[0].Href(); got != "#%C3%BCber-uns" {
			t.Errorf("Href = %q, want %q", got, "#%C3%BCber-uns")
		}
		h2 := q.Find("h2")
		id, _ := h2.Attr("id")
		href, _ := h2.Find("a.header-link").Attr("href")
		if "#"+id != href {
			t.Errorf("id %q and href %q differ", id, href)
		}
		if href != doc.TOC[0].Href() {
			t.Errorf("href = %q, want %q", href, doc.TOC[0].Href())
		}
	}
}

func TestRenderDiffCodeBlock(t *testing.T) {
	h := &recordingHighlighter{}
	r := NewRenderer(WithHighlighter(h), WithoutSanitizer())
	doc, err := r.Render(nil, "```ts\n+ const a = 1;\n- const b = 2;\nconst c = a < b;\n```\n")
	if err != nil {
		t.Fatal(err)
	}

	if len(h.calls) != 1 {
		t.Fatalf("highlighter called %d times, want 1", len(h.calls))
	}
	if want := "const a = 1;\nconst b = 2;\nconst c = a < b;"; h.calls[0] != want {
		t.Errorf("highlighter input = %q, want %q", h.calls[0], want)
	}
	if h.langs[0] != "ts" {
		t.Errorf("highlighter lang = %q, want %q", h.langs[0], "ts")
	}

	want := `<pre class="chroma"><code lang="ts">` +
		`<span class="line bg-green-900">+ const a = 1;</span>` + "\n" +
		`<span class="line bg-red-900">- const b = 2;</span>` + "\n" +
		`<span class="line">const c = a &lt; b;</span>` + "\n" +
		"</code></pre>\n"
	if doc.HTML != want {
		t.Errorf("Render =\n%q\nwant\n%q", doc.HTML, want)
	}
}

func TestRenderIndentedCodeBlock(t *testing.T) {
	r := NewRenderer(WithHighlighter(nil), WithoutSanitizer())
	doc, err := r.Render(nil, "    <b>x</b>\n")
	if err != nil {
		t.Fatal(err)
	}
	want := `<pre class="chroma"><code><span class="line">&lt;b&gt;x&lt;/b&gt;</span>` + "\n</code></pre>\n"
	if doc.HTML != want {
		t.Errorf("Render = %q, want %q", doc.HTML, want)
	}
}

func TestRenderHighlightedCodeSurvivesSanitizer(t *testing.T) {
	_, q := renderDoc(t, NewRenderer(), "```go\nfunc main() {\n}\n```\n")
	lines := q.Find("pre.chroma code span.line")
	if lines.Length() != 2 {
		t.Fatalf("line spans = %d, want 2", lines.Length())
	}
	if q.Find("span.line span[class]").Length() == 0 {
		t.Error("expected token spans inside highlighted lines")
	}
	if lang, _ := q.Find("code").Attr("lang"); lang != "go" {
		t.Errorf("code lang = %q, want %q", lang, "go")
	}
}

func TestRenderSanitizesRawHTML(t *testing.T) {
	_, q := renderDoc(t, NewRenderer(), "<script>alert(1)</script>\n\n<a href=\"javascript:alert(1)\">x</a>\n")
	if q.Find("script").Length() != 0 {
		t.Error("script element survived sanitizing")
	}
	if href, ok := q.Find("a").Attr("href"); ok && strings.HasPrefix(href, "javascript:") {
		t.Errorf("dangerous href survived: %q", href)
	}
}

func TestDocumentComponent(t *testing.T) {
	var b strings.Builder
	doc := Document{HTML: "<p>hi</p>"}
	if err := doc.Component().Render(t.Context(), &b); err != nil {
		t.Fatal(err)
	}
	if b.String() != doc.HTML {
		t.Errorf("Component wrote %q, want %q", b.String(), doc.HTML)
	}
}
