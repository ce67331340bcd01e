package markdown

import (
	"strings"
)

type diffKind int

const (
	diffNone diffKind = iota
	diffAddition
	diffDeletion
)

// diffMarkers maps a leading line marker to its kind. Markers are stripped
// from the code before it reaches the highlighter.
var diffMarkers = []struct {
	prefix string
	kind   diffKind
}{
	{"+ ", diffAddition},
	{"- ", diffDeletion},
}

// stripDiffMarkers removes "+ " and "- " prefixes and records which rows
// carried them. Rows are zero-based.
func stripDiffMarkers(code string) (string, map[int]diffKind) {
	rows := strings.Split(code, "\n")
	var kinds map[int]diffKind
	for i, row := range rows {
		for _, m := range diffMarkers {
			if strings.HasPrefix(row, m.prefix) {
				if kinds == nil {
					kinds = make(map[int]diffKind)
				}
				kinds[i] = m.kind
				rows[i] = row[len(m.prefix):]
				break
			}
		}
	}
	return strings.Join(rows, "\n"), kinds
}

// renderCode assembles a <pre><code> block. Each source row becomes a line
// span; diff rows get a background class and their marker back as text.
func renderCode(h Highlighter, code, lang string) string {
	clean, kinds := stripDiffMarkers(code)
	rows := strings.Split(clean, "\n")

	highlighted := false
	if h != nil {
		if out, ok := h.Highlight(clean, lang); ok {
			hrows := strings.Split(out, "\n")
			if len(hrows) == len(rows) {
				rows = hrows
				highlighted = true
			}
		}
	}

	var b strings.Builder
	b.WriteString(`<pre class="chroma"><code`)
	if lang != "" {
		b.WriteString(` lang="`)
		b.WriteString(Escape(lang, false))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	for i, row := range rows {
		if !highlighted {
			row = Escape(row, true)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		switch kinds[i] {
		case diffAddition:
			b.WriteString(`<span class="line bg-green-900">+ `)
		case diffDeletion:
			b.WriteString(`<span class="line bg-red-900">- `)
		default:
			b.WriteString(`<span class="line">`)
		}
		b.WriteString(row)
		b.WriteString("</span>")
	}
	b.WriteString("\n</code></pre>\n")
	return b.String()
}
