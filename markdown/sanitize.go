package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var (
	classTokens = regexp.MustCompile(`^[\w\- ]+$`)
	relTokens   = regexp.MustCompile(`^[a-z ]+$`)
	anchorID    = regexp.MustCompile(`^[\p{L}\p{N}\p{M}_\-%]+$`)
	codeLang    = regexp.MustCompile(`^[\w\-+#.]+$`)
)

// Policy returns the sanitizing policy applied to rendered posts. It is the
// bluemonday UGC policy extended with the attributes the renderer emits.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)

	p.AllowElements("span", "pre", "code", "input")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("rel").Matching(relTokens).OnElements("a")
	p.AllowAttrs("class").Matching(classTokens).OnElements("a", "span", "pre", "code")
	p.AllowAttrs("id").Matching(anchorID).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowAttrs("lang").Matching(codeLang).OnElements("code")
	p.AllowAttrs("loading").Matching(regexp.MustCompile(`^lazy$`)).OnElements("img")
	// alt and title are free text; bluemonday re-escapes attribute values
	p.AllowAttrs("alt", "title").OnElements("img")
	p.AllowAttrs("title").OnElements("a")

	// task list items
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}
