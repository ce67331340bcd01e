package markdown

import (
	"regexp"
	"strings"
)

var (
	escapeAll    = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")
	escapeMarkup = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")

	// a bare ampersand is one that does not start an entity
	bareAmpersand = regexp.MustCompile(`&(?:#\d+;|#[xX][0-9a-fA-F]+;|[A-Za-z][A-Za-z0-9]*;)?`)
)

// Escape replaces the HTML special characters in s. With encode set every
// ampersand is escaped; otherwise existing entities such as "&amp;" or
// "&#39;" are kept and only bare ampersands are escaped.
func Escape(s string, encode bool) string {
	if encode {
		return escapeAll.Replace(s)
	}
	s = bareAmpersand.ReplaceAllStringFunc(s, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
	return escapeMarkup.Replace(s)
}
