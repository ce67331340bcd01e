package mdsite

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdsite/content"
)

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Published drops drafts and returns the rest newest first.
func Published(posts []content.Summary) []content.Summary {
	out := make([]content.Summary, 0, len(posts))
	for _, p := range posts {
		if !p.Meta.Draft {
			out = append(out, p)
		}
	}
	content.SortByDate(out)
	return out
}

// requestOrigin is the scheme and host the request was served under. Links
// in rendered markdown are classified as external against it.
func requestOrigin(c echo.Context) *url.URL {
	return &url.URL{Scheme: c.Scheme(), Host: c.Request().Host}
}
