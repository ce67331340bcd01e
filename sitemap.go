package mdsite

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// renderSitemap lists the home page, the blog index and every post. posts
// must be sorted newest first.
func (a *App) renderSitemap(c echo.Context, posts []content.Summary) error {
	base := a.Config.URL
	var latest string
	if len(posts) > 0 {
		latest = posts[0].Meta.Date.Raw.Format("2006-01-02")
	}
	urls := []sitemapURL{
		{Loc: views.BuildURL(base), LastMod: latest},
		{Loc: views.BuildURL(base, "blog"), LastMod: latest},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     views.PostURL(base, p.Slug),
			LastMod: p.Meta.Date.Raw.Format("2006-01-02"),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
