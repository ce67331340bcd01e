package mdsite

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        rssGUID  `xml:"guid"`
	Categories  []string `xml:"category"`
}

type rssGUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// renderRSS writes an RSS 2.0 feed of posts, which must already be sorted
// newest first.
func (a *App) renderRSS(c echo.Context, posts []content.Summary) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		postURL := views.PostURL(base, p.Slug)
		items = append(items, rssItem{
			Title:       p.Meta.Title,
			Link:        postURL,
			Description: p.Meta.Description,
			PubDate:     p.Meta.Date.Raw.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: postURL, IsPermaLink: true},
			Categories:  p.Meta.Categories,
		})
	}
	channel := rssChannel{
		Title:       a.Config.Name,
		Link:        views.BuildURL(base),
		Description: a.Config.Description,
		Language:    "en",
		AtomLink: atomLink{
			Href: base + "/feed.xml",
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: items,
	}
	if len(posts) > 0 {
		channel.LastBuildDate = posts[0].Meta.Date.Raw.Format(time.RFC1123Z)
	}
	feed := rssXML{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: channel,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
