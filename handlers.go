package mdsite

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/ogimage"
	"github.com/eringen/mdsite/views"
)

func (a *App) handleHome(c echo.Context) error {
	return Render(c, a.Views.Home(a.site()))
}

func (a *App) handleBlogIndex(c echo.Context) error {
	posts, err := a.Source.ListPosts(c.Request().Context(), c.QueryParam("ref"))
	if err != nil {
		return err
	}
	content.SortByDate(posts)
	return Render(c, a.Views.BlogIndex(a.site(), posts))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Source.FetchPost(c.Request().Context(), slug, c.QueryParam("ref"))
	if err != nil {
		return err
	}
	if post == nil {
		return echo.ErrNotFound
	}
	doc, err := a.Renderer.Render(requestOrigin(c), post.Body)
	if err != nil {
		return fmt.Errorf("render %s: %w", slug, err)
	}
	return Render(c, a.Views.Post(a.site(), views.PostView{
		Post:    post.Summary(),
		Doc:     doc,
		OGImage: views.OGImageURL(a.Config.URL, post.Meta.Title),
	}))
}

func (a *App) handleOGImage(c echo.Context) error {
	if !a.ogLimiter.Allow(c.RealIP()) {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.String(http.StatusTooManyRequests, "Too many requests")
	}
	title := ogimage.DefaultTitle
	if c.QueryParams().Has("title") {
		title = ogimage.TruncateTitle(c.QueryParam("title"), ogimage.MaxTitleLength)
	}
	png, err := a.OG.Render(title)
	if err != nil {
		a.Log.Error().Err(err).Str("title", title).Msg("og image failed")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return c.String(http.StatusInternalServerError, "Failed to generate the image")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Source.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, Published(posts))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Source.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, Published(posts))
}

func (a *App) handleHighlightCSS(c echo.Context) error {
	return c.Blob(http.StatusOK, "text/css; charset=utf-8", a.highlightCSS)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code == http.StatusNotFound || code >= 500 {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	if code >= 500 {
		ev := a.Log.Error().Err(err).Str("uri", c.Request().RequestURI)
		var verr *content.ValidationError
		if errors.As(err, &verr) {
			ev = ev.Str("slug", verr.Slug)
		}
		var serr *content.StatusError
		if errors.As(err, &serr) {
			ev = ev.Int("upstream_status", serr.Code)
		}
		ev.Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
