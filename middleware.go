package mdsite

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/mdsite/etag"
)

const (
	homeCacheControl    = "public, max-age=5, stale-while-revalidate=604800"
	listingCacheControl = "public, s-maxage=60, stale-while-revalidate=31536000"
	postCacheControl    = "public, max-age=300, s-maxage=1800"
	ogCacheControl      = "public, immutable, no-transform, max-age=31536000"
	assetCacheControl   = "public, max-age=31536000, immutable"
	feedCacheControl    = "public, max-age=86400"
)

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.HTTPErrorHandler = a.httpErrorHandler

	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := a.Log.Info()
			if v.Error != nil {
				ev = a.Log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	}))

	e.Use(middleware.Recover())

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/public/") || path == "/og-image"
		},
	}))

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' https: data:; font-src 'self'",
		HSTSMaxAge:            31536000,
		HSTSExcludeSubdomains: false,
	}))

	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			return !wantsTrailingSlash(c.Request().URL.Path)
		},
	}))

	e.Use(cacheControlMiddleware)

	e.Use(etag.Middleware(a.Config.ETag))
}

// wantsTrailingSlash reports whether path is a page route that is
// canonicalized with a trailing slash: the blog index and single posts.
// Other routes, including custom ones, are served as registered.
func wantsTrailingSlash(path string) bool {
	if path == "/blog" {
		return true
	}
	slug, ok := strings.CutPrefix(path, "/blog/")
	return ok && slug != "" && !strings.ContainsAny(slug, "/.")
}

// cacheControlMiddleware sets the per-route Cache-Control. Routes without a
// rule get the ETag middleware's default.
func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if value := cacheControlFor(c.Request().URL.Path); value != "" {
			c.Response().Header().Set(echo.HeaderCacheControl, value)
		}
		return next(c)
	}
}

func cacheControlFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/public/") || path == "/favicon.svg":
		return assetCacheControl
	case path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt":
		return feedCacheControl
	case path == "/og-image":
		return ogCacheControl
	case path == "/healthz":
		return "no-store"
	case path == "/":
		return homeCacheControl
	case path == "/blog/":
		return listingCacheControl
	case strings.HasPrefix(path, "/blog/"):
		return postCacheControl
	}
	return ""
}
