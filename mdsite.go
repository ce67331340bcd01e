// Package mdsite is a personal website server built with Go, Echo, and templ.
// Blog posts are markdown files in a remote git repository; every request
// fetches them fresh and renders them to HTML with heading anchors,
// highlighted code and per-request external link detection.
//
// Pages are templ components supplied through ViewFuncs, so sites can
// replace any of them while mdsite handles fetching, rendering, caching
// headers, feeds and OG images.
package mdsite

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/logger"
	"github.com/eringen/mdsite/markdown"
	"github.com/eringen/mdsite/ogimage"
	"github.com/eringen/mdsite/views"
)

// App is the central mdsite application. It wires together the content
// source, renderer, handlers, middleware, and page components.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Source   *content.Source
	Renderer *markdown.Renderer
	OG       *ogimage.Generator
	Views    ViewFuncs
	Log      zerolog.Logger

	highlighter  *markdown.ChromaHighlighter
	ogLimiter    *RequestLimiter
	highlightCSS []byte
	contentOpts  []content.Option
	customRoutes []func(*App)
	initialized  bool
}

// New creates an App with the given configuration. Nothing touches the
// network or disk until Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  DefaultViews(),
		Log:    logger.New(cfg.LogLevel, cfg.LogPretty),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Views.fillDefaults()
	return a
}

// Init validates the configuration and builds the content source, renderer,
// OG image generator, middleware and routes. It is called by Start; tests
// call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	a.Source = content.NewSource(a.Config.Content, a.Log, a.contentOpts...)

	if a.Renderer == nil {
		a.highlighter = markdown.NewChromaHighlighter(a.Config.HighlightLanguages...)
		a.highlighter.Init()
		a.Renderer = markdown.NewRenderer(markdown.WithHighlighter(a.highlighter))
		a.Log.Debug().Strs("languages", a.highlighter.Languages()).Msg("highlighter ready")
	}

	css, err := markdown.CSS(a.Config.HighlightStyle)
	if err != nil {
		return fmt.Errorf("mdsite: highlight css: %w", err)
	}
	a.highlightCSS = []byte(css)

	og, err := a.newOGGenerator()
	if err != nil {
		return err
	}
	a.OG = og
	a.ogLimiter = NewRequestLimiter(a.Config.OGRateLimit, a.Config.OGRateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

func (a *App) newOGGenerator() (*ogimage.Generator, error) {
	var opts ogimage.Options
	if a.Config.OGFontPath != "" {
		data, err := os.ReadFile(a.Config.OGFontPath)
		if err != nil {
			return nil, fmt.Errorf("mdsite: og font: %w", err)
		}
		opts.Font = data
	}
	if a.Config.OGAvatarPath != "" {
		img, err := loadAvatar(a.Config.OGAvatarPath)
		if err != nil {
			return nil, err
		}
		opts.Avatar = img
	}
	g, err := ogimage.New(opts)
	if err != nil {
		return nil, fmt.Errorf("mdsite: %w", err)
	}
	return g, nil
}

func loadAvatar(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mdsite: og avatar: %w", err)
	}
	img, err := ogimage.LoadAvatar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mdsite: %w", err)
	}
	return img, nil
}

// Start initializes the App and serves HTTP until ctx is cancelled, then
// shuts down gracefully within Config.ShutdownTimeout.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", a.Config.Addr).Str("env", a.Config.Env).Msg("server starting")
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mdsite: shutdown: %w", err)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	assets := http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS)))
	e.GET("/public/highlight.css", a.handleHighlightCSS)
	e.GET("/public/*", echo.WrapHandler(assets))
	e.FileFS("/favicon.svg", "embedded/favicon.svg", EmbeddedAssets)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/healthz", handleHealth)

	pages := []string{http.MethodGet, http.MethodHead}
	e.Match(pages, "/", a.handleHome)
	e.Match(pages, "/blog/", a.handleBlogIndex)
	e.Match(pages, "/blog/:slug/", a.handlePost)
	e.Match(pages, "/feed.xml", a.handleFeed)
	e.Match(pages, "/sitemap.xml", a.handleSitemap)
	e.GET("/og-image", a.handleOGImage)
}

// Close releases background resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.ogLimiter != nil {
		a.ogLimiter.Close()
	}
	return nil
}

// site is the view-facing subset of the configuration.
func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Tagline:     a.Config.Tagline,
		Twitter:     a.Config.Twitter,
		Social:      a.Config.Social,
	}
}
