package mdsite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/etag"
	"github.com/eringen/mdsite/markdown"
	"github.com/eringen/mdsite/views"
)

// SiteConfig holds all configuration for an mdsite server.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for the home page and JSON-LD
	Tagline     string
	Twitter     string
	Social      []views.SocialLink

	Addr string // Listen address (default ":3000")
	Env  string // "development" or "production" (default)

	LogLevel  string
	LogPretty bool

	Content content.Config

	HighlightStyle     string   // chroma style for /public/highlight.css (default "monokai")
	HighlightLanguages []string // languages considered for automatic detection

	ETag etag.Options

	OGFontPath   string        // TTF/OTF file; empty uses Go Bold
	OGAvatarPath string        // optional image drawn above the title
	OGRateLimit  int           // requests per window and IP; 0 disables limiting
	OGRateWindow time.Duration // (default 1m)

	ShutdownTimeout time.Duration // (default 10s)
}

// Development reports whether the site runs in development mode. Drafts are
// listed in development only.
func (c SiteConfig) Development() bool {
	return c.Env == "development"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Env == "" {
		c.Env = "production"
	}
	if c.HighlightStyle == "" {
		c.HighlightStyle = "monokai"
	}
	if len(c.HighlightLanguages) == 0 {
		c.HighlightLanguages = markdown.DefaultLanguages
	}
	if c.ETag == (etag.Options{}) {
		c.ETag = etag.DefaultOptions()
	}
	if c.OGRateWindow == 0 {
		c.OGRateWindow = time.Minute
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	c.Content.IncludeDrafts = c.Development()
}

// Validate reports every configuration problem at once.
func (c SiteConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Content.Owner) == "" {
		errs = append(errs, errors.New("content.owner is required"))
	}
	if strings.TrimSpace(c.Content.Repo) == "" {
		errs = append(errs, errors.New("content.repo is required"))
	}
	if u, err := url.Parse(c.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site.url %q must be an absolute URL", c.URL))
	}
	if c.Env != "development" && c.Env != "production" {
		errs = append(errs, fmt.Errorf("env %q must be development or production", c.Env))
	}
	if c.OGRateLimit < 0 {
		errs = append(errs, errors.New("og.rate_limit must not be negative"))
	}
	if c.Content.Concurrency < 0 {
		errs = append(errs, errors.New("content.concurrency must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("mdsite: invalid config: %w", err)
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces page components. Nil fields keep the defaults.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithLogger sets the application logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithContentOptions passes options to the content source.
func WithContentOptions(opts ...content.Option) Option {
	return func(a *App) {
		a.contentOpts = append(a.contentOpts, opts...)
	}
}

// WithRenderer replaces the markdown renderer.
func WithRenderer(r *markdown.Renderer) Option {
	return func(a *App) {
		a.Renderer = r
	}
}

// ConfigOption documents one configuration key and its default.
type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// ConfigOptions returns every configuration key with its default value.
// It is the single source of defaults for LoadConfig and the config command.
func ConfigOptions() []ConfigOption {
	return []ConfigOption{
		{Key: "addr", Default: ":3000", Comment: "HTTP listen address"},
		{Key: "env", Default: "production", Comment: "development lists draft posts; production hides them"},
		{Key: "shutdown_timeout", Default: "10s", Comment: "Grace period for in-flight requests on shutdown"},

		{Key: "site.name", Default: "Blog", Comment: "Site name used in titles and the feed"},
		{Key: "site.url", Default: "http://localhost:3000", Comment: "Canonical base URL"},
		{Key: "site.description", Default: "", Comment: "Description for meta tags and the feed"},
		{Key: "site.author", Default: "", Comment: "Author name shown on the home page"},
		{Key: "site.tagline", Default: "", Comment: "Line shown under the home page greeting"},
		{Key: "site.twitter", Default: "", Comment: "Twitter handle for twitter:creator"},
		{Key: "social", Default: []map[string]string{}, Comment: "Home page links: list of {name, url}; env form Name=URL,Name=URL"},

		{Key: "log.level", Default: "info", Comment: "trace, debug, info, warn, error or off"},
		{Key: "log.pretty", Default: false, Comment: "Human readable console output instead of JSON"},

		{Key: "content.owner", Default: "", Comment: "Owner of the content repository (required)"},
		{Key: "content.repo", Default: "", Comment: "Name of the content repository (required)"},
		{Key: "content.dir", Default: "content/blog", Comment: "Directory holding <slug>.md files"},
		{Key: "content.ref", Default: "main", Comment: "Branch, tag or commit used when a request pins none"},
		{Key: "content.raw_base_url", Default: "https://raw.githubusercontent.com", Comment: "Base URL for raw file downloads"},
		{Key: "content.api_base_url", Default: "https://api.github.com", Comment: "Base URL for directory listings"},
		{Key: "content.token", Default: "", Comment: "Optional bearer token for the listing API"},
		{Key: "content.user_agent", Default: "mdsite", Comment: "User-Agent sent to the content host"},
		{Key: "content.timeout", Default: "15s", Comment: "HTTP client timeout for content requests"},
		{Key: "content.concurrency", Default: 8, Comment: "Parallel post fetches when building a listing"},

		{Key: "render.highlight_style", Default: "monokai", Comment: "Chroma style served at /public/highlight.css"},
		{Key: "render.languages", Default: markdown.DefaultLanguages, Comment: "Languages considered when a code fence names none"},

		{Key: "etag.weak", Default: true, Comment: "Weak entity tags compare ignoring the W/ marker"},
		{Key: "etag.cache_control", Default: etag.DefaultCacheControl, Comment: "Cache-Control for tagged responses that set none"},

		{Key: "og.font_path", Default: "", Comment: "TTF/OTF font for OG images; empty uses Go Bold"},
		{Key: "og.avatar_path", Default: "", Comment: "Optional PNG/JPEG drawn above the OG image title"},
		{Key: "og.rate_limit", Default: 30, Comment: "OG image requests per window and IP; 0 disables"},
		{Key: "og.rate_window", Default: "1m", Comment: "Window for og.rate_limit"},
	}
}

func applyDefaults(v *viper.Viper) {
	for _, o := range ConfigOptions() {
		v.SetDefault(o.Key, o.Default)
	}
}

// LoadConfig resolves configuration with precedence: defaults < file < env.
// Environment variables use the MDSITE_ prefix with dots replaced by
// underscores, for example MDSITE_CONTENT_OWNER.
func LoadConfig(v *viper.Viper) (SiteConfig, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("mdsite")
		v.AddConfigPath(".")
	}
	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("mdsite: read config: %w", err)
		}
	}

	v.SetEnvPrefix("mdsite")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	social, err := socialLinks(v)
	if err != nil {
		return SiteConfig{}, err
	}

	cfg := SiteConfig{
		Name:        v.GetString("site.name"),
		URL:         v.GetString("site.url"),
		Description: v.GetString("site.description"),
		Author:      v.GetString("site.author"),
		Tagline:     v.GetString("site.tagline"),
		Twitter:     v.GetString("site.twitter"),
		Social:      social,

		Addr:      v.GetString("addr"),
		Env:       strings.ToLower(strings.TrimSpace(v.GetString("env"))),
		LogLevel:  v.GetString("log.level"),
		LogPretty: v.GetBool("log.pretty"),

		Content: content.Config{
			Owner:       v.GetString("content.owner"),
			Repo:        v.GetString("content.repo"),
			Dir:         v.GetString("content.dir"),
			DefaultRef:  v.GetString("content.ref"),
			RawBaseURL:  v.GetString("content.raw_base_url"),
			APIBaseURL:  v.GetString("content.api_base_url"),
			Token:       v.GetString("content.token"),
			UserAgent:   v.GetString("content.user_agent"),
			Timeout:     v.GetDuration("content.timeout"),
			Concurrency: v.GetInt("content.concurrency"),
		},

		HighlightStyle:     v.GetString("render.highlight_style"),
		HighlightLanguages: FilterEmpty(stringList(v, "render.languages")),

		ETag: etag.Options{
			Weak:         v.GetBool("etag.weak"),
			CacheControl: v.GetString("etag.cache_control"),
		},

		OGFontPath:   v.GetString("og.font_path"),
		OGAvatarPath: v.GetString("og.avatar_path"),
		OGRateLimit:  v.GetInt("og.rate_limit"),
		OGRateWindow: v.GetDuration("og.rate_window"),

		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}
	return cfg, nil
}

// stringList reads a list that may also arrive as a comma-separated env value.
func stringList(v *viper.Viper, key string) []string {
	if s, ok := v.Get(key).(string); ok {
		return strings.Split(s, ",")
	}
	return v.GetStringSlice(key)
}

// socialLinks reads the social key either as a list of {name, url} or as
// "Name=URL,Name=URL".
func socialLinks(v *viper.Viper) ([]views.SocialLink, error) {
	if s, ok := v.Get("social").(string); ok {
		var links []views.SocialLink
		for _, pair := range FilterEmpty(strings.Split(s, ",")) {
			name, link, found := strings.Cut(pair, "=")
			if !found {
				return nil, fmt.Errorf("mdsite: social entry %q must be Name=URL", pair)
			}
			links = append(links, views.SocialLink{Name: strings.TrimSpace(name), URL: strings.TrimSpace(link)})
		}
		return links, nil
	}
	var links []views.SocialLink
	if err := v.UnmarshalKey("social", &links); err != nil {
		return nil, fmt.Errorf("mdsite: social: %w", err)
	}
	return links, nil
}

// RenderDefaultYAML renders a commented config file holding every default.
func RenderDefaultYAML() (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	sections := make(map[string]*yaml.Node)

	for _, o := range ConfigOptions() {
		parent, key := root, o.Key
		if section, rest, ok := strings.Cut(o.Key, "."); ok {
			node, seen := sections[section]
			if !seen {
				node = &yaml.Node{Kind: yaml.MappingNode}
				sections[section] = node
				root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: section}, node)
			}
			parent, key = node, rest
		}
		var value yaml.Node
		if err := value.Encode(o.Default); err != nil {
			return "", fmt.Errorf("mdsite: encode %s: %w", o.Key, err)
		}
		parent.Content = append(parent.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: o.Comment},
			&value,
		)
	}

	out, err := yaml.Marshal(&yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "mdsite configuration",
		Content:     []*yaml.Node{root},
	})
	if err != nil {
		return "", fmt.Errorf("mdsite: render config: %w", err)
	}
	return string(out), nil
}
