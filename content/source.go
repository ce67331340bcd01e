// Package content fetches blog posts as raw markdown from a remote git
// content repository and validates their front-matter.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Config addresses the content repository.
type Config struct {
	Owner      string // repository owner
	Repo       string // repository name
	Dir        string // directory holding <slug>.md files (default "content/blog")
	DefaultRef string // branch, tag or commit used when none is given (default "main")

	RawBaseURL string // default "https://raw.githubusercontent.com"
	APIBaseURL string // default "https://api.github.com"
	UserAgent  string
	Token      string // optional bearer token for the listing API

	IncludeDrafts bool          // keep draft posts in listings (development)
	Timeout       time.Duration // HTTP client timeout (default 15s)
	Concurrency   int           // parallel fetches when listing (default 8)
}

func (c *Config) setDefaults() {
	if c.Dir == "" {
		c.Dir = "content/blog"
	}
	c.Dir = strings.Trim(c.Dir, "/")
	if c.DefaultRef == "" {
		c.DefaultRef = "main"
	}
	if c.RawBaseURL == "" {
		c.RawBaseURL = "https://raw.githubusercontent.com"
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = "https://api.github.com"
	}
	c.RawBaseURL = strings.TrimRight(c.RawBaseURL, "/")
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = "mdsite"
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
}

// Post is a single blog post with its raw markdown body.
type Post struct {
	Slug        string
	Meta        Meta
	Body        string
	ReadingTime string
}

// Summary is a post without its body, as used in listings.
type Summary struct {
	Slug        string
	Meta        Meta
	ReadingTime string
}

// Summary drops the body of p.
func (p *Post) Summary() Summary {
	return Summary{Slug: p.Slug, Meta: p.Meta, ReadingTime: p.ReadingTime}
}

// Source fetches posts from the content repository. Every call goes to the
// network; nothing is cached.
type Source struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default logging HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// NewSource creates a Source for cfg.
func NewSource(cfg Config, log zerolog.Logger, opts ...Option) *Source {
	cfg.setDefaults()
	log = log.With().Str("component", "content").Logger()
	s := &Source{
		cfg:    cfg,
		client: newHTTPClient(cfg.Timeout, log),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) ref(ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return s.cfg.DefaultRef
}

// PostURL returns the raw markdown URL for slug at ref.
func (s *Source) PostURL(slug, ref string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s.md",
		s.cfg.RawBaseURL, s.cfg.Owner, s.cfg.Repo, s.ref(ref), s.cfg.Dir, url.PathEscape(slug))
}

// ListURL returns the directory listing URL at ref.
func (s *Source) ListURL(ref string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		s.cfg.APIBaseURL, s.cfg.Owner, s.cfg.Repo, s.cfg.Dir, url.QueryEscape(s.ref(ref)))
}

func (s *Source) get(ctx context.Context, rawURL string, api bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Cache-Control", "no-cache")
	if api {
		req.Header.Set("Accept", "application/vnd.github+json")
		if s.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: GET %s: %w", rawURL, err)
	}
	return resp, nil
}

// FetchPost retrieves and parses the post named slug. A post that does not
// exist yields (nil, nil).
func (s *Source) FetchPost(ctx context.Context, slug, ref string) (*Post, error) {
	u := s.PostURL(slug, ref)
	resp, err := s.get(ctx, u, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("content: read %s: %w", u, err)
	}

	meta, body, err := ParseDocument(string(raw))
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Slug = slug
		}
		return nil, err
	}
	return &Post{
		Slug:        slug,
		Meta:        meta,
		Body:        body,
		ReadingTime: ReadingTime(body),
	}, nil
}

type listingEntry struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// ListSlugs returns the slugs of all markdown files in the content directory.
func (s *Source) ListSlugs(ctx context.Context, ref string) ([]string, error) {
	u := s.ListURL(ref)
	resp, err := s.get(ctx, u, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u, Code: resp.StatusCode}
	}
	var entries []listingEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("content: decode listing: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		if e.Type != "" && e.Type != "file" {
			continue
		}
		if strings.HasSuffix(e.Name, ".md") {
			slugs = append(slugs, strings.TrimSuffix(e.Name, ".md"))
		}
	}
	return slugs, nil
}

// ListPosts fetches the metadata of every post at ref. Drafts are dropped
// unless the source is configured to include them. The result keeps the
// listing order.
func (s *Source) ListPosts(ctx context.Context, ref string) ([]Summary, error) {
	slugs, err := s.ListSlugs(ctx, ref)
	if err != nil {
		return nil, err
	}

	posts := make([]*Post, len(slugs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, slug := range slugs {
		g.Go(func() error {
			p, err := s.FetchPost(gctx, slug, ref)
			if err != nil {
				return err
			}
			posts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		if p.Meta.Draft && !s.cfg.IncludeDrafts {
			continue
		}
		out = append(out, p.Summary())
	}
	s.log.Debug().Int("listed", len(slugs)).Int("kept", len(out)).Msg("posts listed")
	return out, nil
}

// SortByDate orders posts newest first. Posts sharing a date keep slug order.
func SortByDate(posts []Summary) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Meta.Date.Raw, posts[j].Meta.Date.Raw
		if a.Equal(b) {
			return posts[i].Slug < posts[j].Slug
		}
		return a.After(b)
	})
}
