package content

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloPost = `---
title: Hello world
date: 2023-03-14
description: First post
categories:
  - go
  - web
---
# Hello

Some text here.
`

const draftPost = `---
title: Work in progress
date: 2024-01-02
description: Not yet
draft: true
---
Soon.
`

const brokenPost = `---
title: Missing fields
---
Body.
`

type fakeHost struct {
	mu    sync.Mutex
	files map[string]string // "<ref>/<slug>" -> raw markdown
	seen  []*http.Request
}

func (h *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.seen = append(h.seen, r)
	h.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/repos/owner/site/contents/content/blog") {
		ref := r.URL.Query().Get("ref")
		var entries []listingEntry
		for key := range h.files {
			if strings.HasPrefix(key, ref+"/") {
				entries = append(entries, listingEntry{Name: strings.TrimPrefix(key, ref+"/") + ".md", Type: "file"})
			}
		}
		entries = append(entries, listingEntry{Name: "images", Type: "dir"}, listingEntry{Name: "README.txt", Type: "file"})
		_ = json.NewEncoder(w).Encode(entries)
		return
	}

	// /owner/site/<ref>/content/blog/<slug>.md
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/owner/site/"), "/", 2)
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	slug := strings.TrimSuffix(strings.TrimPrefix(parts[1], "content/blog/"), ".md")
	body, ok := h.files[parts[0]+"/"+slug]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newTestSource(t *testing.T, host http.Handler, drafts bool) *Source {
	t.Helper()
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)
	return NewSource(Config{
		Owner:         "owner",
		Repo:          "site",
		RawBaseURL:    srv.URL,
		APIBaseURL:    srv.URL,
		UserAgent:     "mdsite-test",
		IncludeDrafts: drafts,
	}, zerolog.Nop())
}

func TestPostURL(t *testing.T) {
	s := NewSource(Config{Owner: "owner", Repo: "site"}, zerolog.Nop())
	assert.Equal(t, "https://raw.githubusercontent.com/owner/site/main/content/blog/hello-world.md", s.PostURL("hello-world", ""))
	assert.Equal(t, "https://raw.githubusercontent.com/owner/site/abc123/content/blog/a%20b.md", s.PostURL("a b", "abc123"))
	assert.Equal(t, "https://api.github.com/repos/owner/site/contents/content/blog?ref=main", s.ListURL(""))
}

func TestFetchPost(t *testing.T) {
	host := &fakeHost{files: map[string]string{"main/hello": helloPost}}
	s := newTestSource(t, host, false)

	post, err := s.FetchPost(context.Background(), "hello", "")
	require.NoError(t, err)
	require.NotNil(t, post)

	assert.Equal(t, "hello", post.Slug)
	assert.Equal(t, "Hello world", post.Meta.Title)
	assert.Equal(t, "First post", post.Meta.Description)
	assert.Equal(t, "March 14, 2023", post.Meta.Date.Formatted)
	assert.Equal(t, "2023-03-14T00:00:00.000Z", post.Meta.Date.ISO)
	assert.Equal(t, []string{"go", "web"}, post.Meta.Categories)
	assert.False(t, post.Meta.Draft)
	assert.True(t, strings.HasPrefix(post.Body, "# Hello"))
	assert.Equal(t, "1 min read", post.ReadingTime)

	require.Len(t, host.seen, 1)
	assert.Equal(t, "mdsite-test", host.seen[0].Header.Get("User-Agent"))
	assert.Equal(t, "no-cache", host.seen[0].Header.Get("Cache-Control"))
}

func TestFetchPostPinnedRef(t *testing.T) {
	host := &fakeHost{files: map[string]string{"preview/hello": helloPost}}
	s := newTestSource(t, host, false)

	post, err := s.FetchPost(context.Background(), "hello", "preview")
	require.NoError(t, err)
	require.NotNil(t, post)

	missing, err := s.FetchPost(context.Background(), "hello", "main")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFetchPostNotFound(t *testing.T) {
	s := newTestSource(t, &fakeHost{files: map[string]string{}}, false)

	post, err := s.FetchPost(context.Background(), "nope", "")
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestFetchPostInvalidFrontMatter(t *testing.T) {
	host := &fakeHost{files: map[string]string{"main/broken": brokenPost}}
	s := newTestSource(t, host, false)

	_, err := s.FetchPost(context.Background(), "broken", "")
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "broken", verr.Slug)
	assert.Contains(t, err.Error(), "date: required")
	assert.Contains(t, err.Error(), "description: required")
}

func TestFetchPostServerError(t *testing.T) {
	host := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	s := newTestSource(t, host, false)

	_, err := s.FetchPost(context.Background(), "hello", "")
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusBadGateway, serr.Code)
}

func TestListPostsSkipsDrafts(t *testing.T) {
	host := &fakeHost{files: map[string]string{
		"main/hello": helloPost,
		"main/wip":   draftPost,
	}}
	s := newTestSource(t, host, false)

	posts, err := s.ListPosts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Slug)
}

func TestListPostsIncludesDraftsInDevelopment(t *testing.T) {
	host := &fakeHost{files: map[string]string{
		"main/hello": helloPost,
		"main/wip":   draftPost,
	}}
	s := newTestSource(t, host, true)

	posts, err := s.ListPosts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, posts, 2)

	SortByDate(posts)
	assert.Equal(t, "wip", posts[0].Slug)
	assert.Equal(t, "hello", posts[1].Slug)
}

func TestListPostsPropagatesValidationError(t *testing.T) {
	host := &fakeHost{files: map[string]string{
		"main/hello":  helloPost,
		"main/broken": brokenPost,
	}}
	s := newTestSource(t, host, false)

	_, err := s.ListPosts(context.Background(), "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
