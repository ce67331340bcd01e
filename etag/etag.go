// Package etag adds entity tags to HTML and JSON responses and answers
// matching conditional requests with 304 Not Modified.
package etag

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/zeebo/blake3"
)

// DefaultCacheControl is set on eligible responses that carry no
// Cache-Control header of their own.
const DefaultCacheControl = "private, no-cache, max-age=0, must-revalidate"

// Options controls tag generation.
type Options struct {
	// CacheControl is applied when the response has none. Empty disables it.
	CacheControl string
	// Weak marks tags with "W/" and compares them ignoring the marker.
	Weak bool
}

// DefaultOptions returns weak tags with DefaultCacheControl.
func DefaultOptions() Options {
	return Options{CacheControl: DefaultCacheControl, Weak: true}
}

// Tag returns the quoted entity tag for body.
func Tag(body []byte, weak bool) string {
	sum := blake3.Sum256(body)
	tag := `"` + hex.EncodeToString(sum[:]) + `"`
	if weak {
		return "W/" + tag
	}
	return tag
}

func isWeak(tag string) bool {
	return strings.HasPrefix(tag, "W/")
}

// Match reports whether the If-None-Match value selects tag. Weak comparison
// ignores the "W/" marker on both sides; strong comparison requires two
// strong tags that are byte-equal.
func Match(weak bool, ifNoneMatch, tag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	if weak {
		return strings.TrimPrefix(ifNoneMatch, "W/") == strings.TrimPrefix(tag, "W/")
	}
	return !isWeak(ifNoneMatch) && !isWeak(tag) && ifNoneMatch == tag
}

// Eligible reports whether a response gets a tag: GET or HEAD, status 200 and
// an HTML or JSON body.
func Eligible(method string, status int, contentType string) bool {
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}
	if status != http.StatusOK {
		return false
	}
	return strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "application/json")
}

// Apply sets Cache-Control (when absent) and ETag on h for an eligible
// response and reports whether the request's If-None-Match matches. An
// ineligible response is left untouched and never matches.
func Apply(r *http.Request, status int, h http.Header, body []byte, opts Options) bool {
	if !Eligible(r.Method, status, h.Get("Content-Type")) {
		return false
	}
	if len(h.Values("Cache-Control")) == 0 && opts.CacheControl != "" {
		h.Set("Cache-Control", opts.CacheControl)
	}
	tag := Tag(body, opts.Weak)
	h.Set("ETag", tag)
	return Match(opts.Weak, r.Header.Get("If-None-Match"), tag)
}
