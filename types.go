package mdsite

import (
	"github.com/a-h/templ"

	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/views"
)

// ViewFuncs holds the page components the handlers render. Any nil field
// falls back to the matching component of the views package, so callers
// override only the pages they want to own.
type ViewFuncs struct {
	Home        func(site views.SiteConfig) templ.Component
	BlogIndex   func(site views.SiteConfig, posts []content.Summary) templ.Component
	Post        func(site views.SiteConfig, post views.PostView) templ.Component
	NotFound    func(site views.SiteConfig) templ.Component
	ServerError func(site views.SiteConfig) templ.Component
}

// DefaultViews returns the built-in page components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		BlogIndex:   views.BlogIndex,
		Post:        views.Post,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v *ViewFuncs) fillDefaults() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.BlogIndex == nil {
		v.BlogIndex = d.BlogIndex
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}
