package views

import (
	"github.com/eringen/mdsite/content"
	"github.com/eringen/mdsite/markdown"
)

// SiteConfig holds the site-wide settings every page needs.
type SiteConfig struct {
	Name        string
	URL         string // canonical base URL
	Description string
	Author      string
	Tagline     string
	Twitter     string // handle for twitter:creator, with or without "@"
	Social      []SocialLink
}

// SocialLink is one entry of the home page link row.
type SocialLink struct {
	Name string
	URL  string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
	NoIndex     bool
	JSONLD      string
}

// PostView is everything the post page renders.
type PostView struct {
	Post    content.Summary
	Doc     markdown.Document
	OGImage string
}
