package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/mdsite/content"
)

// Home renders the landing page with the author's social links.
func Home(site SiteConfig) templ.Component {
	body := page(func(p *pageWriter) {
		p.raw("<section class=\"intro\">\n<h1>")
		if site.Author != "" {
			p.raw("Hello, I'm ")
			p.text(site.Author)
			p.raw("!")
		} else {
			p.text(site.Name)
		}
		p.raw("</h1>\n")
		if site.Tagline != "" {
			p.raw("<p class=\"tagline\">")
			p.text(site.Tagline)
			p.raw("</p>\n")
		}
		if len(site.Social) > 0 {
			p.raw("<ul class=\"social\">\n")
			for _, l := range site.Social {
				p.raw(`<li><a href="`)
				p.href(l.URL)
				p.raw(`" target="_blank" rel="noreferrer noopener">`)
				p.text(l.Name)
				p.raw("</a></li>\n")
			}
			p.raw("</ul>\n")
		}
		p.raw("</section>\n")
	})
	return Layout(site, PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         BuildURL(site.URL),
		Image:       OGImageURL(site.URL, site.Name),
		JSONLD:      WebsiteJsonLD(site),
	}, body)
}

// BlogIndex renders the post listing in the order given.
func BlogIndex(site SiteConfig, posts []content.Summary) templ.Component {
	body := page(func(p *pageWriter) {
		p.raw("<h1 class=\"page-title\">My blog posts</h1>\n")
		if len(posts) == 0 {
			p.raw("<p class=\"empty\">No posts yet.</p>\n")
			return
		}
		p.raw("<div class=\"post-list\">\n")
		for _, post := range posts {
			p.raw(`<article class="post-summary"><a href="`)
			p.href("/blog/" + post.Slug + "/")
			p.raw(`"><h2>`)
			p.text(post.Meta.Title)
			p.raw("</h2>")
			if post.Meta.Draft {
				p.raw(`<span class="draft">Draft</span>`)
			}
			p.raw(`<p class="meta"><time datetime="`)
			p.text(post.Meta.Date.ISO)
			p.raw(`">`)
			p.text(post.Meta.Date.Formatted)
			p.raw("</time> - ")
			p.text(post.ReadingTime)
			p.raw("</p><p>")
			p.text(post.Meta.Description)
			p.raw(`</p><div class="read-more">Read more</div></a></article>` + "\n")
		}
		p.raw("</div>\n")
	})
	return Layout(site, PageMeta{
		Title:       "Blog",
		Description: site.Description,
		URL:         BuildURL(site.URL, "blog"),
		Image:       OGImageURL(site.URL, "Blog"),
	}, body)
}

// Post renders a single post with its table of contents.
func Post(site SiteConfig, v PostView) templ.Component {
	meta := v.Post.Meta
	body := page(func(p *pageWriter) {
		p.raw(`<div class="post-meta"><time datetime="`)
		p.text(meta.Date.ISO)
		p.raw(`">`)
		p.text(meta.Date.Formatted)
		p.raw("</time> - <span>")
		p.text(v.Post.ReadingTime)
		p.raw("</span></div>\n<h1 class=\"post-title\">")
		p.text(meta.Title)
		p.raw("</h1>\n")
		if len(meta.Categories) > 0 {
			p.raw("<ul class=\"categories\">")
			for _, c := range meta.Categories {
				p.raw("<li>")
				p.text(c)
				p.raw("</li>")
			}
			p.raw("</ul>\n")
		}
		if len(v.Doc.TOC) > 0 {
			p.raw("<nav class=\"toc\">\n<h2>Table of contents</h2>\n<ul>\n")
			for _, h := range v.Doc.TOC {
				p.raw(`<li class="toc-level-` + strconv.Itoa(h.Level) + `"><a href="`)
				p.text(h.Href())
				p.raw(`">`)
				p.text(h.Text)
				p.raw("</a></li>\n")
			}
			p.raw("</ul>\n</nav>\n")
		}
		p.raw("<article class=\"prose\">\n")
		p.component(v.Doc.Component())
		p.raw("</article>\n")
	})
	return Layout(site, PageMeta{
		Title:       meta.Title,
		Description: meta.Description,
		URL:         PostURL(site.URL, v.Post.Slug),
		OGType:      "article",
		Image:       v.OGImage,
		NoIndex:     meta.Draft,
		JSONLD:      BlogPostingJsonLD(site, v.Post),
	}, body)
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	body := page(func(p *pageWriter) {
		p.raw("<div class=\"not-found\">\n<h1>Whoops, page not found...</h1>\n")
		p.raw("<a href=\"/\">Return to home</a>\n</div>\n")
	})
	return Layout(site, PageMeta{Title: "Not found", NoIndex: true}, body)
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	body := page(func(p *pageWriter) {
		p.raw("<div class=\"server-error\">\n<h1>Something went wrong</h1>\n")
		p.raw("<p>The page could not be rendered. Please try again later.</p>\n")
		p.raw("<a href=\"/\">Return to home</a>\n</div>\n")
	})
	return Layout(site, PageMeta{Title: "Error", NoIndex: true}, body)
}
