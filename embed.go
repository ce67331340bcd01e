package mdsite

import "embed"

// EmbeddedAssets holds the static files served under /public/ and the
// favicon: site.css and favicon.svg.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
