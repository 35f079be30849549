// Package web embeds the templates and static assets served by the
// application.
package web

import "embed"

// TemplatesFS holds the HTML templates for pages and HTMX partials.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds css and js assets.
//
//go:embed static/*
var StaticFS embed.FS
