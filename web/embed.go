// Package web embeds the dashboard page, its region and form templates, and
// the browser script that applies live updates.
package web

import "embed"

// TemplatesFS holds index.html, regions.html and forms.html.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS holds dashboard.js and style.css, served under /static/.
//
//go:embed static/*
var StaticFS embed.FS
