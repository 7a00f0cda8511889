// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the site's templates and static assets.
package web

import (
	"embed"
	"io/fs"
)

// Templates holds layouts/, partials/ and pages/.
//
//go:embed all:templates
var Templates embed.FS

// Static holds the built assets served under /static/.
//
//go:embed all:static/dist
var Static embed.FS

// TemplateFS returns Templates rooted at templates/.
func TemplateFS() (fs.FS, error) {
	return fs.Sub(Templates, "templates")
}

// StaticFS returns Static rooted at static/dist/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(Static, "static/dist")
}
