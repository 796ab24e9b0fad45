// Package web embeds the page templates and static assets served by the
// almacen UI.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var assets embed.FS

// StaticFS holds the stylesheet and other files served under /static/.
func StaticFS() fs.FS { return sub("static") }

// TemplatesFS holds the page templates.
func TemplatesFS() fs.FS { return sub("templates") }

// sub panics if dir was not embedded.
func sub(dir string) fs.FS {
	f, err := fs.Sub(assets, dir)
	if err != nil {
		panic("web: embedded " + dir + ": " + err.Error())
	}
	return f
}
