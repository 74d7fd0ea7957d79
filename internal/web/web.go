// Package web provides the embedded browser interface served at the
// server root: a text area that streams input to the session and a live
// view of the next-token distribution.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static
var assets embed.FS

// FS returns the static asset tree rooted at its contents, ready for
// http.FileServer. index.html is served for the bare path.
func FS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}
