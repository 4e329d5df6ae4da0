// Package web provides the embedded NetBash console assets and the landing
// page template.
package web

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var files embed.FS

// Assets returns the console asset bundle (jquery.js, includes.js,
// includes.css) rooted at static/.
func Assets() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic("web: static directory missing from bundle")
	}
	return sub
}

// Templates returns the page templates rooted at templates/.
func Templates() fs.FS {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic("web: templates directory missing from bundle")
	}
	return sub
}
