// assets/embed.go
//
// Package assets embeds the browser client: index.html, app.js, style.css
// and the card faces under img/.
package assets

import (
	"embed"
	"io/fs"
	"path"
)

//go:embed web
var FS embed.FS

// Client returns the client files rooted at web/.
func Client() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		panic(err)
	}
	return sub
}

// MissingImages returns the names in images with no file under web/img.
func MissingImages(images []string) []string {
	var out []string
	for _, name := range images {
		if _, err := fs.Stat(FS, path.Join("web", "img", name)); err != nil {
			out = append(out, name)
		}
	}
	return out
}
