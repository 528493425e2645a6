// ABOUTME: Embedded front-end bundle (index.html, app.js, styles.css) served under /static/
// ABOUTME: Sets explicit content types and no-cache headers; index.html is served in place

// Package assets serves the browser front-end embedded via go:embed.
package assets

import (
	"embed"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed all:static
var staticFS embed.FS

// IndexPath is where the root route redirects.
const IndexPath = "/static/index.html"

// mimeFromExt returns the MIME type for a file extension in the bundle,
// falling back to the standard library table and then application/octet-stream.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// FS returns the bundle rooted at the static directory.
func FS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	return sub
}

// FileServer returns an http.Handler that serves the embedded bundle with
// no-cache headers. The handler expects paths relative to the bundle root
// (strip /static before calling). Missing files and directory paths get a 404.
func FileServer() http.Handler {
	root := FS()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		info, err := fs.Stat(root, name)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		f, err := root.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		content, ok := f.(io.ReadSeeker)
		if !ok {
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if ext := strings.ToLower(path.Ext(name)); ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}
		w.Header().Set("Cache-Control", "no-cache")

		// ServeContent has no index.html redirect, unlike ServeFileFS.
		http.ServeContent(w, r, name, info.ModTime(), content)
	})
}
