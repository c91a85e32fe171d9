// Package web serves the editor's host pages.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

//go:embed static
var embedded embed.FS

// Pages maps page routes to their files.
var Pages = map[string]string{
	"/":         "index.html",
	"/auth":     "auth.html",
	"/projects": "projects.html",
}

// Handler serves the host pages and their assets. When dir is set, files are
// read from it instead of the embedded copy, which helps while editing them.
// Unknown paths fall back to the editor page.
func Handler(dir string) (http.Handler, error) {
	files, err := fs.Sub(embedded, "static")
	if err != nil {
		return nil, err
	}
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve static path: %w", err)
		}
		files = os.DirFS(abs)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, ok := Pages[r.URL.Path]
		if !ok {
			name = path.Clean(r.URL.Path)[1:]
		}
		if info, err := fs.Stat(files, name); err != nil || info.IsDir() {
			name = Pages["/"]
		}
		http.ServeFileFS(w, r, files, name)
	}), nil
}
