// Package staticfiles lists the assets admins can attach to records and
// serves the static directory.
package staticfiles

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
)

// Asset directories under the static root.
const (
	DirCSS    = "css"
	DirJS     = "js"
	DirImages = "img"
)

// Choice is a select option.
type Choice struct {
	Value string
	Label string
}

// Catalog reads asset names from a static root.
type Catalog struct {
	fsys fs.FS
}

// NewCatalogFS returns a catalog over fsys.
func NewCatalogFS(fsys fs.FS) *Catalog {
	return &Catalog{fsys: fsys}
}

// Files returns the regular file names in dir, sorted. A missing dir yields
// no names.
func (c *Catalog) Files(dir string) ([]string, error) {
	entries, err := fs.ReadDir(c.fsys, path.Clean(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}

// Choices returns one option per file in dir followed by an empty option.
func (c *Catalog) Choices(dir string) ([]Choice, error) {
	names, err := c.Files(dir)
	if err != nil {
		return nil, err
	}
	choices := make([]Choice, 0, len(names)+1)
	for _, name := range names {
		choices = append(choices, Choice{Value: name, Label: name})
	}
	return append(choices, Choice{}), nil
}

// Handler serves the static root under prefix. Directory listings are
// refused.
func (c *Catalog) Handler(prefix string) http.Handler {
	files := http.FileServerFS(c.fsys)
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
