// Package templates renders the blog pages with pongo2 (Django syntax).
// Templates ship embedded in the binary; a directory can override any of
// them by name.
package templates

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

//go:embed all:views
var embedded embed.FS

var ErrTemplateNotFound = errors.New("templates: template not found")

// Config selects the template sources.
type Config struct {
	// Dir overrides embedded templates with files of the same name.
	Dir string
	// Debug disables the template cache.
	Debug bool
}

// Engine renders named templates with shared global context.
type Engine struct {
	set     *pongo2.TemplateSet
	sources []fs.FS
	mu      sync.RWMutex
	globals pongo2.Context
}

var _ interfaces.TemplateRenderer = (*Engine)(nil)

// New builds an engine over the embedded templates and the optional
// override directory.
func New(cfg Config) (*Engine, error) {
	views, err := fs.Sub(embedded, "views")
	if err != nil {
		return nil, err
	}

	var sources []fs.FS
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("templates: override dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("templates: override %q is not a directory", dir)
		}
		sources = append(sources, os.DirFS(dir))
	}
	sources = append(sources, views)

	loaders := make([]pongo2.TemplateLoader, 0, len(sources))
	for _, src := range sources {
		loaders = append(loaders, NewFSLoader(src))
	}
	set := pongo2.NewSet("blog", loaders...)
	set.Debug = cfg.Debug
	return &Engine{set: set, sources: sources, globals: pongo2.Context{}}, nil
}

// GlobalContext merges data into the context every render receives.
func (e *Engine) GlobalContext(data map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	maps.Copy(e.globals, data)
	return nil
}

// Render executes the template called name. When out is given the output
// is also written there.
func (e *Engine) Render(name string, data map[string]any, out ...io.Writer) (string, error) {
	tpl, err := e.set.FromCache(name)
	if err != nil {
		if !e.exists(name) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", fmt.Errorf("templates: load %s: %w", name, err)
	}
	return e.execute(tpl, data, out)
}

// RenderString executes an inline template.
func (e *Engine) RenderString(content string, data map[string]any, out ...io.Writer) (string, error) {
	tpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("templates: parse inline: %w", err)
	}
	return e.execute(tpl, data, out)
}

func (e *Engine) execute(tpl *pongo2.Template, data map[string]any, out []io.Writer) (string, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(e.context(data), &buf); err != nil {
		return "", err
	}
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Engine) context(data map[string]any) pongo2.Context {
	e.mu.RLock()
	ctx := make(pongo2.Context, len(e.globals)+len(data))
	maps.Copy(ctx, e.globals)
	e.mu.RUnlock()
	maps.Copy(ctx, data)
	return ctx
}

func (e *Engine) exists(name string) bool {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	for _, src := range e.sources {
		if _, err := fs.Stat(src, name); err == nil {
			return true
		}
	}
	return false
}

// FSLoader loads pongo2 templates from an fs.FS.
type FSLoader struct {
	fsys fs.FS
}

var _ pongo2.TemplateLoader = (*FSLoader)(nil)

func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{fsys: fsys}
}

// Abs resolves name relative to the including template when it starts with
// "./" or "../"; other names are rooted at the loader.
func (l *FSLoader) Abs(base, name string) string {
	if strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../") {
		return path.Clean(path.Join(path.Dir(base), name))
	}
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l *FSLoader) Get(name string) (io.Reader, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
