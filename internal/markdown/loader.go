package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// LoaderConfig configures Markdown discovery.
type LoaderConfig struct {
	// Pattern filters file names, "*.md" when empty.
	Pattern string
	// Recursive walks sub-directories.
	Recursive bool
}

// Loader reads Markdown documents from a filesystem.
type Loader struct {
	fs        fs.FS
	pattern   string
	recursive bool
}

// NewLoader constructs a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Loader{fs: filesystem, pattern: pattern, recursive: cfg.Recursive}
}

// LoadFile reads and parses the document at name.
func (l *Loader) LoadFile(ctx context.Context, name string) (*interfaces.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}
	info, err := fs.Stat(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", name, err)
	}

	doc, err := BuildDocument(name, data, info.ModTime())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sum := sha256.Sum256(data)
	doc.Checksum = sum[:]
	return doc, nil
}

// LoadDirectory parses every matching file under dir, sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.Document, error) {
	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}

	var docs []*interfaces.Document
	err := fs.WalkDir(l.fs, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if ok, _ := path.Match(l.pattern, path.Base(p)); !ok {
			return nil
		}
		doc, err := l.LoadFile(ctx, p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(docs, func(a, b *interfaces.Document) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return docs, nil
}
