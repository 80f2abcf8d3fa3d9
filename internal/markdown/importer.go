package markdown

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

var (
	ErrPostServiceRequired = errors.New("markdown importer: post service is required")
	ErrAuthorMissing       = errors.New("markdown importer: author is required")
	ErrTitleMissing        = errors.New("markdown importer: title is required")
)

// ImportOptions controls how documents become posts.
type ImportOptions struct {
	// Author is used when a document does not name one.
	Author string
	// DryRun reports what would change without writing.
	DryRun bool
	// Update overwrites posts whose slug already exists. Without it they are skipped.
	Update bool
}

// ImportResult summarises an import run by post slug.
type ImportResult struct {
	Created []string
	Updated []string
	Skipped []string
	Errors  []error
}

// Err joins the per-document errors.
func (r *ImportResult) Err() error {
	return errors.Join(r.Errors...)
}

// ImporterConfig wires the importer dependencies.
type ImporterConfig struct {
	Loader *Loader
	Posts  posts.Service
	Tags   tags.Service
	Logger interfaces.Logger
}

// Importer turns Markdown documents into posts and creates missing tags.
type Importer struct {
	loader *Loader
	posts  posts.Service
	tags   tags.Service
	logger interfaces.Logger
}

// NewImporter builds an Importer.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		loader: cfg.Loader,
		posts:  cfg.Posts,
		tags:   cfg.Tags,
		logger: logging.OrNoOp(cfg.Logger),
	}
}

// ImportDirectory loads every document under dir and imports it.
func (i *Importer) ImportDirectory(ctx context.Context, dir string, opts ImportOptions) (*ImportResult, error) {
	if i.loader == nil {
		return nil, errors.New("markdown importer: loader is required")
	}
	docs, err := i.loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	return i.ImportDocuments(ctx, docs, opts)
}

// ImportDocuments imports docs in order. Failures are collected per document
// and the run continues; the returned error joins them.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts ImportOptions) (*ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}

	result := &ImportResult{}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		if err := i.importDocument(ctx, doc, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.FilePath, err))
		}
	}

	i.logger.Info("markdown.import.completed",
		"created", len(result.Created),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"errors", len(result.Errors),
		"dry_run", opts.DryRun,
	)
	return result, result.Err()
}

func (i *Importer) importDocument(ctx context.Context, doc *interfaces.Document, opts ImportOptions, result *ImportResult) error {
	meta := doc.FrontMatter
	slug, err := documentSlug(doc)
	if err != nil {
		return err
	}
	logger := logging.WithMarkdownContext(i.logger, doc.FilePath, "")

	if meta.Draft {
		logger.Debug("markdown.import.draft_skipped", "slug", slug)
		result.Skipped = append(result.Skipped, slug)
		return nil
	}

	title := meta.Title
	if title == "" {
		return ErrTitleMissing
	}
	author := meta.Author
	if author == "" {
		author = strings.TrimSpace(opts.Author)
	}
	if author == "" {
		return ErrAuthorMissing
	}

	existing, err := i.posts.Get(ctx, slug)
	exists := err == nil
	if err != nil && !models.IsNotFound(err) {
		return err
	}
	if exists && !opts.Update {
		logger.Debug("markdown.import.exists", "slug", slug)
		result.Skipped = append(result.Skipped, slug)
		return nil
	}

	tagSlugs, err := i.ensureTags(ctx, meta.Tags, opts.DryRun)
	if err != nil {
		return err
	}

	if opts.DryRun {
		if exists {
			result.Updated = append(result.Updated, slug)
		} else {
			result.Created = append(result.Created, slug)
		}
		return nil
	}

	req := posts.CreatePostRequest{
		Slug:          slug,
		Date:          meta.Date,
		Title:         title,
		Lead:          meta.Lead,
		BodyMarkdown:  string(doc.Body),
		CSSFile:       meta.CSS,
		JSFile:        meta.JS,
		UserShortname: author,
		Tags:          tagSlugs,
		Convert:       true,
	}

	if exists {
		// a document without a date keeps the one already published
		if req.Date.IsZero() {
			req.Date = existing.Date
		}
		if _, err := i.posts.Update(ctx, posts.UpdatePostRequest(req)); err != nil {
			return err
		}
		logging.WithMarkdownContext(i.logger, doc.FilePath, "update").Info("markdown.import.post", "slug", slug)
		result.Updated = append(result.Updated, slug)
		return nil
	}

	if _, err := i.posts.Create(ctx, req); err != nil {
		return err
	}
	logging.WithMarkdownContext(i.logger, doc.FilePath, "create").Info("markdown.import.post", "slug", slug)
	result.Created = append(result.Created, slug)
	return nil
}

// ensureTags maps tag names to slugs, creating tags that do not exist yet.
func (i *Importer) ensureTags(ctx context.Context, names []string, dryRun bool) ([]string, error) {
	var out []string
	for _, name := range names {
		slug, err := models.NormalizeSlug(name)
		if err != nil || slug == "" {
			return nil, fmt.Errorf("markdown importer: tag %q: %w", name, models.ErrSlugInvalid)
		}
		out = append(out, slug)
		if i.tags == nil || dryRun {
			continue
		}
		if _, err := i.tags.Get(ctx, slug); err == nil {
			continue
		} else if !models.IsNotFound(err) {
			return nil, err
		}
		if _, err := i.tags.Create(ctx, tags.CreateTagRequest{Slug: slug, Name: name}); err != nil {
			return nil, err
		}
		i.logger.Info("markdown.import.tag_created", "slug", slug)
	}
	return out, nil
}

// documentSlug picks the front matter slug, then the title, then the file name.
// Only an explicit slug is used verbatim when already valid.
func documentSlug(doc *interfaces.Document) (string, error) {
	if explicit := doc.FrontMatter.Slug; explicit != "" && models.IsValidSlug(explicit) {
		return explicit, nil
	}
	candidates := []string{
		doc.FrontMatter.Slug,
		doc.FrontMatter.Title,
		strings.TrimSuffix(path.Base(doc.FilePath), path.Ext(doc.FilePath)),
	}
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if normalized, err := models.NormalizeSlug(candidate); err == nil && normalized != "" {
			return normalized, nil
		}
	}
	return "", models.ErrSlugRequired
}
