package markdown_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

type importFixture struct {
	importer *markdown.Importer
	posts    posts.Service
	tags     tags.Service
}

func newImportFixture(t *testing.T, files fstest.MapFS) *importFixture {
	t.Helper()
	userRepo := users.NewMemoryRepository()
	if _, err := userRepo.Create(context.Background(), &models.User{Shortname: "ann", Name: "Ann", PasswordHash: "x"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tagRepo := tags.NewMemoryRepository()
	tagSvc := tags.NewService(tagRepo)
	postSvc := posts.NewService(posts.NewMemoryRepository(), userRepo, tagRepo,
		posts.WithClock(testsupport.FixedClock),
		posts.WithMarkdown(markdown.NewGoldmarkParser(interfaces.ParseOptions{})),
	)
	importer := markdown.NewImporter(markdown.ImporterConfig{
		Loader: markdown.NewLoader(files, markdown.LoaderConfig{}),
		Posts:  postSvc,
		Tags:   tagSvc,
	})
	return &importFixture{importer: importer, posts: postSvc, tags: tagSvc}
}

func TestImportDirectoryCreatesPostsAndTags(t *testing.T) {
	f := newImportFixture(t, fstest.MapFS{
		"content/first.md":  {Data: []byte("---\ntitle: First Post\ntags: [Go, Web Dev]\n---\nHello *world*")},
		"content/second.md": {Data: []byte("---\ntitle: Second\nslug: second-post\nauthor: ann\ndraft: false\n---\nBody")},
		"content/draft.md":  {Data: []byte("---\ntitle: Draft\ndraft: true\n---\nwip")},
	})
	ctx := context.Background()

	result, err := f.importer.ImportDirectory(ctx, "content", markdown.ImportOptions{Author: "ann"})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	slices.Sort(result.Created)
	if !slices.Equal(result.Created, []string{"first-post", "second-post"}) {
		t.Fatalf("unexpected created %v", result.Created)
	}
	if !slices.Equal(result.Skipped, []string{"draft"}) {
		t.Fatalf("unexpected skipped %v", result.Skipped)
	}

	post, err := f.posts.Get(ctx, "first-post")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(post.BodyHTML, "<em>world</em>") {
		t.Fatalf("expected rendered body, got %q", post.BodyHTML)
	}
	if post.UserShortname != "ann" {
		t.Fatalf("expected default author, got %q", post.UserShortname)
	}
	if got := post.TagSlugs(); !slices.Equal(got, []string{"go", "web-dev"}) {
		t.Fatalf("unexpected tags %v", got)
	}
	tag, err := f.tags.Get(ctx, "web-dev")
	if err != nil || tag.Name != "Web Dev" {
		t.Fatalf("expected created tag, got %+v %v", tag, err)
	}
}

func TestImportSkipsExistingUnlessUpdate(t *testing.T) {
	files := fstest.MapFS{"p.md": {Data: []byte("---\ntitle: Post\nslug: post\n---\nv1")}}
	f := newImportFixture(t, files)
	ctx := context.Background()

	if _, err := f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann"}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	files["p.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Post v2\nslug: post\n---\nv2")}
	result, err := f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann"})
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if !slices.Equal(result.Skipped, []string{"post"}) {
		t.Fatalf("expected skip, got %+v", result)
	}

	result, err = f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann", Update: true})
	if err != nil {
		t.Fatalf("update import: %v", err)
	}
	if !slices.Equal(result.Updated, []string{"post"}) {
		t.Fatalf("expected update, got %+v", result)
	}
	post, _ := f.posts.Get(ctx, "post")
	if post.Title != "Post v2" {
		t.Fatalf("expected updated title, got %q", post.Title)
	}
}

func TestImportUpdateKeepsDateWhenDocumentHasNone(t *testing.T) {
	files := fstest.MapFS{"p.md": {Data: []byte("---\ntitle: Post\nslug: post\ndate: 2023-05-01\n---\nv1")}}
	f := newImportFixture(t, files)
	ctx := context.Background()

	if _, err := f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann"}); err != nil {
		t.Fatalf("first import: %v", err)
	}

	files["p.md"] = &fstest.MapFile{Data: []byte("---\ntitle: Post\nslug: post\n---\nv2")}
	if _, err := f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann", Update: true}); err != nil {
		t.Fatalf("update import: %v", err)
	}

	post, err := f.posts.Get(ctx, "post")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC); !post.Date.Equal(want) {
		t.Fatalf("expected original date %s, got %s", want, post.Date)
	}
	if strings.TrimSpace(post.BodyMarkdown) != "v2" {
		t.Fatalf("expected updated body, got %q", post.BodyMarkdown)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	f := newImportFixture(t, fstest.MapFS{"p.md": {Data: []byte("---\ntitle: Post\ntags: [fresh]\n---\nbody")}})
	ctx := context.Background()

	result, err := f.importer.ImportDirectory(ctx, ".", markdown.ImportOptions{Author: "ann", DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !slices.Equal(result.Created, []string{"post"}) {
		t.Fatalf("expected planned create, got %+v", result)
	}
	if _, err := f.posts.Get(ctx, "post"); !models.IsNotFound(err) {
		t.Fatalf("expected no post written, got %v", err)
	}
	if _, err := f.tags.Get(ctx, "fresh"); !models.IsNotFound(err) {
		t.Fatalf("expected no tag written, got %v", err)
	}
}

func TestImportCollectsPerDocumentErrors(t *testing.T) {
	f := newImportFixture(t, fstest.MapFS{
		"a.md": {Data: []byte("---\ntitle: No author\n---\nx")},
		"b.md": {Data: []byte("---\ntitle: Ghost\nauthor: ghost\n---\nx")},
		"c.md": {Data: []byte("---\ntitle: Fine\nauthor: ann\n---\nx")},
	})

	result, err := f.importer.ImportDirectory(context.Background(), ".", markdown.ImportOptions{})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !errors.Is(err, markdown.ErrAuthorMissing) || !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("expected both failures reported, got %v", err)
	}
	if !slices.Equal(result.Created, []string{"fine"}) {
		t.Fatalf("expected valid document imported, got %+v", result)
	}
}
