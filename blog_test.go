package blog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	blog "github.com/goliatone/go-blog"
	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	setupcmd "github.com/goliatone/go-blog/internal/commands/setup"
	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

func newModule(t *testing.T) *blog.Module {
	t.Helper()
	cfg := blog.DefaultConfig()
	cfg.BlogName = "Module Blog"
	cfg.Auth.HashCost = 4
	cfg.Features.Logger = false

	module, err := blog.New(cfg,
		di.WithBunDB(testsupport.NewBunDB(t)),
		di.WithStaticFS(fstest.MapFS{"css/blog.css": {Data: []byte("body{}")}}),
		di.WithClock(testsupport.FixedClock),
	)
	if err != nil {
		t.Fatalf("blog.New: %v", err)
	}
	return module
}

type importedPost struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	UserShortname string   `json:"user_shortname"`
	Tags          []string `json:"tags"`
}

func TestModuleInitImportAndServe(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	if err := module.InitDatabaseHandler().Execute(ctx, module.InitDatabaseCommand()); err != nil {
		t.Fatalf("init database: %v", err)
	}
	if err := module.CreateUserHandler().Execute(ctx, setupcmd.CreateUserCommand{Shortname: "ann", Name: "Ann", Password: "secret"}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	var report *markdown.ImportResult
	cmds, err := module.MarkdownCommands(func(result *markdown.ImportResult) { report = result })
	if err != nil {
		t.Fatalf("markdown commands: %v", err)
	}
	if err := cmds.Import.Execute(ctx, markdowncmd.ImportMarkdownCommand{
		Directory: filepath.Join("testdata", "content"),
		Author:    "ann",
	}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if report == nil || len(report.Skipped) != 1 {
		t.Fatalf("expected the draft to be skipped, got %+v", report)
	}

	var want []importedPost
	if err := testsupport.LoadGolden(filepath.Join("testdata", "import_golden.json"), &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	list, err := module.Posts().List(ctx)
	if err != nil {
		t.Fatalf("list posts: %v", err)
	}
	var got []importedPost
	for _, post := range list {
		tags := post.TagSlugs()
		slices.Sort(tags)
		got = append(got, importedPost{Slug: post.Slug, Title: post.Title, UserShortname: post.UserShortname, Tags: tags})
	}
	slices.SortFunc(got, func(a, b importedPost) int { return strings.Compare(a.Slug, b.Slug) })
	if len(got) != len(want) {
		t.Fatalf("expected %d posts, got %+v", len(want), got)
	}
	for i := range want {
		if got[i].Slug != want[i].Slug || got[i].Title != want[i].Title ||
			got[i].UserShortname != want[i].UserShortname || !slices.Equal(got[i].Tags, want[i].Tags) {
			t.Fatalf("post %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}

	rec := httptest.NewRecorder()
	module.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/post/go-tips", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for imported post, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<code>gofmt</code>") {
		t.Fatalf("expected rendered markdown in page: %s", rec.Body.String())
	}

	entries, err := module.Activity().List(ctx, 10)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected activity entries for imported records")
	}
}

func TestModuleInitDatabaseSeedsDefaultUser(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	if err := module.InitDatabaseHandler().Execute(ctx, module.InitDatabaseCommand()); err != nil {
		t.Fatalf("init database: %v", err)
	}
	admin, err := module.Users().Get(ctx, blog.DefaultConfig().Auth.DefaultUser)
	if err != nil {
		t.Fatalf("default user missing: %v", err)
	}
	if !module.Users().CheckPassword(admin, blog.DefaultConfig().Auth.DefaultPassword) {
		t.Fatal("default password should verify")
	}
}
