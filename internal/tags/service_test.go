package tags_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

type detacher struct{ detached []string }

func (d *detacher) DetachTag(_ context.Context, slug string) error {
	d.detached = append(d.detached, slug)
	return nil
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	recorder := &testsupport.ActivityRecorder{}
	posts := &detacher{}
	svc := tags.NewService(tags.NewMemoryRepository(), tags.WithActivity(recorder), tags.WithPostDetacher(posts))

	if _, err := svc.Create(ctx, tags.CreateTagRequest{Slug: "golang", Name: "Go"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, tags.CreateTagRequest{Slug: "golang", Name: "Again"}); !errors.Is(err, models.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}

	updated, err := svc.Update(ctx, tags.UpdateTagRequest{Slug: "golang", Name: "Golang"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Golang" {
		t.Fatalf("expected renamed tag, got %q", updated.Name)
	}

	if err := svc.Delete(ctx, "golang"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !slices.Equal(posts.detached, []string{"golang"}) {
		t.Fatalf("expected associations cleared, got %v", posts.detached)
	}
	if _, err := svc.Get(ctx, "golang"); !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	want := []string{"create:tag:golang", "update:tag:golang", "delete:tag:golang"}
	if got := recorder.Verbs(); !slices.Equal(got, want) {
		t.Fatalf("activity mismatch\nwant %v\ngot  %v", want, got)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc := tags.NewService(tags.NewMemoryRepository())
	ctx := context.Background()

	cases := []struct {
		name string
		req  tags.CreateTagRequest
		want error
	}{
		{"missing slug", tags.CreateTagRequest{Name: "Go"}, models.ErrSlugRequired},
		{"invalid slug", tags.CreateTagRequest{Slug: "Not Valid!", Name: "Go"}, models.ErrSlugInvalid},
		{"missing name", tags.CreateTagRequest{Slug: "go"}, models.ErrNameRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestServiceDeleteUnknown(t *testing.T) {
	svc := tags.NewService(tags.NewMemoryRepository())
	if err := svc.Delete(context.Background(), "missing"); !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBunRepositoryListAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	svc := tags.NewService(tags.NewBunRepository(db))

	for _, tag := range []tags.CreateTagRequest{{Slug: "zz", Name: "Zebra"}, {Slug: "aa", Name: "Apple"}} {
		if _, err := svc.Create(ctx, tag); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "aa" || list[1].Slug != "zz" {
		t.Fatalf("unexpected order %+v", list)
	}

	if err := svc.Delete(ctx, "aa"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "aa"); !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCachedBunRepositoryServesFreshReads(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	cacheService, err := repocache.NewCacheService(repocache.DefaultConfig())
	if err != nil {
		t.Fatalf("cache service: %v", err)
	}
	svc := tags.NewService(tags.NewBunRepositoryWithCache(db, cacheService, repocache.NewDefaultKeySerializer()))

	if _, err := svc.Get(ctx, "go"); !models.IsNotFound(err) {
		t.Fatalf("expected not found before create, got %v", err)
	}
	if _, err := svc.Create(ctx, tags.CreateTagRequest{Slug: "go", Name: "Go"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tag, err := svc.Get(ctx, "go"); err != nil || tag.Name != "Go" {
		t.Fatalf("expected created tag, got %+v %v", tag, err)
	}
	if list, err := svc.List(ctx); err != nil || len(list) != 1 {
		t.Fatalf("expected one tag listed, got %+v %v", list, err)
	}

	if _, err := svc.Update(ctx, tags.UpdateTagRequest{Slug: "go", Name: "Golang"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tag, err := svc.Get(ctx, "go"); err != nil || tag.Name != "Golang" {
		t.Fatalf("expected renamed tag after update, got %+v %v", tag, err)
	}

	if _, err := svc.Create(ctx, tags.CreateTagRequest{Slug: "web", Name: "Web"}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	names := make([]string, len(list))
	for i, tag := range list {
		names[i] = tag.Name
	}
	if !slices.Equal(names, []string{"Golang", "Web"}) {
		t.Fatalf("expected list to reflect writes, got %v", names)
	}

	if err := svc.Delete(ctx, "go"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "go"); !models.IsNotFound(err) {
		t.Fatalf("expected deleted tag to miss the cache, got %v", err)
	}
	if err := svc.Delete(ctx, "go"); !models.IsNotFound(err) {
		t.Fatalf("expected second delete to report not found, got %v", err)
	}
}
