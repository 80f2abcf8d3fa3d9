package users_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

func TestBunRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	repo := users.NewBunRepository(db)

	created, err := repo.Create(ctx, &models.User{Shortname: "ann", Name: "Ann", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.URL != "" || created.CSSFile != "" {
		t.Fatalf("expected empty optional fields, got %+v", created)
	}

	if _, err := db.NewInsert().Model(&models.Service{Name: "GitHub", URL: "https://github.com/ann", UserShortname: "ann"}).Exec(ctx); err != nil {
		t.Fatalf("insert service: %v", err)
	}

	created.Name = "Ann Example"
	created.CSSFile = "ann.css"
	if _, err := repo.Update(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByShortname(ctx, "ann")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Ann Example" || got.CSSFile != "ann.css" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", got)
	}
	if len(got.Services) != 1 || got.Services[0].Name != "GitHub" {
		t.Fatalf("expected services relation loaded, got %+v", got.Services)
	}

	if err := repo.Delete(ctx, "ann"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByShortname(ctx, "ann"); !models.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "ann"); !models.IsNotFound(err) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestBunRepositoryListOrdersByName(t *testing.T) {
	ctx := context.Background()
	repo := users.NewBunRepository(testsupport.NewBunDB(t))

	for _, u := range []*models.User{
		{Shortname: "b", Name: "Zed", PasswordHash: "x"},
		{Shortname: "a", Name: "Amy", PasswordHash: "x"},
	} {
		if _, err := repo.Create(ctx, u); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Amy" {
		t.Fatalf("unexpected order %+v", list)
	}
}
