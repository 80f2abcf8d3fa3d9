package users_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

type postCount map[string]int

func (p postCount) CountByUser(_ context.Context, shortname string) (int, error) {
	return p[shortname], nil
}

type linkRemover struct{ removed []string }

func (l *linkRemover) DeleteByUser(_ context.Context, shortname string) error {
	l.removed = append(l.removed, shortname)
	return nil
}

func newService(opts ...users.ServiceOption) (users.Service, *testsupport.ActivityRecorder) {
	recorder := &testsupport.ActivityRecorder{}
	base := []users.ServiceOption{
		users.WithHashCost(bcrypt.MinCost),
		users.WithMarkdown(markdown.NewGoldmarkParser(interfaces.ParseOptions{})),
		users.WithActivity(recorder),
	}
	return users.NewService(users.NewMemoryRepository(), append(base, opts...)...), recorder
}

func TestServiceCreateHashesPasswordAndConverts(t *testing.T) {
	svc, recorder := newService()
	ctx := context.Background()

	user, err := svc.Create(ctx, users.CreateUserRequest{
		Shortname:     "ann",
		Name:          "Ann Example",
		AboutMarkdown: "Hello *there*",
		AboutHTML:     "ignored",
		Password:      "s3cret",
		Convert:       true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if user.PasswordHash == "" || user.PasswordHash == "s3cret" {
		t.Fatalf("expected bcrypt hash, got %q", user.PasswordHash)
	}
	if !svc.CheckPassword(user, "s3cret") {
		t.Fatal("expected password to verify")
	}
	if svc.CheckPassword(user, "nope") {
		t.Fatal("expected wrong password to fail")
	}
	if !strings.Contains(user.AboutHTML, "<em>there</em>") {
		t.Fatalf("expected converted about html, got %q", user.AboutHTML)
	}
	if got := recorder.Verbs(); !slices.Equal(got, []string{"create:user:ann"}) {
		t.Fatalf("unexpected activity %v", got)
	}
}

func TestServiceCreateKeepsHTMLWithoutConvert(t *testing.T) {
	svc, _ := newService()

	user, err := svc.Create(context.Background(), users.CreateUserRequest{
		Shortname:     "ann",
		Name:          "Ann",
		AboutMarkdown: "# ignored",
		AboutHTML:     "<p>hand written</p>",
		Password:      "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.AboutHTML != "<p>hand written</p>" {
		t.Fatalf("expected html stored verbatim, got %q", user.AboutHTML)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  users.CreateUserRequest
		want error
	}{
		{"missing shortname", users.CreateUserRequest{Name: "A", Password: "pw"}, models.ErrShortnameRequired},
		{"invalid shortname", users.CreateUserRequest{Shortname: "no spaces", Name: "A", Password: "pw"}, models.ErrShortnameInvalid},
		{"missing name", users.CreateUserRequest{Shortname: "ann", Password: "pw"}, models.ErrNameRequired},
		{"missing password", users.CreateUserRequest{Shortname: "ann", Name: "Ann"}, models.ErrPasswordRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestServiceCreateDuplicateShortname(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	req := users.CreateUserRequest{Shortname: "ann", Name: "Ann", Password: "pw"}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, req); !errors.Is(err, models.ErrShortnameExists) {
		t.Fatalf("expected ErrShortnameExists, got %v", err)
	}
}

func TestServiceUpdateKeepsHashWhenPasswordEmpty(t *testing.T) {
	svc, recorder := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, users.CreateUserRequest{Shortname: "ann", Name: "Ann", Password: "pw"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, users.UpdateUserRequest{
		Shortname:     "ann",
		Name:          "Ann B",
		URL:           "https://ann.example",
		AboutMarkdown: "**bold**",
		Convert:       true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PasswordHash != created.PasswordHash {
		t.Fatal("expected password hash to be unchanged")
	}
	if updated.Name != "Ann B" || updated.URL != "https://ann.example" {
		t.Fatalf("unexpected fields %+v", updated)
	}
	if !strings.Contains(updated.AboutHTML, "<strong>bold</strong>") {
		t.Fatalf("expected converted html, got %q", updated.AboutHTML)
	}

	rehashed, err := svc.Update(ctx, users.UpdateUserRequest{Shortname: "ann", Name: "Ann B", Password: "new"})
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if !svc.CheckPassword(rehashed, "new") {
		t.Fatal("expected new password to verify")
	}
	if got := recorder.Verbs(); len(got) != 3 || got[2] != "update:user:ann" {
		t.Fatalf("unexpected activity %v", got)
	}
}

func TestServiceUpdateUnknownUser(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Update(context.Background(), users.UpdateUserRequest{Shortname: "ghost", Name: "Ghost"})
	if !models.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceDeleteRefusesUsersWithPosts(t *testing.T) {
	links := &linkRemover{}
	svc, _ := newService(
		users.WithPostCounter(postCount{"ann": 2}),
		users.WithServiceLinkRemover(links),
	)
	ctx := context.Background()

	for _, name := range []string{"ann", "bob"} {
		if _, err := svc.Create(ctx, users.CreateUserRequest{Shortname: name, Name: name, Password: "pw"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	if err := svc.Delete(ctx, "ann"); !errors.Is(err, models.ErrUserHasPosts) {
		t.Fatalf("expected ErrUserHasPosts, got %v", err)
	}
	if err := svc.Delete(ctx, "bob"); err != nil {
		t.Fatalf("delete bob: %v", err)
	}
	if !slices.Equal(links.removed, []string{"bob"}) {
		t.Fatalf("expected bob's links removed, got %v", links.removed)
	}
	if _, err := svc.Get(ctx, "bob"); !models.IsNotFound(err) {
		t.Fatalf("expected bob to be gone, got %v", err)
	}
}

func TestServiceListOrdersByName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	for _, u := range [][2]string{{"zed", "Alice"}, {"amy", "Zoe"}, {"bob", "Bob"}} {
		if _, err := svc.Create(ctx, users.CreateUserRequest{Shortname: u[0], Name: u[1], Password: "pw"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, u := range list {
		names = append(names, u.Name)
	}
	if !slices.Equal(names, []string{"Alice", "Bob", "Zoe"}) {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestServiceDeleteRemovesLinksInOneTransaction(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	remover := &linkRemover{}
	svc := users.NewService(users.NewBunRepository(db),
		users.WithHashCost(bcrypt.MinCost),
		users.WithServiceLinkRemover(remover),
	)

	for _, req := range []users.CreateUserRequest{
		{Shortname: "ann", Name: "Ann", Password: "pw"},
		{Shortname: "bob", Name: "Bob", Password: "pw"},
	} {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("create %s: %v", req.Shortname, err)
		}
	}
	links := []*models.Service{
		{Name: "GitHub", URL: "https://github.com/ann", UserShortname: "ann"},
		{Name: "GitHub", URL: "https://github.com/bob", UserShortname: "bob"},
	}
	if _, err := db.NewInsert().Model(&links).Exec(ctx); err != nil {
		t.Fatalf("insert links: %v", err)
	}
	post := &models.Post{Slug: "by-bob", Title: "By Bob", Date: testsupport.FixedTime, UserShortname: "bob"}
	if _, err := db.NewInsert().Model(post).Exec(ctx); err != nil {
		t.Fatalf("insert post: %v", err)
	}

	countLinks := func(shortname string) int {
		t.Helper()
		n, err := db.NewSelect().Model((*models.Service)(nil)).Where("user_shortname = ?", shortname).Count(ctx)
		if err != nil {
			t.Fatalf("count links: %v", err)
		}
		return n
	}

	if err := svc.Delete(ctx, "bob"); !errors.Is(err, models.ErrUserHasPosts) {
		t.Fatalf("expected author to be kept, got %v", err)
	}
	if countLinks("bob") != 1 {
		t.Fatal("expected refused delete to leave links in place")
	}

	if err := svc.Delete(ctx, "ann"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "ann"); !models.IsNotFound(err) {
		t.Fatalf("expected user gone, got %v", err)
	}
	if countLinks("ann") != 0 {
		t.Fatal("expected links removed with the user")
	}
	if len(remover.removed) != 0 {
		t.Fatalf("expected links to be removed inside the repository transaction, remover saw %v", remover.removed)
	}
}
