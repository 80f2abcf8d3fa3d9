package site_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/di"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/runtimeconfig"
	"github.com/goliatone/go-blog/internal/servicelinks"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
)

func newBlog(t *testing.T) http.Handler {
	t.Helper()

	cfg := runtimeconfig.DefaultConfig()
	cfg.BlogName = "Test Blog"
	cfg.AdminEmail = "owner@example.com"
	cfg.Auth.HashCost = 4
	cfg.Features.Logger = false

	container, err := di.NewContainer(cfg, di.WithStaticFS(fstest.MapFS{
		"css/blog.css": {Data: []byte("body{}")},
	}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	ctx := context.Background()
	if _, err := container.UserService().Create(ctx, users.CreateUserRequest{
		Shortname:     "ann",
		Name:          "Ann Example",
		AboutMarkdown: "Writes *things*.",
		Password:      "secret",
		Convert:       true,
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := container.TagService().Create(ctx, tags.CreateTagRequest{Slug: "go", Name: "Go"}); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	for i, slug := range []string{"first", "second"} {
		_, err := container.PostService().Create(ctx, posts.CreatePostRequest{
			Slug:          slug,
			Date:          time.Date(2024, 1, i+1, 0, 0, 0, 0, time.UTC),
			Title:         "Post " + slug,
			BodyMarkdown:  "Body of **" + slug + "**",
			UserShortname: "ann",
			Tags:          []string{"go"},
			Convert:       true,
		})
		if err != nil {
			t.Fatalf("create post %s: %v", slug, err)
		}
	}
	if _, err := container.ServiceLinkService().Create(ctx, servicelinks.CreateServiceRequest{
		Name:          "GitHub",
		URL:           "https://github.com/ann",
		IconFile:      "gh.png",
		UserShortname: "ann",
	}); err != nil {
		t.Fatalf("create service link: %v", err)
	}
	return container.Handler()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(h, req)
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(h, req)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "blog_session" {
			return c
		}
	}
	t.Fatalf("expected blog_session cookie, got %v", rec.Result().Cookies())
	return nil
}

func TestPublicPages(t *testing.T) {
	h := newBlog(t)

	cases := []struct {
		path     string
		contains []string
	}{
		{"/", []string{"Test Blog", "Post first", "Post second"}},
		{"/about", []string{"Test Blog"}},
		{"/profile/ann", []string{"Ann Example", "<em>things</em>", "https://github.com/ann"}},
		{"/user/ann", []string{"Post first", "Post second"}},
		{"/post/first", []string{"Post first", "<strong>first</strong>", "https://github.com/ann", "/tag/go"}},
		{"/tag/go", []string{"Go", "Post first"}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := get(h, tc.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			body := rec.Body.String()
			for _, want := range tc.contains {
				if !strings.Contains(body, want) {
					t.Fatalf("expected %q in body:\n%s", want, body)
				}
			}
		})
	}
}

func TestUserPostsInDateOrder(t *testing.T) {
	h := newBlog(t)
	body := get(h, "/user/ann").Body.String()
	first := strings.Index(body, "Post first")
	second := strings.Index(body, "Post second")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected oldest post first, got positions %d and %d", first, second)
	}
}

func TestMissingRecordsRenderNotFound(t *testing.T) {
	h := newBlog(t)
	for _, path := range []string{"/profile/nobody", "/user/nobody", "/post/missing", "/tag/missing", "/no/such/page"} {
		t.Run(path, func(t *testing.T) {
			rec := get(h, path)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "owner@example.com") {
				t.Fatalf("expected admin email on error page, got %s", rec.Body.String())
			}
		})
	}
}

func TestStaticFiles(t *testing.T) {
	h := newBlog(t)
	if rec := get(h, "/static/css/blog.css"); rec.Code != http.StatusOK {
		t.Fatalf("expected static file, got %d", rec.Code)
	}
	if rec := get(h, "/static/css/"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected directory listing to be refused, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newBlog(t)

	cases := []struct {
		name string
		form url.Values
		want string
	}{
		{"unknown user", url.Values{"shortname": {"bob"}, "password": {"secret"}}, "Invalid user"},
		{"bad password", url.Values{"shortname": {"ann"}, "password": {"nope"}}, "Bad password"},
		{"blank", url.Values{}, "cannot be blank"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postForm(h, "/login", tc.form)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected %q in body:\n%s", tc.want, rec.Body.String())
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Fatalf("expected no cookie on failure")
			}
		})
	}
}

func TestLoginRedirects(t *testing.T) {
	h := newBlog(t)

	cases := []struct {
		next string
		want string
	}{
		{"", "/admin"},
		{"/admin/posts", "/admin/posts"},
		{"//evil.example.com", "/admin"},
		{"https://evil.example.com", "/admin"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("next=%q", tc.next), func(t *testing.T) {
			rec := postForm(h, "/login", url.Values{"shortname": {"ann"}, "password": {"secret"}, "next": {tc.next}})
			if rec.Code != http.StatusSeeOther {
				t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Location"); got != tc.want {
				t.Fatalf("expected redirect to %q, got %q", tc.want, got)
			}
		})
	}
}

func TestLoginRememberSetsPersistentCookie(t *testing.T) {
	h := newBlog(t)

	plain := sessionCookie(t, postForm(h, "/login", url.Values{"shortname": {"ann"}, "password": {"secret"}}))
	if plain.MaxAge != 0 || !plain.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie, got %+v", plain)
	}

	remembered := sessionCookie(t, postForm(h, "/login", url.Values{"shortname": {"ann"}, "password": {"secret"}, "remember": {"y"}}))
	if remembered.MaxAge <= 0 {
		t.Fatalf("expected persistent cookie, got %+v", remembered)
	}
}

func TestLoginFormRedirectsLoggedInUser(t *testing.T) {
	h := newBlog(t)
	cookie := sessionCookie(t, postForm(h, "/login", url.Values{"shortname": {"ann"}, "password": {"secret"}}))

	if rec := get(h, "/login"); rec.Code != http.StatusOK {
		t.Fatalf("expected login form for anonymous user, got %d", rec.Code)
	}
	rec := get(h, "/login", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin" {
		t.Fatalf("expected redirect to admin, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLogout(t *testing.T) {
	h := newBlog(t)

	rec := get(h, "/logout")
	if rec.Code != http.StatusSeeOther || !strings.HasPrefix(rec.Header().Get("Location"), "/login?next=") {
		t.Fatalf("expected anonymous logout to redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	cookie := sessionCookie(t, postForm(h, "/login", url.Values{"shortname": {"ann"}, "password": {"secret"}}))
	rec = get(h, "/logout", cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to index, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if cleared := sessionCookie(t, rec); cleared.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cleared)
	}

	if rec := get(h, "/admin", cookie); rec.Code != http.StatusSeeOther {
		t.Fatalf("expected session to be gone after logout, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", &models.NotFoundError{Resource: "post", Key: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", &models.NotFoundError{Resource: "tag"}), http.StatusNotFound},
		{"conflict", models.ErrSlugExists, http.StatusUnprocessableEntity},
		{"unknown tag", fmt.Errorf("%w: nope", models.ErrTagNotFound), http.StatusUnprocessableEntity},
		{"invalid wrapping not found", errors.Join(models.ErrUserNotFound, &models.NotFoundError{Resource: "user"}), http.StatusUnprocessableEntity},
		{"validation", validation.Errors{"title": errors.New("cannot be blank")}, http.StatusUnprocessableEntity},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := site.StatusFor(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRecoverRendersServerError(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = false
	container, err := di.NewContainer(cfg, di.WithStaticFS(fstest.MapFS{}))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	pages := site.NewPages(site.PagesConfig{Templates: container.Templates(), AdminEmail: "owner@example.com"})
	h := pages.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := get(h, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "owner@example.com") {
		t.Fatalf("expected error page, got %s", rec.Body.String())
	}
}
