package urls_test

import (
	"testing"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-blog/internal/urls"
)

func TestBuilderResolvesNamedRoutes(t *testing.T) {
	b, err := urls.New("https://blog.example.com/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	cases := []struct {
		route  string
		params []any
		want   string
	}{
		{route: urls.RouteAbout, want: "https://blog.example.com/about"},
		{route: urls.RoutePost, params: []any{"slug", "hello-world"}, want: "https://blog.example.com/post/hello-world"},
		{route: urls.RouteTag, params: []any{"slug", "go"}, want: "https://blog.example.com/tag/go"},
		{route: urls.RouteProfile, params: []any{"name", "ann"}, want: "https://blog.example.com/profile/ann"},
		{route: urls.RouteAdminEdit, params: []any{"view", "posts", "key", "intro"}, want: "https://blog.example.com/admin/posts/edit/intro"},
	}
	for _, tc := range cases {
		t.Run(tc.route, func(t *testing.T) {
			if got := b.Path(tc.route, tc.params...); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuilderFallbacks(t *testing.T) {
	b, err := urls.New("https://blog.example.com")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := b.Path(urls.RoutePost, "slug"); got != "#" {
		t.Fatalf("expected # for odd params, got %q", got)
	}
	if _, err := b.URLFor("missing", nil, nil); err == nil {
		t.Fatalf("expected error for unknown route")
	}
}

func TestNewFromManagerRequiresSiteGroup(t *testing.T) {
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{Name: "other", BaseURL: "https://x.test", Paths: map[string]string{"a": "/a"}}},
	})
	if _, err := urls.NewFromManager(manager); err == nil {
		t.Fatalf("expected missing group error")
	}
}
