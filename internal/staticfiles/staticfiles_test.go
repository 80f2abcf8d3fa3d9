package staticfiles_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-blog/internal/staticfiles"
)

func catalog() *staticfiles.Catalog {
	return staticfiles.NewCatalogFS(fstest.MapFS{
		"css/site.css":     {Data: []byte("body{}")},
		"css/dark.css":     {Data: []byte("body{color:#fff}")},
		"css/.hidden":      {Data: []byte("x")},
		"css/themes/a.css": {Data: []byte("a")},
		"img/github.png":   {Data: []byte("png")},
		"js/app.js":        {Data: []byte("console.log(1)")},
	})
}

func TestChoicesEndWithEmptyOption(t *testing.T) {
	choices, err := catalog().Choices(staticfiles.DirCSS)
	if err != nil {
		t.Fatalf("choices: %v", err)
	}
	want := []staticfiles.Choice{
		{Value: "dark.css", Label: "dark.css"},
		{Value: "site.css", Label: "site.css"},
		{},
	}
	if !slices.Equal(choices, want) {
		t.Fatalf("expected %v, got %v", want, choices)
	}
}

func TestChoicesForMissingDirectory(t *testing.T) {
	choices, err := catalog().Choices("fonts")
	if err != nil {
		t.Fatalf("choices: %v", err)
	}
	if len(choices) != 1 || choices[0] != (staticfiles.Choice{}) {
		t.Fatalf("expected only the empty option, got %v", choices)
	}
}

func TestHandlerServesFiles(t *testing.T) {
	handler := catalog().Handler("/static/")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/js/app.js", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/css/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected directory listing to be refused, got %d", rec.Code)
	}
}
