package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/site"
	"github.com/goliatone/go-blog/internal/urls"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultActivityLimit is the number of entries the activity page shows.
const DefaultActivityLimit = 100

// ActivityLister reads the most recent activity entries.
type ActivityLister interface {
	List(ctx context.Context, limit int) ([]*models.ActivityEntry, error)
}

// Console registers the admin routes.
type Console struct {
	pages    *site.Pages
	auth     *auth.Manager
	urls     *urls.Builder
	views    []ModelView
	byName   map[string]ModelView
	activity ActivityLister
	limit    int
	logger   interfaces.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithActivity enables the activity page.
func WithActivity(lister ActivityLister) Option {
	return func(c *Console) {
		c.activity = lister
	}
}

func WithActivityLimit(limit int) Option {
	return func(c *Console) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Dependencies wires the console.
type Dependencies struct {
	Pages *site.Pages
	Auth  *auth.Manager
	URLs  *urls.Builder
	Views []ModelView
}

// New returns a console over deps.Views.
func New(deps Dependencies, opts ...Option) *Console {
	c := &Console{
		pages:  deps.Pages,
		auth:   deps.Auth,
		urls:   deps.URLs,
		views:  deps.Views,
		byName: make(map[string]ModelView, len(deps.Views)),
		limit:  DefaultActivityLimit,
		logger: logging.NoOp(),
	}
	for _, view := range deps.Views {
		c.byName[view.Name()] = view
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Register attaches the admin routes to mux. Every route requires a
// logged-in user.
func (c *Console) Register(mux *http.ServeMux) {
	guard := func(fn http.HandlerFunc) http.Handler {
		return c.auth.RequireUser(fn)
	}
	mux.Handle("GET /admin", guard(c.index))
	mux.Handle("GET /admin/{$}", guard(c.index))
	mux.Handle("GET /admin/activity", guard(c.activityLog))
	mux.Handle("GET /admin/{view}", guard(c.list))
	mux.Handle("GET /admin/{view}/new", guard(c.newForm))
	mux.Handle("POST /admin/{view}/new", guard(c.create))
	mux.Handle("GET /admin/{view}/edit/{key}", guard(c.editForm))
	mux.Handle("POST /admin/{view}/edit/{key}", guard(c.update))
	mux.Handle("POST /admin/{view}/delete/{key}", guard(c.remove))
}

type viewLink struct {
	Name  string
	Title string
}

type viewSummary struct {
	Name  string
	Title string
	Count int
}

func (c *Console) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	links := make([]viewLink, 0, len(c.views))
	for _, view := range c.views {
		links = append(links, viewLink{Name: view.Name(), Title: view.Title()})
	}
	data["views"] = links
	c.pages.Render(w, r, status, name, data)
}

func (c *Console) index(w http.ResponseWriter, r *http.Request) {
	summaries := make([]viewSummary, 0, len(c.views))
	for _, view := range c.views {
		count, err := view.Count(r.Context())
		if err != nil {
			c.pages.Error(w, r, err)
			return
		}
		summaries = append(summaries, viewSummary{Name: view.Name(), Title: view.Title(), Count: count})
	}
	c.render(w, r, http.StatusOK, "admin/index.html", map[string]any{"summaries": summaries})
}

func (c *Console) activityLog(w http.ResponseWriter, r *http.Request) {
	var entries []*models.ActivityEntry
	if c.activity != nil {
		list, err := c.activity.List(r.Context(), c.limit)
		if err != nil {
			c.pages.Error(w, r, err)
			return
		}
		entries = list
	}
	c.render(w, r, http.StatusOK, "admin/activity.html", map[string]any{"entries": entries})
}

func (c *Console) list(w http.ResponseWriter, r *http.Request) {
	view, ok := c.lookup(w, r)
	if !ok {
		return
	}
	c.renderList(w, r, view, http.StatusOK, flashFor(r.URL.Query()))
}

func (c *Console) renderList(w http.ResponseWriter, r *http.Request, view ModelView, status int, flash string) {
	rows, err := view.Rows(r.Context())
	if err != nil {
		c.pages.Error(w, r, err)
		return
	}
	c.render(w, r, status, "admin/list.html", map[string]any{
		"view":    viewLink{Name: view.Name(), Title: view.Title()},
		"columns": view.Columns(),
		"rows":    rows,
		"flash":   flash,
	})
}

func (c *Console) newForm(w http.ResponseWriter, r *http.Request) {
	view, ok := c.lookup(w, r)
	if !ok {
		return
	}
	values, err := view.Values(r.Context(), "")
	if err != nil {
		c.pages.Error(w, r, err)
		return
	}
	c.renderForm(w, r, view, "", values, http.StatusOK, nil)
}

func (c *Console) editForm(w http.ResponseWriter, r *http.Request) {
	view, ok := c.lookup(w, r)
	if !ok {
		return
	}
	key := r.PathValue("key")
	values, err := view.Values(r.Context(), key)
	if err != nil {
		c.pages.Error(w, r, err)
		return
	}
	c.renderForm(w, r, view, key, values, http.StatusOK, nil)
}

func (c *Console) create(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, "")
}

func (c *Console) update(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, r.PathValue("key"))
}

func (c *Console) save(w http.ResponseWriter, r *http.Request, key string) {
	view, ok := c.lookup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		c.pages.Error(w, r, err)
		return
	}
	if key != "" {
		// the record must exist before its form is accepted
		if _, err := view.Values(r.Context(), key); err != nil {
			c.pages.Error(w, r, err)
			return
		}
	}

	saved, err := view.Save(r.Context(), key, r.PostForm)
	if err != nil {
		if site.StatusFor(err) != http.StatusUnprocessableEntity {
			c.pages.Error(w, r, err)
			return
		}
		c.logger.Warn("admin.save.rejected", "view", view.Name(), "key", key, "error", err)
		c.renderForm(w, r, view, key, r.PostForm, http.StatusUnprocessableEntity, err)
		return
	}

	event, param := "admin.update.success", "updated"
	if key == "" {
		event, param = "admin.create.success", "created"
	}
	c.logger.Info(event, "view", view.Name(), "key", saved)
	target, err := c.urls.URLFor(urls.RouteAdminList, map[string]any{"view": view.Name()}, map[string]string{param: saved})
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (c *Console) remove(w http.ResponseWriter, r *http.Request) {
	view, ok := c.lookup(w, r)
	if !ok {
		return
	}
	key := r.PathValue("key")
	if err := view.Delete(r.Context(), key); err != nil {
		if site.StatusFor(err) == http.StatusUnprocessableEntity {
			c.logger.Warn("admin.delete.rejected", "view", view.Name(), "key", key, "error", err)
			c.renderList(w, r, view, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.pages.Error(w, r, err)
		return
	}
	c.logger.Info("admin.delete.success", "view", view.Name(), "key", key)
	target, err := c.urls.URLFor(urls.RouteAdminList, map[string]any{"view": view.Name()}, map[string]string{"deleted": key})
	if err != nil {
		c.pages.ServerError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (c *Console) renderForm(w http.ResponseWriter, r *http.Request, view ModelView, key string, values url.Values, status int, saveErr error) {
	isNew := key == ""
	errs := fieldErrors(saveErr)
	fields, err := view.Fields(r.Context(), values, isNew, errs)
	if err != nil {
		c.pages.Error(w, r, err)
		return
	}

	action := c.urls.Path(urls.RouteAdminNew, "view", view.Name())
	if !isNew {
		action = c.urls.Path(urls.RouteAdminEdit, "view", view.Name(), "key", key)
	}
	data := map[string]any{
		"view":   viewLink{Name: view.Name(), Title: view.Title()},
		"fields": fields,
		"is_new": isNew,
		"action": action,
	}
	if saveErr != nil && errs == nil {
		data["form_error"] = saveErr.Error()
	}
	c.render(w, r, status, "admin/form.html", data)
}

func (c *Console) lookup(w http.ResponseWriter, r *http.Request) (ModelView, bool) {
	name := r.PathValue("view")
	view, ok := c.byName[name]
	if !ok {
		c.pages.Error(w, r, &models.NotFoundError{Resource: "admin view", Key: name})
		return nil, false
	}
	return view, true
}

func flashFor(query url.Values) string {
	switch {
	case query.Get("created") != "":
		return "Record " + query.Get("created") + " was created."
	case query.Get("updated") != "":
		return "Record " + query.Get("updated") + " was updated."
	case query.Get("deleted") != "":
		return "Record " + query.Get("deleted") + " was deleted."
	}
	return ""
}
