// Package site serves the public blog pages, the login flow and the shared
// error pages.
package site

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/posts"
	"github.com/goliatone/go-blog/internal/tags"
	"github.com/goliatone/go-blog/internal/users"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const errorTemplate = "error.html"

// Pages renders templates with the navigation context every page shares.
type Pages struct {
	templates  interfaces.TemplateRenderer
	users      users.Service
	tags       tags.Service
	posts      posts.Service
	adminEmail string
	logger     interfaces.Logger
}

// PagesConfig wires a Pages renderer.
type PagesConfig struct {
	Templates  interfaces.TemplateRenderer
	Users      users.Service
	Tags       tags.Service
	Posts      posts.Service
	AdminEmail string
	Logger     interfaces.Logger
}

// NewPages returns a page renderer.
func NewPages(cfg PagesConfig) *Pages {
	return &Pages{
		templates:  cfg.Templates,
		users:      cfg.Users,
		tags:       cfg.Tags,
		posts:      cfg.Posts,
		adminEmail: strings.TrimSpace(cfg.AdminEmail),
		logger:     logging.OrNoOp(cfg.Logger),
	}
}

// Context returns the navigation values merged with data.
func (p *Pages) Context(ctx context.Context, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data)+4)
	if p.users != nil {
		list, err := p.users.List(ctx)
		if err != nil {
			return nil, err
		}
		out["users"] = list
	}
	if p.tags != nil {
		list, err := p.tags.List(ctx)
		if err != nil {
			return nil, err
		}
		out["tags"] = list
	}
	if p.posts != nil {
		list, err := p.posts.List(ctx)
		if err != nil {
			return nil, err
		}
		out["posts"] = list
	}
	if user := auth.CurrentUser(ctx); user != nil {
		out["current_user"] = user
	}
	maps.Copy(out, data)
	return out, nil
}

// Render writes template name with status. Failures fall back to the 500
// page.
func (p *Pages) Render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	pageCtx, err := p.Context(r.Context(), data)
	if err != nil {
		p.ServerError(w, r, err)
		return
	}
	body, err := p.templates.Render(name, pageCtx)
	if err != nil {
		p.ServerError(w, r, err)
		return
	}
	writeHTML(w, status, body)
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.renderError(w, r, http.StatusNotFound)
}

// ServerError logs err and renders the 500 page.
func (p *Pages) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("site.request.failed", "method", r.Method, "path", r.URL.Path, "error", err)
	p.renderError(w, r, http.StatusInternalServerError)
}

// Error maps err onto the matching error page.
func (p *Pages) Error(w http.ResponseWriter, r *http.Request, err error) {
	switch StatusFor(err) {
	case http.StatusNotFound:
		p.NotFound(w, r)
	case http.StatusUnprocessableEntity:
		p.logger.Warn("site.request.rejected", "path", r.URL.Path, "error", err)
		p.renderError(w, r, http.StatusUnprocessableEntity)
	default:
		p.ServerError(w, r, err)
	}
}

func (p *Pages) renderError(w http.ResponseWriter, r *http.Request, code int) {
	data := map[string]any{"code": code, "email": p.adminEmail}
	pageCtx, err := p.Context(r.Context(), data)
	if err != nil {
		pageCtx = data
	}
	body, err := p.templates.Render(errorTemplate, pageCtx)
	if err != nil {
		p.logger.Error("site.error_page.failed", "code", code, "error", err)
		http.Error(w, http.StatusText(code), code)
		return
	}
	writeHTML(w, code, body)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case models.IsInvalid(err), isValidation(err):
		return http.StatusUnprocessableEntity
	case models.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func isValidation(err error) bool {
	var errs validation.Errors
	return errors.As(err, &errs)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
