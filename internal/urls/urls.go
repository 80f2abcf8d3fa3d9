// Package urls names the blog routes and builds their URLs with go-urlkit.
package urls

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

// GroupName is the urlkit group holding every blog route.
const GroupName = "site"

const (
	RouteIndex       = "index"
	RouteAbout       = "about"
	RouteProfile     = "profile"
	RouteUser        = "user"
	RoutePost        = "post"
	RouteTag         = "tag"
	RouteLogin       = "login"
	RouteLogout      = "logout"
	RouteAdmin       = "admin"
	RouteAdminList   = "admin_list"
	RouteAdminNew    = "admin_new"
	RouteAdminEdit   = "admin_edit"
	RouteAdminDelete = "admin_delete"
	RouteAdminLog    = "admin_activity"
)

var ErrOddParams = errors.New("urls: params must be key/value pairs")

// Paths maps route names to urlkit path templates.
func Paths() map[string]string {
	return map[string]string{
		RouteIndex:       "/",
		RouteAbout:       "/about",
		RouteProfile:     "/profile/:name",
		RouteUser:        "/user/:name",
		RoutePost:        "/post/:slug",
		RouteTag:         "/tag/:slug",
		RouteLogin:       "/login",
		RouteLogout:      "/logout",
		RouteAdmin:       "/admin",
		RouteAdminLog:    "/admin/activity",
		RouteAdminList:   "/admin/:view",
		RouteAdminNew:    "/admin/:view/new",
		RouteAdminEdit:   "/admin/:view/edit/:key",
		RouteAdminDelete: "/admin/:view/delete/:key",
	}
}

// Config returns the urlkit configuration for baseURL.
func Config(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    GroupName,
				BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
				Paths:   Paths(),
			},
		},
	}
}

// Builder resolves named routes.
type Builder struct {
	manager *urlkit.RouteManager
	group   *urlkit.Group
}

// New returns a Builder over a fresh route manager rooted at baseURL.
func New(baseURL string) (*Builder, error) {
	return NewFromManager(urlkit.NewRouteManager(Config(baseURL)))
}

// NewFromManager returns a Builder over an existing route manager that
// declares the site group.
func NewFromManager(manager *urlkit.RouteManager) (*Builder, error) {
	group, err := lookupGroup(manager, GroupName)
	if err != nil {
		return nil, err
	}
	return &Builder{manager: manager, group: group}, nil
}

// Manager exposes the underlying route manager.
func (b *Builder) Manager() *urlkit.RouteManager {
	return b.manager
}

// URLFor builds the URL of route with path params and optional query values.
func (b *Builder) URLFor(route string, params map[string]any, query map[string]string) (string, error) {
	builder, err := b.safeBuilder(route)
	if err != nil {
		return "", err
	}
	for key, val := range params {
		builder.WithParam(key, val)
	}
	for key, val := range query {
		builder.WithQuery(key, val)
	}
	return builder.Build()
}

// Path builds route from alternating key/value params. Failures yield "#"
// so templates keep rendering.
func (b *Builder) Path(route string, pairs ...any) string {
	params, err := pairsToParams(pairs)
	if err != nil {
		return "#"
	}
	url, err := b.URLFor(route, params, nil)
	if err != nil {
		return "#"
	}
	return url
}

func pairsToParams(pairs []any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, ErrOddParams
	}
	params := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		params[fmt.Sprint(pairs[i])] = fmt.Sprint(pairs[i+1])
	}
	return params, nil
}

func (b *Builder) safeBuilder(route string) (builder *urlkit.Builder, err error) {
	if b == nil || b.group == nil {
		return nil, fmt.Errorf("urls: route group not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			builder = nil
			err = fmt.Errorf("urls: route %q: %v", route, rec)
		}
	}()
	builder = b.group.Builder(route)
	return builder, nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("urls: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			group = nil
			err = fmt.Errorf("urls: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, nil
}
