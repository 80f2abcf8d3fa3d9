package site

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-blog/internal/auth"
	"github.com/goliatone/go-blog/internal/urls"
)

func (s *Site) loginForm(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, s.afterLogin(r.URL.Query().Get("next")), http.StatusSeeOther)
		return
	}
	s.pages.Render(w, r, http.StatusOK, "login.html", map[string]any{
		"form": auth.LoginForm{},
		"next": safeNext(r.URL.Query().Get("next")),
	})
}

func (s *Site) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.pages.Error(w, r, err)
		return
	}
	form := auth.LoginForm{
		Shortname: strings.TrimSpace(r.PostForm.Get("shortname")),
		Password:  r.PostForm.Get("password"),
		Remember:  checked(r.PostForm.Get("remember")),
	}
	next := r.PostForm.Get("next")

	session, user, err := s.auth.Login(r.Context(), form)
	if err != nil {
		fields := auth.FieldErrors(err)
		if fields == nil {
			s.pages.Error(w, r, err)
			return
		}
		form.Password = ""
		s.pages.Render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]any{
			"form":   form,
			"errors": fields,
			"next":   safeNext(next),
		})
		return
	}

	s.auth.SetCookie(w, session)
	s.logger.Info("site.login.success", "shortname", user.Shortname)
	http.Redirect(w, r, s.afterLogin(next), http.StatusSeeOther)
}

func (s *Site) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), s.auth.SessionID(r)); err != nil {
		s.pages.ServerError(w, r, err)
		return
	}
	s.auth.ClearCookie(w)
	http.Redirect(w, r, s.urls.Path(urls.RouteIndex), http.StatusSeeOther)
}

func (s *Site) afterLogin(next string) string {
	if target := safeNext(next); target != "" {
		return target
	}
	return s.urls.Path(urls.RouteAdmin)
}

// safeNext keeps only same-site relative redirect targets.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "on", "true", "1":
		return true
	}
	return false
}
