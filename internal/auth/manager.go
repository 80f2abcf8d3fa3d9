package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/activity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

const (
	DefaultCookieName  = "blog_session"
	DefaultSessionTTL  = 12 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
	DefaultLoginPath   = "/login"
)

// Config controls session lifetimes and the session cookie.
type Config struct {
	CookieName   string
	SessionTTL   time.Duration
	RememberTTL  time.Duration
	SecureCookie bool
	LoginPath    string
}

// DefaultConfig returns the default session settings.
func DefaultConfig() Config {
	return Config{
		CookieName:  DefaultCookieName,
		SessionTTL:  DefaultSessionTTL,
		RememberTTL: DefaultRememberTTL,
		LoginPath:   DefaultLoginPath,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.CookieName) == "" {
		c.CookieName = defaults.CookieName
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = defaults.SessionTTL
	}
	if c.RememberTTL <= 0 {
		c.RememberTTL = defaults.RememberTTL
	}
	if strings.TrimSpace(c.LoginPath) == "" {
		c.LoginPath = defaults.LoginPath
	}
	return c
}

// Option configures a Manager.
type Option func(*Manager)

func WithConfig(cfg Config) Option {
	return func(m *Manager) {
		m.cfg = cfg.withDefaults()
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager issues and resolves login sessions.
type Manager struct {
	users  UserFinder
	store  SessionStore
	cfg    Config
	now    func() time.Time
	logger interfaces.Logger
}

// NewManager wires a session manager over users and store.
func NewManager(users UserFinder, store SessionStore, opts ...Option) *Manager {
	m := &Manager{
		users:  users,
		store:  store,
		cfg:    DefaultConfig(),
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Config returns the effective settings.
func (m *Manager) Config() Config {
	return m.cfg
}

// Login validates form and opens a session for the user.
func (m *Manager) Login(ctx context.Context, form LoginForm) (*models.Session, *models.User, error) {
	user, err := ValidateLogin(ctx, m.users, form)
	if err != nil {
		m.logger.Warn("auth.login.rejected", "shortname", strings.TrimSpace(form.Shortname), "error", err)
		return nil, nil, err
	}

	now := m.now().UTC()
	ttl := m.cfg.SessionTTL
	if form.Remember {
		ttl = m.cfg.RememberTTL
	}
	session, err := m.store.Create(ctx, &models.Session{
		ID:        uuid.New(),
		Shortname: user.Shortname,
		Remember:  form.Remember,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		m.logger.Error("auth.login.failed", "shortname", user.Shortname, "error", err)
		return nil, nil, err
	}

	m.logger.Info("auth.login.success", "shortname", user.Shortname, "remember", form.Remember)
	return session, user, nil
}

// Logout deletes the session identified by id. Unknown ids are ignored.
func (m *Manager) Logout(ctx context.Context, id string) error {
	sessionID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil && !models.IsNotFound(err) {
		m.logger.Error("auth.logout.failed", "session_id", sessionID, "error", err)
		return err
	}
	m.logger.Info("auth.logout.success", "session_id", sessionID)
	return nil
}

// Resolve returns the user owning session id. Expired sessions are removed
// and reported as ErrSessionExpired.
func (m *Manager) Resolve(ctx context.Context, id string) (*models.User, *models.Session, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, nil, ErrNoSession
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil, ErrNoSession
		}
		return nil, nil, err
	}
	if session.Expired(m.now()) {
		if err := m.store.Delete(ctx, sessionID); err != nil {
			m.logger.Warn("auth.session.cleanup_failed", "session_id", sessionID, "error", err)
		}
		return nil, nil, ErrSessionExpired
	}

	user, err := m.users.Get(ctx, session.Shortname)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil, ErrNoSession
		}
		return nil, nil, err
	}
	return user, session, nil
}

// PurgeExpired deletes every expired session.
func (m *Manager) PurgeExpired(ctx context.Context) (int, error) {
	removed, err := m.store.DeleteExpired(ctx, m.now())
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		m.logger.Info("auth.session.purged", "count", removed)
	}
	return removed, nil
}

// SetCookie writes the session cookie. Remembered sessions get a persistent
// cookie; others last for the browser session.
func (m *Manager) SetCookie(w http.ResponseWriter, session *models.Session) {
	cookie := &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    session.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if session.Remember {
		cookie.Expires = session.ExpiresAt
		cookie.MaxAge = int(session.ExpiresAt.Sub(m.now()).Seconds())
	}
	http.SetCookie(w, cookie)
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionID returns the session cookie value carried by r.
func (m *Manager) SessionID(r *http.Request) string {
	cookie, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Middleware loads the user behind the session cookie into the request
// context. Stale cookies are cleared.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.SessionID(r)
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, _, err := m.Resolve(r.Context(), id)
		if err != nil {
			if !errors.Is(err, ErrNoSession) && !errors.Is(err, ErrSessionExpired) {
				m.logger.Error("auth.session.resolve_failed", "error", err)
			}
			m.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser redirects anonymous requests to the login page with a next
// parameter pointing back at the requested URL.
func (m *Manager) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) != nil {
			next.ServeHTTP(w, r)
			return
		}
		target := m.cfg.LoginPath + "?" + url.Values{"next": {r.URL.RequestURI()}}.Encode()
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

type userKey struct{}

// WithUser stores user in ctx and attributes activity to them.
func WithUser(ctx context.Context, user *models.User) context.Context {
	if user == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, userKey{}, user)
	return activity.WithActor(ctx, user.Shortname)
}

// CurrentUser returns the logged in user or nil.
func CurrentUser(ctx context.Context) *models.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(userKey{}).(*models.User)
	return user
}
