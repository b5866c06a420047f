package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	e "github.com/gartstein/backoffice/internal/backoffice/errors"
	"github.com/gartstein/backoffice/internal/backoffice/models"
	"go.uber.org/zap"
)

// CookieName is the session cookie.
const CookieName = "backoffice_session"

// LoginPath is where anonymous requests are sent.
const LoginPath = "/login"

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// FromContext returns the session stored by the middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(*Session)
	return s, ok && s != nil
}

// UserSource loads the stored state of a session's user.
type UserSource interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// Manager issues, reads and clears the session cookie.
type Manager struct {
	secret string
	ttl    time.Duration
	secure bool
	users  UserSource
	logger *zap.Logger
}

// NewManager returns a Manager. With a nil users the session token is
// trusted until it expires.
func NewManager(secret string, ttl time.Duration, secure bool, users UserSource, logger *zap.Logger) *Manager {
	return &Manager{
		secret: secret,
		ttl:    ttl,
		secure: secure,
		users:  users,
		logger: logger.Named("session"),
	}
}

// Issue signs s and sets it as the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, s Session) error {
	token, err := GenerateToken(s, m.secret, m.ttl)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware puts the session of a valid cookie into the request context.
// Requests without one continue anonymously. The session's role and modules
// are reloaded from the user source on every request, and sessions of
// deleted or deactivated users are dropped.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := ParseToken(cookie.Value, m.secret)
		if err != nil {
			m.logger.Debug("Ignoring session cookie", zap.Error(err))
			m.Clear(w)
			next.ServeHTTP(w, r)
			return
		}

		if m.users != nil {
			user, err := m.users.GetUser(r.Context(), session.UserID)
			switch {
			case errors.Is(err, e.ErrNotFound) || (err == nil && !user.IsActive):
				m.logger.Info("Dropping session of inactive user",
					zap.Uint("user_id", session.UserID),
					zap.String("username", session.Username),
				)
				m.Clear(w)
				next.ServeHTTP(w, r)
				return
			case err != nil:
				m.logger.Error("Failed to load session user", zap.Uint("user_id", session.UserID), zap.Error(err))
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			session.refresh(user)
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireLogin redirects anonymous requests to LoginPath.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModule hands requests of sessions without module to denied.
// It must run after RequireLogin.
func RequireModule(module models.Module, denied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok || !s.HasModule(module) {
				denied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
