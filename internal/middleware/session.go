package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studentportal/portal-server-go/internal/config"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/service"
	"github.com/studentportal/portal-server-go/internal/session"
)

const (
	SessionCookie    = "portal_session"
	RememberMeCookie = "remember_me"
	LoginPage        = "/login.html"
)

type contextKey string

const (
	UserContextKey         contextKey = "user"
	SessionContextKey      contextKey = "session"
	SessionTokenContextKey contextKey = "sessionToken"
)

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

func GetSession(ctx context.Context) *model.Session {
	if s, ok := ctx.Value(SessionContextKey).(*model.Session); ok {
		return s
	}
	return nil
}

func GetSessionToken(ctx context.Context) string {
	if token, ok := ctx.Value(SessionTokenContextKey).(string); ok {
		return token
	}
	return ""
}

// SessionMiddleware resolves the session cookie into a user, falling
// back to the remember-me cookie when no session exists.
type SessionMiddleware struct {
	sessions *session.Manager
	accounts *service.AccountService
	ttl      time.Duration
}

func NewSessionMiddleware(sessions *session.Manager, accounts *service.AccountService, ttl time.Duration) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, accounts: accounts, ttl: ttl}
}

// Require guards protected pages. An unauthenticated browser request is
// redirected to the login page; a programmatic request gets 401.
func (m *SessionMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sess, token := m.resolve(w, r)
		if user == nil {
			if IsAJAX(r) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Unauthorized",
				})
				return
			}
			http.Redirect(w, r, LoginPage, http.StatusFound)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, sess)
		ctx = context.WithValue(ctx, SessionTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Load is the best-effort flavor: it injects the user when present and
// passes the request through either way.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, sess, token := m.resolve(w, r)
		if user == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UserContextKey, user)
		ctx = context.WithValue(ctx, SessionContextKey, sess)
		ctx = context.WithValue(ctx, SessionTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve finds the current user via the session cookie, or restores a
// session from the remember-me cookie. A session whose record is gone
// is destroyed.
func (m *SessionMiddleware) resolve(w http.ResponseWriter, r *http.Request) (*model.User, *model.Session, string) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if sess := m.sessions.Lookup(cookie.Value); sess != nil {
			user, err := m.accounts.GetProfile(r.Context(), sess.UserID)
			if err != nil {
				log.Error().Err(err).Msg("session middleware: store error")
				return nil, nil, ""
			}
			if user == nil {
				m.sessions.Destroy(cookie.Value)
				ClearSessionCookie(w, SessionCookie)
				return nil, nil, ""
			}
			return user, sess, cookie.Value
		}
	}

	cookie, err := r.Cookie(RememberMeCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil, ""
	}

	user, token, err := m.accounts.RestoreFromRemember(r.Context(), cookie.Value)
	if err != nil {
		log.Error().Err(err).Msg("session middleware: remember-me restoration failed")
		return nil, nil, ""
	}
	if user == nil {
		return nil, nil, ""
	}

	SetSessionCookie(w, SessionCookie, token, m.ttl)
	return user, m.sessions.Lookup(token), token
}

func SetSessionCookie(w http.ResponseWriter, name, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// SetRememberMeCookie mints the 30-day remember-me cookie. The front-end
// reads it, so it stays script-visible.
func SetRememberMeCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     RememberMeCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(config.RememberMeWindow.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// IsAJAX reports whether the request declared itself programmatic.
func IsAJAX(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}
