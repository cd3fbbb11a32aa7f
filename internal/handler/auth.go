package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/studentportal/portal-server-go/internal/audit"
	apperrors "github.com/studentportal/portal-server-go/internal/errors"
	"github.com/studentportal/portal-server-go/internal/httputil"
	"github.com/studentportal/portal-server-go/internal/middleware"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/service"
	"github.com/studentportal/portal-server-go/internal/session"
)

const (
	registerPage = "/register.html"
	homePage     = "/index.html"
)

type AuthHandler struct {
	accounts   *service.AccountService
	sessions   *session.Manager
	sessionTTL time.Duration
}

func NewAuthHandler(accounts *service.AccountService, sessions *session.Manager, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
	}
}

// Register the auth endpoints on the root router; login gets the
// per-IP attempt limiter.
func (h *AuthHandler) Mount(r chi.Router, loginLimiter *middleware.LoginRateLimiter) {
	r.Post("/register", h.Register)
	r.With(loginLimiter.Handler).Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Get("/flash", h.Flash)
}

// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formFailure(w, r, apperrors.Validation([]string{"Invalid form data"}), registerPage)
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterParams{
		FirstName:       r.PostFormValue("firstName"),
		LastName:        r.PostFormValue("lastName"),
		Email:           r.PostFormValue("email"),
		StudentID:       r.PostFormValue("studentId"),
		Phone:           r.PostFormValue("phone"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeStoreIO {
			log.Error().Err(err).Msg("registration failed")
		}
		formFailure(w, r, err, registerPage)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventAccountCreate, UserID: user.ID})

	respondForm(w, r, http.StatusOK, httputil.FormResult{
		Success:  true,
		Message:  "Registration successful! You can now log in.",
		Redirect: middleware.LoginPage,
	}, registerPage)
}

// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		formFailure(w, r, apperrors.Validation([]string{"Invalid form data"}), middleware.LoginPage)
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), service.AuthParams{
		Email:      r.PostFormValue("email"),
		Password:   r.PostFormValue("password"),
		RememberMe: r.PostFormValue("rememberMe") != "",
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeAuthentication {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure})
		}
		formFailure(w, r, err, middleware.LoginPage)
		return
	}

	middleware.SetSessionCookie(w, middleware.SessionCookie, result.SessionToken, h.sessionTTL)
	if result.RememberToken != "" {
		middleware.SetRememberMeCookie(w, result.RememberToken)
	}

	message := "Login successful! Welcome back, " + result.User.FirstName + "."
	h.sessions.SetFlash(result.SessionToken, model.FlashSuccess, message)

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: result.User.ID})

	respondForm(w, r, http.StatusOK, httputil.FormResult{
		Success:  true,
		Message:  message,
		Redirect: "/profile",
	}, middleware.LoginPage)
}

// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if s := h.sessions.Lookup(cookie.Value); s != nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: s.UserID})
		}
		h.accounts.Logout(cookie.Value)
	}

	middleware.ClearSessionCookie(w, middleware.SessionCookie)
	middleware.ClearSessionCookie(w, middleware.RememberMeCookie)

	if middleware.IsAJAX(r) {
		writeJSON(w, http.StatusOK, httputil.FormResult{Success: true, Message: "Logged out"})
		return
	}
	http.Redirect(w, r, homePage, http.StatusFound)
}

// GET /flash returns and clears pending one-shot messages so the static
// front-end can surface them after a redirect.
func (h *AuthHandler) Flash(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}

	if msg, ok := takeFlashCookie(w, r, model.FlashSuccess); ok {
		payload["successMessage"] = msg
	}
	if msg, ok := takeFlashCookie(w, r, model.FlashError); ok {
		payload["errorMessage"] = msg
	}

	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if msg, ok := h.sessions.TakeFlash(cookie.Value, model.FlashSuccess); ok {
			payload["successMessage"] = msg
		}
		if msg, ok := h.sessions.TakeFlash(cookie.Value, model.FlashError); ok {
			payload["errorMessage"] = msg
		}
	}

	writeJSON(w, http.StatusOK, payload)
}
