package handler

import (
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/studentportal/portal-server-go/internal/errors"
	"github.com/studentportal/portal-server-go/internal/httputil"
	"github.com/studentportal/portal-server-go/internal/middleware"
	"github.com/studentportal/portal-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

// Flash cookies carry one-shot messages across a redirect for visitors
// who have no session yet (registration and login failures).
const (
	flashSuccessCookie = "portal_flash_success"
	flashErrorCookie   = "portal_flash_error"
)

func flashCookieName(kind model.FlashKind) string {
	if kind == model.FlashSuccess {
		return flashSuccessCookie
	}
	return flashErrorCookie
}

func setFlashCookie(w http.ResponseWriter, kind model.FlashKind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName(kind),
		Value:    url.QueryEscape(message),
		Path:     "/",
		MaxAge:   60,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlashCookie(w http.ResponseWriter, r *http.Request, kind model.FlashKind) (string, bool) {
	cookie, err := r.Cookie(flashCookieName(kind))
	if err != nil || cookie.Value == "" {
		return "", false
	}
	http.SetCookie(w, &http.Cookie{
		Name:   flashCookieName(kind),
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	message, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return message, true
}

// respondForm finishes a form POST. Programmatic requests get the
// {success, message, redirect?} JSON body; browser form posts get a
// flash cookie and a redirect to the next page.
func respondForm(w http.ResponseWriter, r *http.Request, status int, result httputil.FormResult, failRedirect string) {
	if middleware.IsAJAX(r) {
		writeJSON(w, status, result)
		return
	}

	if result.Success {
		setFlashCookie(w, model.FlashSuccess, result.Message)
		target := result.Redirect
		if target == "" {
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	setFlashCookie(w, model.FlashError, result.Message)
	http.Redirect(w, r, failRedirect, http.StatusFound)
}

// formFailure maps a service error onto the form response contract.
func formFailure(w http.ResponseWriter, r *http.Request, err error, failRedirect string) {
	appErr := errToApp(err)
	respondForm(w, r, httputil.StatusFromCode(appErr.Code), httputil.FormResult{
		Success: false,
		Message: appErr.Message,
	}, failRedirect)
}

func errToApp(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.Internal("An unexpected error occurred")
}
