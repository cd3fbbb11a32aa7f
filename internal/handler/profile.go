package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studentportal/portal-server-go/internal/middleware"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/session"
)

type ProfileHandler struct {
	sessions *session.Manager
}

func NewProfileHandler(sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{sessions: sessions}
}

func (h *ProfileHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Profile)
	return r
}

// GET /profile — the middleware guarantees a user in context.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	payload := map[string]any{
		"user": map[string]any{
			"id":               user.ID,
			"firstName":        user.FirstName,
			"lastName":         user.LastName,
			"displayName":      user.DisplayName(),
			"email":            user.Email,
			"studentId":        user.StudentID,
			"phone":            user.Phone,
			"registrationDate": user.RegistrationDate.Format("January 2, 2006"),
			"lastLogin":        formatTime(user.LastLogin),
		},
	}

	token := middleware.GetSessionToken(r.Context())
	if msg, ok := h.sessions.TakeFlash(token, model.FlashSuccess); ok {
		payload["successMessage"] = msg
	}
	if s := middleware.GetSession(r.Context()); s != nil {
		payload["loginTime"] = s.LoginTime.Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, payload)
}
