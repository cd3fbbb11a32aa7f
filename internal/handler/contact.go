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
)

const contactPage = "/contact.html"

type ContactHandler struct {
	contacts *service.ContactService
}

func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	r.Get("/history", h.History)
	return r
}

// POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := r.ParseForm(); err != nil {
		formFailure(w, r, apperrors.Validation([]string{"Invalid form data"}), contactPage)
		return
	}

	submission, err := h.contacts.Submit(r.Context(), service.SubmitContactParams{
		UserID:   user.ID,
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Subject:  r.PostFormValue("subject"),
		Priority: r.PostFormValue("priority"),
		Message:  r.PostFormValue("message"),
	})
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeStoreIO {
			log.Error().Err(err).Msg("contact submission failed")
		}
		formFailure(w, r, err, contactPage)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventContactSubmit, UserID: submission.UserID})

	respondForm(w, r, http.StatusOK, httputil.FormResult{
		Success: true,
		Message: "Thank you for contacting us! We'll get back to you soon.",
	}, contactPage)
}

// GET /contact/history
func (h *ContactHandler) History(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	submissions, err := h.contacts.History(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load contact history")
		httputil.WriteError(w, err)
		return
	}

	formatted := make([]map[string]any, len(submissions))
	for i, s := range submissions {
		formatted[i] = formatSubmission(s)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": formatted,
		"total":       len(submissions),
	})
}

func formatSubmission(s model.ContactSubmission) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"subject":        s.Subject,
		"priority":       s.Priority,
		"message":        s.Message,
		"status":         string(s.Status),
		"submissionDate": s.SubmissionDate.Format(time.RFC3339),
	}
}
