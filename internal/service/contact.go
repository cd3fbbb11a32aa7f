package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/studentportal/portal-server-go/internal/config"
	apperrors "github.com/studentportal/portal-server-go/internal/errors"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/repository"
)

type ContactService struct {
	contactRepo repository.ContactRepository
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

type SubmitContactParams struct {
	UserID   string
	Name     string
	Email    string
	Subject  string
	Priority string
	Message  string
}

func (p *SubmitContactParams) sanitize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Subject = strings.TrimSpace(p.Subject)
	p.Priority = strings.TrimSpace(p.Priority)
	p.Message = strings.TrimSpace(p.Message)
}

// Submit validates and stores one contact request for a logged-in user.
func (s *ContactService) Submit(ctx context.Context, params SubmitContactParams) (*model.ContactSubmission, error) {
	params.sanitize()

	v := &validator{}
	v.requireField(params.Name, "Name is required")
	v.requireEmail(params.Email)
	v.requireField(params.Subject, "Subject is required")
	v.requireField(params.Priority, "Priority level is required")
	if v.requireField(params.Message, "Message is required") && len(params.Message) < config.MinMessageLength {
		v.fail(fmt.Sprintf("Message must be at least %d characters long", config.MinMessageLength))
	}
	if !v.ok() {
		return nil, apperrors.Validation(v.failures)
	}

	submission, err := s.contactRepo.Create(ctx, model.CreateContactParams{
		UserID:   params.UserID,
		Name:     params.Name,
		Email:    params.Email,
		Subject:  params.Subject,
		Priority: params.Priority,
		Message:  params.Message,
	})
	if err != nil {
		return nil, apperrors.StoreIO("Failed to save your message. Please try again.", err)
	}

	log.Info().Str("email", submission.Email).Str("userId", submission.UserID).Msg("contact form submitted")

	return submission, nil
}

// History lists the user's own submissions, oldest first.
func (s *ContactService) History(ctx context.Context, userID string) ([]model.ContactSubmission, error) {
	submissions, err := s.contactRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.StoreIO("Failed to load your messages. Please try again.", err)
	}
	return submissions, nil
}
