package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/store"
)

const contactsFile = "contacts.json"

type ContactRepository interface {
	Create(ctx context.Context, params model.CreateContactParams) (*model.ContactSubmission, error)
	ListByUserID(ctx context.Context, userID string) ([]model.ContactSubmission, error)
	CountAll(ctx context.Context) (int, error)
}

type contactRepo struct {
	collection *store.Collection[model.ContactSubmission]
}

func NewContactRepository(dataDir string) ContactRepository {
	return &contactRepo{collection: store.NewCollection[model.ContactSubmission](dataDir, contactsFile)}
}

func (r *contactRepo) Create(ctx context.Context, params model.CreateContactParams) (*model.ContactSubmission, error) {
	submission := model.ContactSubmission{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		Name:           params.Name,
		Email:          params.Email,
		Subject:        params.Subject,
		Priority:       params.Priority,
		Message:        params.Message,
		SubmissionDate: time.Now(),
		Status:         model.ContactStatusPending,
	}
	if err := r.collection.Append(ctx, submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *contactRepo) ListByUserID(ctx context.Context, userID string) ([]model.ContactSubmission, error) {
	all, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	submissions := []model.ContactSubmission{}
	for _, s := range all {
		if s.UserID == userID {
			submissions = append(submissions, s)
		}
	}
	return submissions, nil
}

func (r *contactRepo) CountAll(ctx context.Context) (int, error) {
	all, err := r.collection.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}
