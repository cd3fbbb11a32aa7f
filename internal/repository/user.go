package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/store"
)

const usersFile = "users.json"

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByStudentID(ctx context.Context, studentID string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type userRepo struct {
	collection *store.Collection[model.User]
}

func NewUserRepository(dataDir string) UserRepository {
	return &userRepo{collection: store.NewCollection[model.User](dataDir, usersFile)}
}

// Find* return (nil, nil) when no record matches; a missing row is not
// an error condition.

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(ctx, func(u *model.User) bool { return u.ID == id })
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	// Exact, case-sensitive match; first hit in collection order wins.
	return r.find(ctx, func(u *model.User) bool { return u.Email == email })
}

func (r *userRepo) FindByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	return r.find(ctx, func(u *model.User) bool { return u.StudentID == studentID })
}

func (r *userRepo) find(ctx context.Context, match func(*model.User) bool) (*model.User, error) {
	users, err := r.collection.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(&users[i]) {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	return r.collection.Load(ctx)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	user := model.User{
		ID:               uuid.NewString(),
		FirstName:        params.FirstName,
		LastName:         params.LastName,
		Email:            params.Email,
		StudentID:        params.StudentID,
		Phone:            params.Phone,
		PasswordHash:     params.PasswordHash,
		RegistrationDate: time.Now(),
		LastLogin:        nil,
	}
	if err := r.collection.Append(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.collection.Update(ctx, func(users []model.User) ([]model.User, bool, error) {
		for i := range users {
			if users[i].ID == id {
				users[i].LastLogin = &at
				return users, true, nil
			}
		}
		return users, false, nil
	})
}
