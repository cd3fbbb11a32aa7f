package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studentportal/portal-server-go/internal/config"
	"github.com/studentportal/portal-server-go/internal/credential"
	apperrors "github.com/studentportal/portal-server-go/internal/errors"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/repository"
	"github.com/studentportal/portal-server-go/internal/session"
)

// AccountService orchestrates registration and authentication over the
// user store, the credential hasher, and the session manager.
type AccountService struct {
	userRepo repository.UserRepository
	hasher   *credential.Hasher
	sessions *session.Manager
}

func NewAccountService(
	userRepo repository.UserRepository,
	hasher *credential.Hasher,
	sessions *session.Manager,
) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		hasher:   hasher,
		sessions: sessions,
	}
}

type RegisterParams struct {
	FirstName       string
	LastName        string
	Email           string
	StudentID       string
	Phone           string
	Password        string
	ConfirmPassword string
}

func (p *RegisterParams) sanitize() {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.TrimSpace(p.Email)
	p.StudentID = strings.TrimSpace(p.StudentID)
	p.Phone = strings.TrimSpace(p.Phone)
}

// Register validates the whole form, checks uniqueness, hashes the
// password, and appends the new record. Field failures accumulate;
// uniqueness is only checked once every field passes.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	params.sanitize()

	v := &validator{}
	v.requireField(params.FirstName, "First name is required")
	v.requireField(params.LastName, "Last name is required")
	v.requireEmail(params.Email)
	v.requireField(params.StudentID, "Student ID is required")
	v.requireField(params.Phone, "Phone number is required")
	if v.requireField(params.Password, "Password is required") && len(params.Password) < config.MinPasswordLength {
		v.fail(fmt.Sprintf("Password must be at least %d characters long", config.MinPasswordLength))
	}
	if v.requireField(params.ConfirmPassword, "Please confirm your password") && params.Password != params.ConfirmPassword {
		v.fail("Passwords do not match")
	}
	if !v.ok() {
		return nil, apperrors.Validation(v.failures)
	}

	byEmail, err := s.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, apperrors.StoreIO("Failed to save user data. Please try again.", err)
	}
	byStudentID, err := s.userRepo.FindByStudentID(ctx, params.StudentID)
	if err != nil {
		return nil, apperrors.StoreIO("Failed to save user data. Please try again.", err)
	}
	if byEmail != nil || byStudentID != nil {
		return nil, apperrors.DuplicateAccount()
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to process password").WithCause(err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		StudentID:    params.StudentID,
		Phone:        params.Phone,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, apperrors.StoreIO("Failed to save user data. Please try again.", err)
	}

	log.Info().Str("email", user.Email).Str("userId", user.ID).Msg("new user registered")

	return user, nil
}

type AuthParams struct {
	Email      string
	Password   string
	RememberMe bool
}

// AuthResult carries everything the handler needs to finish a login:
// the matched user, the session token for the cookie, and, when
// remember-me was requested, a remember token.
type AuthResult struct {
	User          *model.User
	SessionToken  string
	RememberToken string
}

// Authenticate verifies credentials and establishes a session. A missing
// record and a bad password fail identically.
func (s *AccountService) Authenticate(ctx context.Context, params AuthParams) (*AuthResult, error) {
	params.Email = strings.TrimSpace(params.Email)

	v := &validator{}
	v.requireEmail(params.Email)
	v.requireField(params.Password, "Password is required")
	if !v.ok() {
		return nil, apperrors.Validation(v.failures)
	}

	user, err := s.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, apperrors.StoreIO("Login failed. Please try again.", err)
	}
	if user == nil || !s.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, apperrors.Authentication()
	}

	token, err := s.sessions.Establish(user.ID, user.Email, user.DisplayName())
	if err != nil {
		return nil, apperrors.Internal("Failed to establish session").WithCause(err)
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// The login itself succeeded; losing the timestamp is not
		// worth failing the request over.
		log.Error().Err(err).Str("userId", user.ID).Msg("failed to update last login")
	} else {
		user.LastLogin = &now
	}

	result := &AuthResult{User: user, SessionToken: token}
	if params.RememberMe {
		result.RememberToken = session.EncodeRememberToken(user.ID, now)
	}

	log.Info().Str("email", user.Email).Str("userId", user.ID).Msg("user logged in")

	return result, nil
}

// RestoreFromRemember re-establishes a session from a remember-me cookie
// value. Returns (nil, "", nil) when the token does not resolve to a
// live record.
func (s *AccountService) RestoreFromRemember(ctx context.Context, cookieValue string) (*model.User, string, error) {
	userID, ok := session.ResolveRememberToken(cookieValue)
	if !ok {
		return nil, "", nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, "", apperrors.StoreIO("Login failed. Please try again.", err)
	}
	if user == nil {
		return nil, "", nil
	}

	token, err := s.sessions.Establish(user.ID, user.Email, user.DisplayName())
	if err != nil {
		return nil, "", apperrors.Internal("Failed to establish session").WithCause(err)
	}

	log.Info().Str("userId", user.ID).Msg("session restored from remember-me cookie")

	return user, token, nil
}

// GetProfile returns the record behind a session's user ID. A nil user
// means the record is gone and the session must be destroyed.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.StoreIO("Failed to load profile. Please try again.", err)
	}
	return user, nil
}

// Logout destroys the session for token.
func (s *AccountService) Logout(token string) {
	s.sessions.Destroy(token)
	log.Info().Msg("user logged out")
}
