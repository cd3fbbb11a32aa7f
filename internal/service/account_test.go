package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/studentportal/portal-server-go/internal/credential"
	apperrors "github.com/studentportal/portal-server-go/internal/errors"
	"github.com/studentportal/portal-server-go/internal/model"
	"github.com/studentportal/portal-server-go/internal/repository"
	"github.com/studentportal/portal-server-go/internal/session"
)

// Mock repositories

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func newTestService(repo repository.UserRepository) *AccountService {
	return NewAccountService(repo, credential.NewHasher(bcrypt.MinCost), session.NewManager(time.Hour))
}

func validRegisterParams() RegisterParams {
	return RegisterParams{
		FirstName:       "Ann",
		LastName:        "Lee",
		Email:           "ann@x.edu",
		StudentID:       "S1",
		Phone:           "555",
		Password:        "longpass1",
		ConfirmPassword: "longpass1",
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Run("accumulates all failures in order", func(t *testing.T) {
		svc := newTestService(new(mockUserRepo))

		_, err := svc.Register(context.Background(), RegisterParams{})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
		assert.Equal(t,
			"First name is required. Last name is required. Email is required. "+
				"Student ID is required. Phone number is required. Password is required. "+
				"Please confirm your password",
			appErr.Message)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		svc := newTestService(new(mockUserRepo))
		params := validRegisterParams()
		params.Email = "ann@nodot"

		_, err := svc.Register(context.Background(), params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Please enter a valid email address")
	})

	t.Run("7 character password fails, 8 passes", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ann@x.edu").Return(nil, nil)
		repo.On("FindByStudentID", mock.Anything, "S1").Return(nil, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(&model.User{ID: "u1"}, nil)
		svc := newTestService(repo)

		short := validRegisterParams()
		short.Password = "seven77"
		short.ConfirmPassword = "seven77"
		_, err := svc.Register(context.Background(), short)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "8 characters")

		exact := validRegisterParams()
		exact.Password = "eight888"
		exact.ConfirmPassword = "eight888"
		_, err = svc.Register(context.Background(), exact)
		assert.NoError(t, err)
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		svc := newTestService(new(mockUserRepo))
		params := validRegisterParams()
		params.ConfirmPassword = "different1"

		_, err := svc.Register(context.Background(), params)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Passwords do not match")
	})
}

func TestRegister_Uniqueness(t *testing.T) {
	t.Run("rejects duplicate email without creating", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ann@x.edu").Return(&model.User{ID: "existing"}, nil)
		repo.On("FindByStudentID", mock.Anything, "S1").Return(nil, nil)
		svc := newTestService(repo)

		_, err := svc.Register(context.Background(), validRegisterParams())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDuplicateAccount, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects duplicate student id", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ann@x.edu").Return(nil, nil)
		repo.On("FindByStudentID", mock.Anything, "S1").Return(&model.User{ID: "existing"}, nil)
		svc := newTestService(repo)

		_, err := svc.Register(context.Background(), validRegisterParams())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeDuplicateAccount, apperrors.GetCode(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("uniqueness not checked until fields pass", func(t *testing.T) {
		repo := new(mockUserRepo)
		svc := newTestService(repo)

		params := validRegisterParams()
		params.Phone = ""
		_, err := svc.Register(context.Background(), params)
		require.Error(t, err)
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthenticate_Failures(t *testing.T) {
	t.Run("wrong password fails uniformly with no mutation", func(t *testing.T) {
		hasher := credential.NewHasher(bcrypt.MinCost)
		hash, err := hasher.Hash("longpass1")
		require.NoError(t, err)

		repo := new(mockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ann@x.edu").
			Return(&model.User{ID: "u1", Email: "ann@x.edu", PasswordHash: hash}, nil)
		svc := NewAccountService(repo, hasher, session.NewManager(time.Hour))

		_, err = svc.Authenticate(context.Background(), AuthParams{Email: "ann@x.edu", Password: "wrongpass"})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid email or password", appErr.Message)
		repo.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown email fails with the same message", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByEmail", mock.Anything, "ghost@x.edu").Return(nil, nil)
		svc := newTestService(repo)

		_, err := svc.Authenticate(context.Background(), AuthParams{Email: "ghost@x.edu", Password: "longpass1"})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})

	t.Run("validation failures accumulate", func(t *testing.T) {
		svc := newTestService(new(mockUserRepo))

		_, err := svc.Authenticate(context.Background(), AuthParams{})
		require.Error(t, err)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "Email is required. Password is required", appErr.Message)
	})
}

// The full register-then-login path runs against the real file-backed
// repository; the JSON store needs nothing but a temp dir.
func TestRegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(t.TempDir())
	sessions := session.NewManager(time.Hour)
	svc := NewAccountService(repo, credential.NewHasher(bcrypt.MinCost), sessions)

	user, err := svc.Register(ctx, validRegisterParams())
	require.NoError(t, err)
	assert.Nil(t, user.LastLogin)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	result, err := svc.Authenticate(ctx, AuthParams{Email: "ann@x.edu", Password: "longpass1", RememberMe: true})
	require.NoError(t, err)

	assert.Equal(t, "Ann Lee", result.User.DisplayName())
	assert.NotEmpty(t, result.SessionToken)
	assert.NotEmpty(t, result.RememberToken)

	s := sessions.Lookup(result.SessionToken)
	require.NotNil(t, s)
	assert.Equal(t, user.ID, s.UserID)

	// lastLogin updated, record count unchanged.
	users, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].LastLogin)
	assert.WithinDuration(t, time.Now(), *users[0].LastLogin, 5*time.Second)

	// Second registration with the same email is rejected and the store
	// gains no record.
	dup := validRegisterParams()
	dup.StudentID = "S2"
	_, err = svc.Register(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDuplicateAccount, apperrors.GetCode(err))

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestRestoreFromRemember(t *testing.T) {
	ctx := context.Background()

	t.Run("restores a session for a live record", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, "u1").
			Return(&model.User{ID: "u1", FirstName: "Ann", LastName: "Lee", Email: "ann@x.edu"}, nil)
		sessions := session.NewManager(time.Hour)
		svc := NewAccountService(repo, credential.NewHasher(bcrypt.MinCost), sessions)

		cookie := session.EncodeRememberToken("u1", time.Now())
		user, token, err := svc.RestoreFromRemember(ctx, cookie)
		require.NoError(t, err)
		require.NotNil(t, user)
		require.NotEmpty(t, token)

		s := sessions.Lookup(token)
		require.NotNil(t, s)
		assert.Equal(t, "Ann Lee", s.DisplayName)
	})

	t.Run("expired token restores nothing", func(t *testing.T) {
		svc := newTestService(new(mockUserRepo))

		cookie := session.EncodeRememberToken("u1", time.Now().Add(-31*24*time.Hour))
		user, token, err := svc.RestoreFromRemember(ctx, cookie)
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Empty(t, token)
	})

	t.Run("token for a deleted record restores nothing", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, "gone").Return(nil, nil)
		svc := newTestService(repo)

		cookie := session.EncodeRememberToken("gone", time.Now())
		user, token, err := svc.RestoreFromRemember(ctx, cookie)
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.Empty(t, token)
	})
}

func TestLogout(t *testing.T) {
	sessions := session.NewManager(time.Hour)
	svc := NewAccountService(new(mockUserRepo), credential.NewHasher(bcrypt.MinCost), sessions)

	token, err := sessions.Establish("u1", "ann@x.edu", "Ann Lee")
	require.NoError(t, err)

	svc.Logout(token)
	assert.Nil(t, sessions.Lookup(token))
}
