package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Error returns formatted string", func(t *testing.T) {
		err := New(ErrCodeNotFound, "User not found")
		assert.Equal(t, "NOT_FOUND: User not found", err.Error())
	})

	t.Run("Error with cause includes cause", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := Wrap(ErrCodeStoreIO, "Store error", cause)
		assert.Contains(t, err.Error(), "STORE_IO_ERROR")
		assert.Contains(t, err.Error(), "Store error")
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("WithCause adds cause to error", func(t *testing.T) {
		cause := errors.New("original error")
		err := New(ErrCodeInternal, "Something went wrong").WithCause(cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithDetails adds details to error", func(t *testing.T) {
		details := map[string]string{"field": "email", "reason": "invalid format"}
		err := New(ErrCodeValidation, "Validation failed").WithDetails(details)
		assert.Equal(t, details, err.Details)
	})
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name         string
		constructor  func() *AppError
		expectedCode ErrorCode
	}{
		{"Unauthorized", func() *AppError { return Unauthorized("test") }, ErrCodeUnauthorized},
		{"Authentication", func() *AppError { return Authentication() }, ErrCodeAuthentication},
		{"NotFound", func() *AppError { return NotFound("User") }, ErrCodeNotFound},
		{"DuplicateAccount", func() *AppError { return DuplicateAccount() }, ErrCodeDuplicateAccount},
		{"RateLimitExceeded", func() *AppError { return RateLimitExceeded() }, ErrCodeRateLimitExceeded},
		{"Internal", func() *AppError { return Internal("test") }, ErrCodeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.constructor()
			assert.Equal(t, tc.expectedCode, err.Code)
			assert.NotEmpty(t, err.Message)
		})
	}
}

func TestValidation(t *testing.T) {
	t.Run("joins failures in order", func(t *testing.T) {
		err := Validation([]string{"First name is required", "Email is required"})
		assert.Equal(t, ErrCodeValidation, err.Code)
		assert.Equal(t, "First name is required. Email is required", err.Message)
	})
}

func TestAuthentication(t *testing.T) {
	t.Run("message is uniform", func(t *testing.T) {
		err := Authentication()
		assert.Equal(t, "Invalid email or password", err.Message)
	})
}

func TestStoreIO(t *testing.T) {
	t.Run("wraps store error", func(t *testing.T) {
		cause := errors.New("disk full")
		err := StoreIO("Failed to save user data. Please try again.", cause)
		assert.Equal(t, ErrCodeStoreIO, err.Code)
		assert.Equal(t, cause, err.Unwrap())
	})
}

func TestGetCode(t *testing.T) {
	t.Run("returns code for AppError", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, GetCode(NotFound("User")))
	})

	t.Run("returns internal for plain error", func(t *testing.T) {
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})

	t.Run("finds AppError through wrapping", func(t *testing.T) {
		assert.True(t, IsAppError(Wrap(ErrCodeStoreIO, "io", errors.New("x"))))
		assert.False(t, IsAppError(errors.New("x")))
	})
}
