package model

import (
	"time"
)

// FlashKind selects one of the two one-shot message slots on a session.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Session is server-side login state, keyed by an opaque token the
// client holds in a cookie. Flash slots are read-once.
type Session struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	LoggedIn    bool      `json:"loggedIn"`
	LoginTime   time.Time `json:"loginTime"`
	ExpiresAt   time.Time `json:"expiresAt"`

	successMessage string
	errorMessage   string
}

// SetFlash stores a one-shot message on the session.
func (s *Session) SetFlash(kind FlashKind, message string) {
	switch kind {
	case FlashSuccess:
		s.successMessage = message
	case FlashError:
		s.errorMessage = message
	}
}

// TakeFlash returns and clears the message for kind.
func (s *Session) TakeFlash(kind FlashKind) (string, bool) {
	var msg string
	switch kind {
	case FlashSuccess:
		msg = s.successMessage
		s.successMessage = ""
	case FlashError:
		msg = s.errorMessage
		s.errorMessage = ""
	}
	return msg, msg != ""
}
