// Package session holds server-side login state and the remember-me
// token codec. Sessions live in process memory keyed by an opaque token
// the client carries in a cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/studentportal/portal-server-go/internal/model"
)

const tokenBytes = 32

func generateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	ttl      time.Duration
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*model.Session),
		ttl:      ttl,
	}
}

// Establish creates a new session for the user and returns its token.
func (m *Manager) Establish(userID, email, displayName string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	m.mu.Lock()
	m.sessions[token] = &model.Session{
		UserID:      userID,
		Email:       email,
		DisplayName: displayName,
		LoggedIn:    true,
		LoginTime:   now,
		ExpiresAt:   now.Add(m.ttl),
	}
	m.mu.Unlock()

	return token, nil
}

// Lookup returns a snapshot of the session for token, or nil when the
// token is unknown or the session has expired. Expired sessions are
// evicted on sight.
func (m *Manager) Lookup(token string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil
	}

	snapshot := *s
	return &snapshot
}

// Destroy clears all state for token.
func (m *Manager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// SetFlash stores a one-shot message on the session, if it exists.
func (m *Manager) SetFlash(token string, kind model.FlashKind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[token]; ok {
		s.SetFlash(kind, message)
	}
}

// TakeFlash returns and clears the flash message of the given kind.
func (m *Manager) TakeFlash(token string, kind model.FlashKind) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	return s.TakeFlash(kind)
}

// Count returns the number of live sessions, expired included until swept.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// DeleteExpired sweeps expired sessions. Signature matches the cleanup
// job contract.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var removed int64
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}
