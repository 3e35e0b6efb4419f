package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"inventorypro/internal/domain"
)

// Session is one live terminal session. It owns the in-progress cart; a
// logged-in session also carries the operator's user id. Nothing here is
// persisted, a restart starts every terminal fresh.
type Session struct {
	Token     string
	UserID    uuid.UUID
	Cart      *domain.Cart
	ExpiresAt time.Time
}

// Authenticated reports whether a user has logged in on this session.
func (s *Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// SessionManager is the in-memory session registry. Safe for concurrent use.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewSessionManager creates a registry whose sessions expire after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create starts a new anonymous session with an empty cart.
func (m *SessionManager) Create() (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &Session{
		Token:     token,
		Cart:      domain.NewCart(),
		ExpiresAt: time.Now().Add(m.ttl),
	}

	m.mu.Lock()
	m.sessions[token] = session
	m.mu.Unlock()
	return session, nil
}

// Get returns the live session for a token, or nil if unknown or expired.
// Access extends the expiry (sliding window).
func (m *SessionManager) Get(token string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return nil
	}
	session.ExpiresAt = time.Now().Add(m.ttl)
	return session
}

// Login binds a user to the session.
func (m *SessionManager) Login(token string, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[token]; ok {
		session.UserID = userID
	}
}

// Delete ends a session. Deleting an unknown token is a no-op.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Sweep drops expired sessions. Call periodically from a background goroutine.
func (m *SessionManager) Sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	for token, session := range m.sessions {
		if now.After(session.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
