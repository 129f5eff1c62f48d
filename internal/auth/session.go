package auth

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	LastSeen  time.Time
	ExpiresAt time.Time
}

type SessionConfig struct {
	// Secret signs tokens. A random one is generated when empty, which is
	// fine because sessions never outlive the process anyway.
	Secret      []byte
	TTL         time.Duration
	IdleTimeout time.Duration
}

// SessionManager maps bearer tokens to account ids. It is memory resident:
// a restart drops every session.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	secret   []byte
	ttl      time.Duration
	idle     time.Duration
	now      func() time.Time
}

func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	secret := cfg.Secret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("NewSessionManager: generate secret: %w", err)
		}
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("NewSessionManager: ttl must be positive")
	}

	return &SessionManager{
		sessions: make(map[string]*Session),
		secret:   secret,
		ttl:      cfg.TTL,
		idle:     cfg.IdleTimeout,
		now:      time.Now,
	}, nil
}

// SetClock replaces the time source. Tests only.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *SessionManager) Create(userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		LastSeen:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	token, err := GenerateToken(s.ID, userID, m.secret, now, m.ttl)
	if err != nil {
		return "", fmt.Errorf("Create: %w", err)
	}

	m.sessions[s.ID] = s
	return token, nil
}

// Resolve returns the account id behind token. Unknown, tampered, expired
// and idle tokens all fail with the same domain.ErrUnauthenticated.
func (m *SessionManager) Resolve(token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	claims, err := ValidateToken(token, m.secret, now)
	if err != nil {
		return "", domain.ErrUnauthenticated
	}

	s, ok := m.sessions[claims.SessionID]
	if !ok || s.UserID != claims.UserID {
		return "", domain.ErrUnauthenticated
	}
	if m.expired(s, now) {
		delete(m.sessions, s.ID)
		return "", domain.ErrUnauthenticated
	}

	s.LastSeen = now
	return s.UserID, nil
}

// Revoke never fails; an unknown token is a no-op.
func (m *SessionManager) Revoke(token string) {
	claims, err := ParseTokenIgnoringExpiry(token, m.secret)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[claims.SessionID]; ok && s.UserID == claims.UserID {
		delete(m.sessions, s.ID)
	}
}

func (m *SessionManager) RevokeAll(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Sweep drops expired and idle sessions and reports how many were removed.
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *SessionManager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) expired(s *Session, now time.Time) bool {
	if !now.Before(s.ExpiresAt) {
		return true
	}
	return m.idle > 0 && now.Sub(s.LastSeen) >= m.idle
}
