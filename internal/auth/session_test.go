package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/wallet-ledger/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, ttl, idle time.Duration) (*SessionManager, *fakeClock) {
	t.Helper()
	m, err := NewSessionManager(SessionConfig{Secret: testSecret, TTL: ttl, IdleTimeout: idle})
	require.NoError(t, err)
	clock := &fakeClock{now: time.Now()}
	m.SetClock(clock.Now)
	return m, clock
}

func TestSessionManager_CreateResolve(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)

	token, err := m.Create("u_1")
	require.NoError(t, err)

	userID, err := m.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "u_1", userID)
}

func TestSessionManager_MultipleSessionsPerUser(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)

	a, err := m.Create("u_1")
	require.NoError(t, err)
	b, err := m.Create("u_1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, m.Active())

	m.Revoke(a)
	_, err = m.Resolve(a)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)

	userID, err := m.Resolve(b)
	require.NoError(t, err)
	assert.Equal(t, "u_1", userID)
}

func TestSessionManager_ResolveFailures(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)
	other, err := NewSessionManager(SessionConfig{TTL: time.Hour})
	require.NoError(t, err)
	foreign, err := other.Create("u_1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "abc"},
		{name: "signed by another process", token: foreign},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Resolve(tc.token)
			require.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestSessionManager_Expiry(t *testing.T) {
	m, clock := newTestManager(t, time.Hour, 0)

	token, err := m.Create("u_1")
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)
	_, err = m.Resolve(token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSessionManager_IdleTimeout(t *testing.T) {
	m, clock := newTestManager(t, 24*time.Hour, 30*time.Minute)

	token, err := m.Create("u_1")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	_, err = m.Resolve(token)
	require.NoError(t, err, "activity inside the window keeps the session alive")

	clock.Advance(20 * time.Minute)
	_, err = m.Resolve(token)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	_, err = m.Resolve(token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, 0, m.Active())
}

func TestSessionManager_RevokeAll(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)

	a, _ := m.Create("u_1")
	b, _ := m.Create("u_1")
	c, _ := m.Create("u_2")

	assert.Equal(t, 2, m.RevokeAll("u_1"))

	for _, tok := range []string{a, b} {
		_, err := m.Resolve(tok)
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	}
	userID, err := m.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, "u_2", userID)
}

func TestSessionManager_RevokeUnknownIsNoop(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)
	m.Revoke("")
	m.Revoke("not-a-token")
	assert.Equal(t, 0, m.Active())
}

func TestSessionManager_Sweep(t *testing.T) {
	m, clock := newTestManager(t, time.Hour, 0)

	_, _ = m.Create("u_1")
	clock.Advance(30 * time.Minute)
	fresh, _ := m.Create("u_2")

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Active())

	userID, err := m.Resolve(fresh)
	require.NoError(t, err)
	assert.Equal(t, "u_2", userID)
}

func TestSessionManager_ConcurrentCreate(t *testing.T) {
	m, _ := newTestManager(t, time.Hour, 0)

	var wg sync.WaitGroup
	tokens := make([]string, 50)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := m.Create("u_1")
			assert.NoError(t, err)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		assert.False(t, seen[tok], "tokens must be unique")
		seen[tok] = true
	}
	assert.Equal(t, 50, m.Active())
}
