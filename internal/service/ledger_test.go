package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/fx"
	"github.com/josh-kwaku/wallet-ledger/internal/store"
)

var testNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc      *LedgerService
	store    *store.Gateway
	sessions *auth.SessionManager
}

func setupLedger(t *testing.T) *testEnv {
	t.Helper()

	gw := store.NewGateway(store.NewFileBackend(filepath.Join(t.TempDir(), "db.json")))
	sessions, err := auth.NewSessionManager(auth.SessionConfig{TTL: time.Hour})
	require.NoError(t, err)

	svc := NewLedgerService(gw, sessions, fx.NewRateService(), bcrypt.MinCost)
	svc.SetClock(func() time.Time { return testNow })

	return &testEnv{svc: svc, store: gw, sessions: sessions}
}

func (e *testEnv) register(t *testing.T, email string) *AuthResult {
	t.Helper()

	res, err := e.svc.Register(context.Background(), RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) user(t *testing.T, email string) domain.User {
	t.Helper()

	var u domain.User
	require.NoError(t, e.store.View(context.Background(), func(c *domain.Collection) error {
		found := c.FindByEmail(email)
		require.NotNil(t, found)
		u = *found
		return nil
	}))
	return u
}

func (e *testEnv) seed(t *testing.T, u domain.User) {
	t.Helper()

	require.NoError(t, e.store.Update(context.Background(), func(c *domain.Collection) error {
		c.Users = append(c.Users, u)
		return nil
	}))
}

func balance(s *domain.State, code domain.Currency) string {
	for _, w := range s.Wallets {
		if w.Code == code {
			return w.Balance.String()
		}
	}
	return "missing"
}
