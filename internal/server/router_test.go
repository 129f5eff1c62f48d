package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/domain"
	"github.com/josh-kwaku/wallet-ledger/internal/fx"
	"github.com/josh-kwaku/wallet-ledger/internal/idempotency"
	"github.com/josh-kwaku/wallet-ledger/internal/middleware"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
	"github.com/josh-kwaku/wallet-ledger/internal/store"
)

type stateEnvelope struct {
	Token string        `json:"token"`
	State *domain.State `json:"state"`
}

func newTestServer(t *testing.T, burst int) *httptest.Server {
	t.Helper()

	gw := store.NewGateway(store.NewFileBackend(filepath.Join(t.TempDir(), "db.json")))
	sessions, err := auth.NewSessionManager(auth.SessionConfig{TTL: time.Hour, IdleTimeout: time.Hour})
	require.NoError(t, err)
	rates := fx.NewRateService()

	srv := httptest.NewServer(NewRouter(Deps{
		Ledger:      service.NewLedgerService(gw, sessions, rates, bcrypt.MinCost),
		Sessions:    sessions,
		Store:       gw,
		FX:          rates,
		Idempotency: idempotency.NewCache(time.Hour),
		AuthLimiter: middleware.NewRateLimiter(1, burst, time.Minute),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func eurBalance(s *domain.State) string {
	for _, w := range s.Wallets {
		if w.Code == domain.CurrencyEUR {
			return w.Balance.String()
		}
	}
	return "missing"
}

func TestRouter_AccountLifecycle(t *testing.T) {
	srv := newTestServer(t, 10)

	resp := call(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Ada Lovelace", "email": "ada@example.com", "password": "engine42",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reg := decode[stateEnvelope](t, resp)
	require.NotEmpty(t, reg.Token)
	assert.Equal(t, "500", eurBalance(reg.State))

	transfer := map[string]any{"recipient": "Bob", "iban": "FR7630006000011234567890189", "amount": 100}
	key := map[string]string{"Idempotency-Key": "tx-1"}

	first := call(t, srv, http.MethodPost, "/api/transfer", reg.Token, transfer, key)
	require.Equal(t, http.StatusOK, first.StatusCode)
	second := call(t, srv, http.MethodPost, "/api/transfer", reg.Token, transfer, key)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("X-Idempotent-Replayed"))

	resp = call(t, srv, http.MethodGet, "/api/dashboard", reg.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode[stateEnvelope](t, resp)
	assert.Equal(t, "400", eurBalance(dash.State), "replayed transfer must not debit twice")

	resp = call(t, srv, http.MethodPost, "/api/logout", reg.Token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/api/dashboard", reg.Token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ada@example.com", "password": "engine42",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[stateEnvelope](t, resp)

	resp = call(t, srv, http.MethodDelete, "/api/account", login.Token, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"email": "ada@example.com", "password": "engine42",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_RejectsOversizedAmounts(t *testing.T) {
	srv := newTestServer(t, 10)

	resp := call(t, srv, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Big Spender", "email": "big@example.com", "password": "engine42",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reg := decode[stateEnvelope](t, resp)

	for _, path := range []string{"/api/action/topup", "/api/action/convert", "/api/transfer"} {
		t.Run(path, func(t *testing.T) {
			body := json.RawMessage(`{"amount":1e5000000,"recipient":"Bob","iban":"FR7630006000011234567890189"}`)
			resp := call(t, srv, http.MethodPost, path, reg.Token, body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", decode[map[string]any](t, resp)["code"])
		})
	}

	resp = call(t, srv, http.MethodGet, "/api/dashboard", reg.Token, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "500", eurBalance(decode[stateEnvelope](t, resp).State))
}

func TestRouter_ProtectedRoutesRequireSession(t *testing.T) {
	srv := newTestServer(t, 10)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/insights"},
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transfer"},
		{http.MethodPost, "/api/action/convert"},
		{http.MethodPost, "/api/action/topup"},
		{http.MethodPost, "/api/card/toggle"},
		{http.MethodPost, "/api/card/virtual"},
		{http.MethodDelete, "/api/account"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			resp := call(t, srv, rt.method, rt.path, "bogus", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			body := decode[map[string]any](t, resp)
			assert.Equal(t, "UNAUTHENTICATED", body["code"])
		})
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	srv := newTestServer(t, 10)

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/docs", http.StatusOK},
		{"/docs/openapi.yaml", http.StatusOK},
		{"/api/rates", http.StatusOK},
		{"/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := call(t, srv, http.MethodGet, tt.path, "", nil, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
		})
	}
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, 2)

	creds := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for range 2 {
		resp := call(t, srv, http.MethodPost, "/api/login", "", creds, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := call(t, srv, http.MethodPost, "/api/login", "", creds, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
