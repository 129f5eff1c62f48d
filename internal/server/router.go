package server

import (
	"net/http"

	"github.com/josh-kwaku/wallet-ledger/api"
	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/fx"
	"github.com/josh-kwaku/wallet-ledger/internal/handler"
	"github.com/josh-kwaku/wallet-ledger/internal/idempotency"
	"github.com/josh-kwaku/wallet-ledger/internal/metrics"
	"github.com/josh-kwaku/wallet-ledger/internal/middleware"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
	"github.com/josh-kwaku/wallet-ledger/internal/store"
)

type Deps struct {
	Ledger      *service.LedgerService
	Sessions    *auth.SessionManager
	Store       *store.Gateway
	FX          *fx.RateService
	Idempotency *idempotency.Cache
	AuthLimiter *middleware.RateLimiter
}

// NewRouter wires every route. The metrics wrapper sits directly on the mux
// so it can read the matched pattern.
func NewRouter(d Deps) http.Handler {
	authH := handler.NewAuthHandler(d.Ledger)
	accountH := handler.NewAccountHandler(d.Ledger)
	ledgerH := handler.NewLedgerHandler(d.Ledger)
	cardH := handler.NewCardHandler(d.Ledger)
	healthH := handler.NewHealthHandler(d.Store)
	fxH := handler.NewFXHandler(d.FX)
	docsH := handler.NewDocsHandler(api.OpenAPI)

	requireAuth := middleware.Auth(d.Sessions)
	idem := middleware.Idempotency(d.Idempotency)

	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}
	mutating := func(h http.HandlerFunc) http.Handler {
		return requireAuth(idem(h))
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthH.Liveness)
	mux.HandleFunc("GET /ready", healthH.Readiness)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /docs", docsH.UI)
	mux.HandleFunc("GET /docs/openapi.yaml", docsH.Spec)

	mux.Handle("POST /api/register", d.AuthLimiter.Handler(http.HandlerFunc(authH.Register)))
	mux.Handle("POST /api/login", d.AuthLimiter.Handler(http.HandlerFunc(authH.Login)))
	mux.HandleFunc("POST /api/logout", authH.Logout)

	mux.Handle("GET /api/dashboard", protected(accountH.Dashboard))
	mux.Handle("GET /api/insights", protected(accountH.Insights))
	mux.Handle("GET /api/transactions", protected(accountH.Transactions))
	mux.Handle("DELETE /api/account", mutating(accountH.Delete))

	mux.Handle("POST /api/transfer", mutating(ledgerH.Transfer))
	mux.Handle("POST /api/action/convert", mutating(ledgerH.Convert))
	mux.Handle("POST /api/action/topup", mutating(ledgerH.TopUp))

	mux.Handle("POST /api/card/toggle", mutating(cardH.Toggle))
	mux.Handle("POST /api/card/virtual", mutating(cardH.IssueVirtual))

	mux.HandleFunc("GET /api/rates", fxH.GetRates)

	var h http.Handler = metrics.InstrumentHandler(mux)
	h = middleware.Logging(h)
	h = middleware.Tracing(h)
	h = middleware.Recovery(h)
	return h
}
