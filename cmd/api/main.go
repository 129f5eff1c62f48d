package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/config"
	"github.com/josh-kwaku/wallet-ledger/internal/fx"
	"github.com/josh-kwaku/wallet-ledger/internal/idempotency"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
	"github.com/josh-kwaku/wallet-ledger/internal/metrics"
	"github.com/josh-kwaku/wallet-ledger/internal/middleware"
	"github.com/josh-kwaku/wallet-ledger/internal/server"
	"github.com/josh-kwaku/wallet-ledger/internal/service"
	"github.com/josh-kwaku/wallet-ledger/internal/store"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("wallet-ledger", cfg.LogLevel, cfg.AppEnv)

	backend, db, err := openBackend(cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}
	gateway := store.NewGateway(backend)

	sessions, err := auth.NewSessionManager(auth.SessionConfig{
		Secret:      []byte(cfg.SessionSecret),
		TTL:         cfg.SessionTTL,
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	if err != nil {
		slog.Error("failed to create session manager", "error", err)
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET not set, using a random per-process key")
	}

	rates := fx.NewRateService()
	ledger := service.NewLedgerService(gateway, sessions, rates, cfg.BcryptCost)
	idemCache := idempotency.NewCache(cfg.IdempotencyTTL)
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst, 10*time.Minute)

	router := server.NewRouter(server.Deps{
		Ledger:      ledger,
		Sessions:    sessions,
		Store:       gateway,
		FX:          rates,
		Idempotency: idemCache,
		AuthLimiter: authLimiter,
	})

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()

	sweeper := service.NewSweeper(logger, cfg.SweepInterval,
		service.SweepTask{Name: "sessions", Run: sessions.Sweep},
		service.SweepTask{Name: "idempotency", Run: idemCache.Purge},
		service.SweepTask{Name: "rate_limiters", Run: authLimiter.Purge},
	)
	sweeper.OnSweep(func() { metrics.SetActiveSessions(sessions.Active()) })
	go sweeper.Start(sweepCtx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr, "store_backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openBackend returns the configured store backend. The *sql.DB is non-nil
// only for postgres and is owned by the caller.
func openBackend(cfg *config.Config) (store.Backend, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := connectDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresBackend(db, cfg.StoreDocument), db, nil
	default:
		return store.NewFileBackend(cfg.StorePath), nil, nil
	}
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := store.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var err error
	for i := range 30 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		var db *sql.DB
		db, err = store.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
