package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

type pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes. Readiness fails when
// the ledger store cannot be reached.
type HealthHandler struct {
	store   pinger
	started time.Time
}

func NewHealthHandler(store pinger) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

type healthResponse struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: map[string]string{"store": "ok"}}
	status := http.StatusOK

	if err := h.store.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("readiness: store unreachable", "error", err)
		resp.Status = "down"
		resp.Checks["store"] = "down"
		status = http.StatusServiceUnavailable
	}

	RespondJSON(w, status, resp)
}
