package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/handler"
	"github.com/josh-kwaku/wallet-ledger/internal/idempotency"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "X-Idempotent-Replayed"
)

type idempotencyStore interface {
	Reserve(key, userID, requestHash string) (*idempotency.Entry, bool)
	Complete(key, userID string, statusCode int, body []byte)
	Release(key, userID string)
}

// Idempotency replays the first response for a repeated Idempotency-Key.
// The header is optional; requests without it pass straight through. It
// must run after Auth so the cache is scoped per user.
func Idempotency(store idempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrUnauthenticated, nil)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)

			// The key is reserved before the handler runs, so a concurrent
			// duplicate sees the pending entry instead of running twice.
			cached, reserved := store.Reserve(key, userID, reqHash)
			if !reserved {
				switch {
				case cached.RequestHash != reqHash:
					handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
				case cached.Pending:
					w.Header().Set("Retry-After", "1")
					handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
				default:
					replay(w, r, key, cached)
				}
				return
			}

			completed := false
			defer func() {
				if !completed {
					store.Release(key, userID)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			// Server errors are not cached so the client can retry.
			if rec.statusCode >= http.StatusInternalServerError {
				return
			}
			store.Complete(key, userID, rec.statusCode, rec.body.Bytes())
			completed = true
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, key string, cached *idempotency.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	if _, err := w.Write(cached.ResponseBody); err != nil {
		logging.FromContext(r.Context()).Error("failed to write idempotent replay", "error", err, "idempotency_key", key)
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
