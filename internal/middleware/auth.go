package middleware

import (
	"net/http"

	"github.com/josh-kwaku/wallet-ledger/internal/auth"
	"github.com/josh-kwaku/wallet-ledger/internal/handler"
	"github.com/josh-kwaku/wallet-ledger/internal/logging"
)

type sessionResolver interface {
	Resolve(token string) (string, error)
}

// Auth admits requests whose bearer token resolves to a live session. Every
// failure gets the same response so callers cannot probe token state.
func Auth(sessions sessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := handler.BearerToken(r)
			if !ok {
				handler.RespondAppError(w, handler.ErrUnauthenticated, nil)
				return
			}

			userID, err := sessions.Resolve(token)
			if err != nil {
				handler.RespondAppError(w, handler.ErrUnauthenticated, nil)
				return
			}

			ctx := auth.ContextWithUserID(r.Context(), userID)
			ctx = auth.ContextWithToken(ctx, token)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("user_id", userID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
