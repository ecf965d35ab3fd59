package auth

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
)

type contextKey struct{}

// Middleware rejects requests without a valid bearer token and stores the
// token subject in the request context.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "authorization header missing")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization header")
				return
			}

			claims, err := tokens.Parse(r.Context(), parts[1])
			if err != nil {
				if !stderrors.Is(err, pkgerrors.ErrUnauthorized) {
					slog.Error("token check failed", "error", err)
					writeFail(w, http.StatusInternalServerError, "internal server error")
					return
				}
				slog.Warn("invalid token", "path", r.URL.Path, "error", err)
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(contextKey{}).(string)
	return subject, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeFail(w, http.StatusUnauthorized, msg)
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.Failed(msg))
}
