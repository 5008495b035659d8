package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"trellis/pkg/domain"
)

// CallerValidator turns a bearer token into the caller's ledger address.
type CallerValidator interface {
	ValidateToken(tokenString string) (domain.Address, error)
}

type contextKeyCaller struct{}

// WithCaller stores the authenticated caller address in the context. Exported
// so tests can inject a caller without minting tokens.
func WithCaller(ctx context.Context, caller domain.Address) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

// GetCaller retrieves the authenticated caller address from the context.
func GetCaller(ctx context.Context) domain.Address {
	caller, ok := ctx.Value(contextKeyCaller{}).(domain.Address)
	if !ok {
		return domain.Zero
	}
	return caller
}

// RequireAuth extracts and validates the bearer token, placing the caller
// address in the request context. Operations arrive already authenticated;
// authorization (owner/agent checks) stays inside the ledger engine.
func RequireAuth(validator CallerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("token validation failed", "error", err)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}
