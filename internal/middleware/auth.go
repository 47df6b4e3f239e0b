package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BorisDmv/techscribe-api/internal/auth"
	"github.com/BorisDmv/techscribe-api/internal/models"
)

type contextKey string

const claimsContextKey contextKey = "auth.claims"

// TokenParser verifies an access token.
type TokenParser interface {
	ParseAccess(token string) (*auth.Claims, error)
}

// Authenticate requires a valid bearer access token and stores its claims in
// the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				deny(w, http.StatusUnauthorized, "No authorization token provided")
				return
			}
			if !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			claims, err := tokens.ParseAccess(strings.TrimSpace(authHeader[7:]))
			if err != nil {
				deny(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !auth.Authorize(roles, claims.Roles) {
				deny(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
