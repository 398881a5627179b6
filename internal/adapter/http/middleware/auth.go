package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pravino/tapcore/internal/infrastructure/auth"
)

// ContextKey is the type for context keys.
type ContextKey string

// ClaimsContextKey is the context key for the verified admin claims.
const ClaimsContextKey ContextKey = "claims"

// RoleAdmin is the role required by the admin endpoints.
const RoleAdmin = "admin"

// AdminAuth verifies the bearer token and requires the admin role.
// The withdrawal review endpoints sit behind it.
func AdminAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			if claims.Role != RoleAdmin {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the verified claims from context.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}
