package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/thetoretto/hotpoint-bookings/internal/http/response"
	"github.com/thetoretto/hotpoint-bookings/pkg/auth"
	"github.com/thetoretto/hotpoint-bookings/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireJWT authenticates the request and, when role is non-empty,
// authorizes it. Admins pass any role gate.
func RequireJWT(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(r, secret)
			if !ok {
				response.Unauthorized(w, "missing or invalid authorization token")
				return
			}
			if role != "" && claims.Role != role && claims.Role != auth.RoleAdmin {
				response.Forbidden(w, "insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWT attaches claims when a valid token is present but lets
// anonymous requests through (guest booking flow).
func OptionalJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := parseBearer(r, secret); ok {
				ctx := context.WithValue(r.Context(), CtxClaims, claims)
				ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseBearer(r *http.Request, secret string) (*auth.Claims, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return nil, false
	}
	claims, err := auth.Parse(strings.TrimPrefix(authz, "Bearer "), secret)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// Claims returns the authenticated claims, or nil for anonymous
// requests.
func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
