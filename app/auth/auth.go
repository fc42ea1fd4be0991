// Package auth carries the resolved request principal. Token issuance
// and verification live outside this service; handlers only need the
// user attached to the request and its role.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/northmart/shop-backend/app/httpx"
	"github.com/northmart/shop-backend/models"
)

type contextKey struct{}

// UserResolver turns a bearer token into a user.
type UserResolver interface {
	ResolveToken(token string) (*models.User, error)
}

// WithUser returns a context carrying the request principal.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFrom returns the principal attached to the context, if any.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(contextKey{}).(*models.User)
	return user, ok
}

// Middleware resolves the Authorization bearer token and attaches the
// user to the request context. Requests without a valid token get 401.
func Middleware(resolver UserResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Error(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := resolver.ResolveToken(token)
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin returns the request principal if it has the admin role,
// writing the appropriate error response otherwise.
func RequireAdmin(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := UserFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	if !user.IsAdmin() {
		httpx.Error(w, http.StatusForbidden, "admin role required")
		return nil, false
	}
	return user, true
}
