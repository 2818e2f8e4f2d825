package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/saristore/saristore/pkg/auth"
	"github.com/saristore/saristore/pkg/response"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	storeIDKey
	roleKey
)

// AuthMiddleware validates the bearer token and injects the principal into
// the request context. Tokens without a store are rejected outright; every
// authenticated route in the system is tenant-scoped.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if claims.StoreID == 0 {
			response.Error(w, http.StatusUnauthorized, "Token is not bound to a store")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, storeIDKey, claims.StoreID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromCtx returns the authenticated user's ID, if any.
func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(userIDKey).(uint)
	return id, ok
}

// StoreIDFromCtx returns the authenticated user's store, if any.
func StoreIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(storeIDKey).(uint)
	return id, ok
}

// RoleFromCtx returns the authenticated user's role, if any.
func RoleFromCtx(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok
}
