package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/cafe/pkg/auth"
	"github.com/shashiranjanraj/cafe/pkg/response"
	"github.com/shashiranjanraj/cafe/pkg/session"
)

type identityKey struct{}

type identity struct {
	userID uint
	role   string
}

// WithIdentity stores the authenticated user on ctx.
func WithIdentity(ctx context.Context, userID uint, role string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity{userID: userID, role: role})
}

// UserIDFromCtx returns the authenticated user id, if any.
func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.userID == 0 {
		return 0, false
	}
	return id.userID, true
}

// RoleFromCtx returns the authenticated user's role, if any.
func RoleFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(identityKey{}).(identity)
	if !ok || id.role == "" {
		return "", false
	}
	return id.role, true
}

// Authenticate resolves the caller from a Bearer token, falling back to the
// server-side session. Anonymous requests pass through untouched; use
// AuthMiddleware or rbac.HasRole to reject them.
//
// session.Middleware must run first for the session fallback to work.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := auth.ValidateToken(token); err == nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UserID, claims.Role)))
				return
			}
		}

		sess := session.FromCtx(r)
		if id, ok := sess.GetUint(session.UserIDKey); ok && id > 0 {
			role, _ := sess.GetString(session.RoleKey)
			r = r.WithContext(WithIdentity(r.Context(), id, role))
		}

		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware rejects requests that Authenticate could not identify.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromCtx(r); !ok {
			response.Unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
