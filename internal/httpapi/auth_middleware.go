package httpapi

import (
	"context"
	"net/http"
	"strings"

	"skilltalk/internal/domain"
)

const currentUserKey ctxKey = 100

// requireAuth resolves the bearer token to a live user record and stores
// it on the request context. Handlers behind it can assume CurrentUser
// succeeds.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, ok := a.tokens.Verify(raw)
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		u, err := a.auth.GetUser(r.Context(), claims.UserID)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, u)
		next(w, r.WithContext(ctx))
	}
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(currentUserKey).(domain.User)
	return u, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
