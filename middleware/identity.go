package middleware

import (
	"context"
	"net/http"

	"hatesaway-server/core"
	"hatesaway-server/identity"
	"hatesaway-server/stores/memory"
)

type contextKey string

const (
	UserIDContextKey = contextKey("user_id")
	UserIDHeader     = "X-Hatesaway-User-Id"
)

// Identity resolves the caller's anonymous id. The client's stored id
// arrives in the X-Hatesaway-User-Id header; the cookie is the fallback and
// a new id is issued when neither is present. The id is echoed back in the
// same header.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile := memory.NewKVStore()
		if id := r.Header.Get(UserIDHeader); id != "" {
			profile = memory.NewKVStoreWith(map[string]string{core.UserIDKey: id})
		}

		provider := identity.NewProvider(profile, identity.NewHTTPCookies(w, r))
		userID := provider.GetUserID(r.Context())
		w.Header().Set(UserIDHeader, userID)

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the id resolved by Identity, or "".
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDContextKey).(string)
	return id
}
