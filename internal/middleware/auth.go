package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// userIDKey is the context key for the authenticated user's ID.
// Unexported so only this package can set it.
type userIDKey struct{}

// RequireUser extracts the caller's user ID from the X-User-ID header and
// stores it in the request context. Authentication itself happens upstream —
// the fronting auth layer verifies the session and forwards the resolved
// user ID. Requests without a valid header get 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get("X-User-ID"))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"missing or invalid X-User-ID header"}}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, id)))
	})
}

// UserID returns the authenticated user's ID from the context.
// It is the zero UUID when RequireUser did not run for this request.
func UserID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDKey{}).(uuid.UUID)
	return id
}
