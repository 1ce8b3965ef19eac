package middleware

import (
	"net/http"

	"bux-api/internal/services"
)

// AdminMiddleware must run after AuthMiddleware. A request without an
// identity is refused.
func AdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := services.UserFromContext(r.Context())
			if !ok || !user.IsAdmin {
				writeAuthError(w, http.StatusForbidden, "Access denied.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
