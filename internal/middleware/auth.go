package middleware

import (
	"net/http"
	"strings"

	"bux-api/internal/pkg/token"
	"bux-api/internal/services"
)

// AuthMiddleware resolves the bearer token to a stored user. With
// requiresAuth off it passes every request through untouched.
func AuthMiddleware(authService services.AuthService, requiresAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !requiresAuth {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractTokenFromHeader(r)
			if !ok {
				writeAuthError(w, http.StatusBadRequest, "Bad request")
				return
			}

			user, err := authService.VerifyToken(r.Context(), tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "You are not authorized")
				return
			}

			ctx := services.WithUserContext(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractTokenFromHeader accepts only "Bearer <a.b.c>".
func extractTokenFromHeader(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || !token.ValidShape(parts[1]) {
		return "", false
	}
	return parts[1], true
}
