package middleware

import (
	"net/http"

	"bux-api/internal/logger"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const APIKeyHeader = "X-Api-Key"

// APIKeyMiddleware charges every request to the (Origin, X-Api-Key) binding
// and rejects it once that key has used up today's allowance.
func APIKeyMiddleware(quotaService services.QuotaService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			apiKey := r.Header.Get(APIKeyHeader)

			decision, err := quotaService.Consume(r.Context(), origin, apiKey)
			if decision != nil {
				setRateLimitHeaders(w, decision)
			}
			if err != nil {
				status := errors.StatusCode(err)
				if status == http.StatusTooManyRequests {
					setRetryAfter(w, decision)
					logger.Logger.WithFields(logrus.Fields{
						"user":   decision.User.ID,
						"origin": origin,
						"limit":  decision.Limit,
					}).Warn("Daily API quota exceeded")
				} else {
					status = http.StatusForbidden
				}
				writeQuotaError(w, status, errors.PublicMessage(err))
				return
			}

			ctx := services.WithAPIClientContext(r.Context(), decision.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
