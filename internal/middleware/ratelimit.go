package middleware

import (
	"net/http"
	"strconv"
	"time"

	"bux-api/internal/services"
)

func setRateLimitHeaders(w http.ResponseWriter, decision *services.QuotaDecision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining()))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

// setRetryAfter reports the seconds left until the ledger rolls over.
func setRetryAfter(w http.ResponseWriter, decision *services.QuotaDecision) {
	seconds := int(time.Until(decision.ResetAt).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
}
