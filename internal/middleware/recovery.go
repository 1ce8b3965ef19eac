package middleware

import (
	"net/http"
	"runtime/debug"

	"bux-api/internal/logger"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Recoverer turns a panic into a generic 500 and logs it with the request id.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logger.Logger.WithFields(logrus.Fields{
				"request_id": chimiddleware.GetReqID(r.Context()),
				"panic":      rvr,
				"stack":      string(debug.Stack()),
			}).Error("Panic recovered")

			writeAuthError(w, http.StatusInternalServerError, "Something failed.")
		}()

		next.ServeHTTP(w, r)
	})
}
