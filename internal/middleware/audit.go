package middleware

import (
	"net/http"

	"bux-api/internal/logger"
	"bux-api/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// AuditMiddleware records action on entityType once the wrapped handler
// succeeds. The entity id is taken from the route variable idVar. A failed
// write to the audit store is logged and never changes the response.
func AuditMiddleware(auditService services.AuditLogService, action, entityType, idVar string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			if rw.statusCode >= http.StatusMultipleChoices {
				return
			}

			actor, _ := services.UserFromContext(r.Context())
			if actor == nil {
				return
			}

			entityID := mux.Vars(r)[idVar]
			err := auditService.Record(r.Context(), actor.ID, action, entityType, entityID, r.Method+" "+r.URL.Path)
			if err != nil {
				logger.LogEvent(logrus.WarnLevel, "Failed to record audit log", logrus.Fields{
					"action":    action,
					"entity":    entityType,
					"entity_id": entityID,
					"actor":     actor.ID,
					"error":     err.Error(),
				})
			}
		})
	}
}
