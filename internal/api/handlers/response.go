package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"bux-api/internal/logger"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/pkg/validation"
	"bux-api/internal/repository"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type messageResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err}).Error("Failed to encode response")
	}
}

// respondWithError maps err onto the error taxonomy. Internal failures are
// logged and answered with a generic message.
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.StatusCode(err)
	if code == http.StatusInternalServerError {
		logger.Logger.WithFields(logrus.Fields{
			"request_id": chimiddleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"error":      err,
		}).Error("Request failed")
	}
	respondWithJSON(w, code, messageResponse{Success: false, Msg: errors.PublicMessage(err)})
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New(errors.ErrBadRequest, "Invalid request body")
	}
	if err := validation.ValidateStruct(dst); err != nil {
		return errors.New(errors.ErrBadRequest, err.Error())
	}
	return nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errors.New(errors.ErrNotFound, "Invalid ID.")
	}
	return id, nil
}

var errBadQuery = errors.New(errors.ErrBadRequest, "Bad Request")

// parseExpand reads the optional $expand query. Without $expand any query
// key is rejected; with it, other keys are ignored.
// "*" always selects ExpandAll. withReadings also accepts "readings" and
// "readings,users", which book listings use.
func parseExpand(r *http.Request, withReadings bool) (repository.Expand, error) {
	query := r.URL.Query()
	raw, ok := query["$expand"]
	if !ok {
		if len(query) != 0 {
			return repository.ExpandNone, errBadQuery
		}
		return repository.ExpandNone, nil
	}
	if len(raw) != 1 {
		return repository.ExpandNone, errBadQuery
	}

	parts := make(map[string]bool)
	for _, p := range strings.Split(raw[0], ",") {
		parts[strings.TrimSpace(p)] = true
	}

	switch {
	case parts["*"]:
		return repository.ExpandAll, nil
	case withReadings && parts["readings"] && parts["users"]:
		return repository.ExpandAll, nil
	case withReadings && parts["readings"]:
		return repository.ExpandReadings, nil
	default:
		return repository.ExpandNone, errBadQuery
	}
}

// requestBaseURL rebuilds scheme://host for links into this server.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
