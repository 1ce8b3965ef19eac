package middleware

import (
	"encoding/json"
	"net/http"

	"bux-api/internal/logger"

	"github.com/sirupsen/logrus"
)

type quotaErrorBody struct {
	Error quotaError `json:"error"`
}

type quotaError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type authErrorBody struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// writeQuotaError writes the {error:{code,message}} body used by the API-key layer.
func writeQuotaError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, quotaErrorBody{Error: quotaError{Code: status, Message: message}})
}

// writeAuthError writes the {success:false,msg} body used by the token and admin layers.
func writeAuthError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, authErrorBody{Success: false, Msg: message})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err}).Error("Failed to write error response")
	}
}
