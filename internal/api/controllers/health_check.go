package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bux-api/internal/logger"
	"bux-api/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HealthCheckResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

type welcomeResponse struct {
	Data struct {
		Message string `json:"message"`
	} `json:"data"`
}

// WelcomeHandler answers the root path.
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	var resp welcomeResponse
	resp.Data.Message = "Welcome to the Bux API."
	respondWithJSON(w, http.StatusOK, resp)
}

// HealthCheckHandler checks API health, the database connection and the cache
func HealthCheckHandler(db *gorm.DB, cache services.CacheService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		response := HealthCheckResponse{Status: "API is running"}
		code := http.StatusOK

		if err := pingDatabase(ctx, db); err != nil {
			logger.Logger.WithFields(logrus.Fields{"error": err}).Error("Database health check failed")
			response.Database = "Database connection failed"
			code = http.StatusServiceUnavailable
		} else {
			response.Database = "Database connection is healthy"
		}

		if err := cache.Ping(ctx); err != nil {
			logger.Logger.WithFields(logrus.Fields{"error": err}).Warn("Cache health check failed")
			response.Cache = "Unavailable"
		} else {
			response.Cache = "Available"
		}

		respondWithJSON(w, code, response)
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
