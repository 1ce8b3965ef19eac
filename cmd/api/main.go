package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bux-api/internal/api"
	"bux-api/internal/config"
	"bux-api/internal/db"
	"bux-api/internal/logger"
	"bux-api/internal/pkg/token"
	"bux-api/internal/repository"
	"bux-api/internal/services"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile); err != nil {
		logger.Logger.Fatalf("Failed to configure logging: %v", err)
	}

	// Initialize database connection
	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	privateKey, err := cfg.PrivateKeyPEM()
	if err != nil {
		logger.Logger.Fatalf("Failed to read JWT private key: %v", err)
	}
	publicKey, err := cfg.PublicKeyPEM()
	if err != nil {
		logger.Logger.Fatalf("Failed to read JWT public key: %v", err)
	}
	tokens, err := token.NewManager(privateKey, publicKey, cfg.TokenTTL)
	if err != nil {
		logger.Logger.Fatalf("FATAL ERROR: %v", err)
	}

	cache := newCache(cfg)

	images, err := newImageService(cfg)
	if err != nil {
		logger.Logger.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gdb)
	usageRepo := repository.NewUsageRepository(gdb)
	bookRepo := repository.NewBookRepository(gdb)
	readingRepo := repository.NewReadingRepository(gdb)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokens, cfg.MaxInvalidLogons)
	quotaService := services.NewQuotaService(userRepo, usageRepo, &cfg.Quota)
	userService := services.NewUserService(userRepo, services.NewAPIKeyService(), authService, cache)
	bookService := services.NewBookService(bookRepo, cache, cfg.Cache.DefaultTTL)
	readingService := services.NewReadingService(readingRepo, bookRepo, userRepo, cache)

	if !cfg.RequiresAuth {
		logger.Logger.Warn("Bearer token authentication is disabled")
	}

	deps := api.Dependencies{
		DB:             gdb,
		Cache:          cache,
		AuthService:    authService,
		QuotaService:   quotaService,
		UserService:    userService,
		BookService:    bookService,
		ReadingService: readingService,
		ImageService:   images,
		AuditService:   services.NewAuditLogService(repository.NewAuditLogRepository(gdb)),
		RequiresAuth:   cfg.RequiresAuth,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	if cfg.ImageStore == "file" {
		deps.ImageRoot = cfg.ImageRoot
	}
	router := api.SetupRoutes(deps)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: cfg.GetCORSAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"Origin",
			"X-Api-Key",
		},
		ExposedHeaders: []string{
			"X-Auth-Token",
			"X-Api-Key",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		},
		MaxAge: 300,
	})

	// Create server with timeouts
	srv := &http.Server{
		Handler:      corsMiddleware.Handler(router),
		Addr:         ":" + cfg.Port,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
	}

	go func() {
		logger.LogEvent(logrus.InfoLevel, "Server starting", logrus.Fields{
			"port":    cfg.Port,
			"env":     cfg.AppEnv,
			"api_max": cfg.Quota.MaxPerDay,
			"cache":   cfg.Cache.Enabled,
			"images":  cfg.ImageStore,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatalf("Failure to launch server on port %s: %v", cfg.Port, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err}).Error("Server forced to shutdown")
	}
	if closer, ok := cache.(*services.RedisCacheService); ok {
		closer.Close()
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Logger.Info("Server stopped")
}

// newCache falls back to the no-op cache when Redis is disabled or unreachable.
func newCache(cfg *config.Config) services.CacheService {
	if !cfg.Cache.Enabled {
		return services.NoopCacheService{}
	}
	cache, err := services.NewRedisCacheService(cfg.Cache)
	if err != nil {
		logger.Logger.WithFields(logrus.Fields{
			"error": err,
			"addr":  cfg.Cache.Addr(),
		}).Warn("Redis unavailable, continuing without cache")
		return services.NoopCacheService{}
	}
	return cache
}

func newImageService(cfg *config.Config) (services.ImageService, error) {
	if cfg.ImageStore == "s3" {
		return services.NewS3ImageService(cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, cfg.ImageBaseURL, cfg.MaxUploadBytes)
	}
	return services.NewImageService(cfg.ImageRoot, cfg.ImageBaseURL, cfg.MaxUploadBytes)
}
