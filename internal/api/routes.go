package api

import (
	"net/http"

	"bux-api/internal/api/controllers"
	"bux-api/internal/api/handlers"
	"bux-api/internal/middleware"
	"bux-api/internal/services"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Dependencies are the services the router hands to its handlers.
type Dependencies struct {
	DB             *gorm.DB
	Cache          services.CacheService
	AuthService    services.AuthService
	QuotaService   services.QuotaService
	UserService    services.UserService
	BookService    services.BookService
	ReadingService services.ReadingService
	ImageService   services.ImageService
	AuditService   services.AuditLogService

	RequiresAuth   bool
	MaxUploadBytes int64
	// ImageRoot is served under /images/ when set.
	ImageRoot string
}

type chainFunc func(http.Handler) http.Handler

// chain wraps h so the first middleware runs first.
func chain(h http.HandlerFunc, mws ...chainFunc) http.Handler {
	var handler http.Handler = h
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

func SetupRoutes(deps Dependencies) *mux.Router {
	router := mux.NewRouter()
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, middleware.LoggingMiddleware, middleware.Recoverer)

	quota := chainFunc(middleware.APIKeyMiddleware(deps.QuotaService))
	auth := chainFunc(middleware.AuthMiddleware(deps.AuthService, deps.RequiresAuth))
	admin := chainFunc(middleware.AdminMiddleware())
	audited := func(entityType, idVar string) chainFunc {
		return chainFunc(middleware.AuditMiddleware(deps.AuditService, "delete", entityType, idVar))
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.QuotaService)
	bookHandler := handlers.NewBookHandler(deps.BookService, deps.ImageService, deps.MaxUploadBytes)
	readingHandler := handlers.NewReadingHandler(deps.ReadingService)
	galleryHandler := handlers.NewGalleryHandler(deps.ImageService)
	auditHandler := handlers.NewAuditLogHandler(deps.AuditService)

	router.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	router.HandleFunc("/health", controllers.HealthCheckHandler(deps.DB, deps.Cache)).Methods("GET")

	router.Handle("/api/auth", chain(authHandler.Login, quota)).Methods("POST")

	users := router.PathPrefix("/api/users").Subrouter()
	users.Handle("", chain(userHandler.List, quota, auth, admin)).Methods("GET")
	users.Handle("", chain(userHandler.Create, quota, auth, admin)).Methods("POST")
	users.Handle("/me", chain(userHandler.Me, quota, auth)).Methods("GET")
	users.Handle("/me/usage", chain(userHandler.Usage, quota, auth)).Methods("GET")
	users.Handle("/{id}", chain(userHandler.Get, quota, auth, admin)).Methods("GET")
	users.Handle("/{id}", chain(userHandler.Update, quota, auth)).Methods("PUT")
	users.Handle("/{id}", chain(userHandler.Delete, quota, auth, admin, audited("user", "id"))).Methods("DELETE")

	books := router.PathPrefix("/api/books").Subrouter()
	books.Handle("", chain(bookHandler.List, quota, auth)).Methods("GET")
	books.Handle("", chain(bookHandler.Create, quota, auth)).Methods("POST")
	books.Handle("/upload/{id}", chain(bookHandler.Upload, quota, auth)).Methods("POST")
	books.Handle("/{id}", chain(bookHandler.Get, quota, auth)).Methods("GET")
	books.Handle("/{id}", chain(bookHandler.Update, quota, auth)).Methods("PUT")
	books.Handle("/{id}", chain(bookHandler.Delete, quota, auth, admin, audited("book", "id"))).Methods("DELETE")

	readings := router.PathPrefix("/api/readings").Subrouter()
	readings.Handle("", chain(readingHandler.List, quota, auth)).Methods("GET")
	readings.Handle("", chain(readingHandler.Create, quota, auth)).Methods("POST")
	readings.Handle("/{id}", chain(readingHandler.Get, quota, auth)).Methods("GET")
	readings.Handle("/{id}", chain(readingHandler.Update, quota, auth)).Methods("PUT")
	readings.Handle("/{id}", chain(readingHandler.Delete, quota, auth, admin, audited("reading", "id"))).Methods("DELETE")

	gallery := router.PathPrefix("/api/gallery").Subrouter()
	gallery.Handle("", chain(galleryHandler.List, quota, auth)).Methods("GET")
	gallery.Handle("/{name}", chain(galleryHandler.Get, quota, auth)).Methods("GET")
	gallery.Handle("/{name}", chain(galleryHandler.Delete, quota, auth, admin, audited("image", "name"))).Methods("DELETE")

	router.Handle("/api/audit", chain(auditHandler.List, quota, auth, admin)).Methods("GET")

	if deps.ImageRoot != "" {
		router.PathPrefix("/images/").Handler(http.StripPrefix("/images/", http.FileServer(http.Dir(deps.ImageRoot))))
	}

	return router
}
