// Command seed loads an admin, two sample readers and a few books.
// Existing rows (matched by email or ISBN) are left alone.
package main

import (
	"context"

	"bux-api/internal/db"
	"bux-api/internal/logger"
	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/pkg/password"
	"bux-api/internal/repository"
	"bux-api/internal/services"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type seedConfig struct {
	DatabaseURL   string `env:"DATABASE_URL,required"`
	Origin        string `env:"SEED_ORIGIN" envDefault:"http://localhost:3000"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL" envDefault:"eki@domain.com"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD" envDefault:"123456789aB."`
}

type seedUser struct {
	name    string
	email   string
	isAdmin bool
	// plaintext is hashed on insert; legacyHash is stored as-is with no salt.
	plaintext  string
	legacyHash string
}

var books = []models.Book{
	{Title: "Emily ja Huvipuisto", Author: "Philip Reeve ja Sarah McIntyre", ISBN: "978-952-230-536-7", Pages: 246},
	{Title: "Kurnivamahainen Kissa", Author: "Magdalena Hai", ISBN: "978-951-23-6323-0", Pages: 46},
	{Title: "Tarina Sinisestä Planeetasta", Author: "Andri Smær Magnason", ISBN: "952-5321-32-0", Pages: 93},
	{Title: "Peppi Pitkätossu", Author: "Astrid Lindgren ja Lauren Child", ISBN: "978-951-0-33397-6", Pages: 203},
}

func main() {
	_ = godotenv.Load()

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		logger.Logger.Fatalf("Failed to parse config: %v", err)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gdb)
	bookRepo := repository.NewBookRepository(gdb)
	readingRepo := repository.NewReadingRepository(gdb)
	keys := services.NewAPIKeyService()

	users := []seedUser{
		{name: "Eki Kauhalevi", email: cfg.AdminEmail, isAdmin: true, plaintext: cfg.AdminPassword},
		{name: "Julia Kauhalevi", email: "julia@domain.com", legacyHash: "$2b$10$0jR/1.J0MqsAM2dXX243du6fPUoHyfWP0GkmZZRJtKpPfeK1StM4u"},
		{name: "Joni Kauhalevi", email: "joni@domain.com", legacyHash: "$2b$10$76Xn9WBI7uuM1AWI4JFE0eSj1mWb91UphU9shrHdtiATkLZblWIMa"},
	}

	var readers []*models.User
	for _, su := range users {
		user, err := ensureUser(ctx, userRepo, keys, su, cfg.Origin)
		if err != nil {
			logger.Logger.Fatalf("Failed to seed user %s: %v", su.email, err)
		}
		readers = append(readers, user)
	}

	var seeded []*models.Book
	for i := range books {
		book, err := ensureBook(ctx, bookRepo, books[i])
		if err != nil {
			logger.Logger.Fatalf("Failed to seed book %s: %v", books[i].ISBN, err)
		}
		seeded = append(seeded, book)
	}

	// One reading per reader so expanded listings have something to show.
	for i, reader := range readers {
		book := seeded[i%len(seeded)]
		if _, err := readingRepo.GetByUserAndBook(ctx, reader.ID, book.ID); err == nil {
			continue
		}
		reading := &models.Reading{UserID: reader.ID, BookID: book.ID, CurrentPage: book.Pages / 2, Rating: 4}
		if err := readingRepo.Create(ctx, reading); err != nil {
			logger.Logger.Fatalf("Failed to seed reading: %v", err)
		}
	}

	logger.Logger.Info("Seed complete")
}

func ensureUser(ctx context.Context, repo repository.UserRepository, keys services.APIKeyService, su seedUser, origin string) (*models.User, error) {
	existing, err := repo.GetByEmail(ctx, su.email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	user := &models.User{Name: su.name, Email: su.email, IsAdmin: su.isAdmin}
	if su.plaintext != "" {
		user.Salt, user.Hash, err = password.Hash(su.plaintext)
		if err != nil {
			return nil, err
		}
	} else {
		user.Hash = su.legacyHash
	}

	if _, err := keys.IssueBinding(user, origin); err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.LogEvent(logrus.InfoLevel, "Seeded user", logrus.Fields{
		"email":   user.Email,
		"admin":   user.IsAdmin,
		"origin":  user.Host,
		"api_key": user.APIKey,
	})
	return user, nil
}

func ensureBook(ctx context.Context, repo repository.BookRepository, book models.Book) (*models.Book, error) {
	existing, err := repo.GetByISBN(ctx, book.ISBN)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}
	if err := repo.Create(ctx, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
