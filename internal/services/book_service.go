package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bux-api/internal/logger"
	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const bookCachePrefix = "books:"

type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Pages       int
	ImageURL    string
}

type BookService interface {
	List(ctx context.Context, expand repository.Expand) ([]models.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Create(ctx context.Context, input BookInput) (*models.Book, error)
	Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, error)
	SetImageURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type bookService struct {
	bookRepo repository.BookRepository
	cache    CacheService
	ttl      time.Duration
}

func NewBookService(bookRepo repository.BookRepository, cache CacheService, ttl time.Duration) BookService {
	return &bookService{bookRepo: bookRepo, cache: cache, ttl: ttl}
}

func (s *bookService) List(ctx context.Context, expand repository.Expand) ([]models.Book, error) {
	key := fmt.Sprintf("%slist:%d", bookCachePrefix, expand)

	var books []models.Book
	if s.fromCache(ctx, key, &books) {
		return books, nil
	}

	books, err := s.bookRepo.List(ctx, expand)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, books)
	return books, nil
}

func (s *bookService) Get(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	key := bookCachePrefix + id.String()

	var book models.Book
	if s.fromCache(ctx, key, &book) {
		return &book, nil
	}

	found, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, key, found)
	return found, nil
}

func (s *bookService) Create(ctx context.Context, input BookInput) (*models.Book, error) {
	if _, err := s.bookRepo.GetByISBN(ctx, input.ISBN); err == nil {
		return nil, errors.New(errors.ErrAlreadyExists, "Book already registered.")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	book := &models.Book{
		Title:       input.Title,
		Author:      input.Author,
		ISBN:        input.ISBN,
		Description: input.Description,
		Pages:       input.Pages,
		ImageURL:    input.ImageURL,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return book, nil
}

// Update leaves the ISBN untouched; it identifies the edition.
func (s *bookService) Update(ctx context.Context, id uuid.UUID, input BookInput) (*models.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = input.Title
	book.Author = input.Author
	book.Description = input.Description
	book.Pages = input.Pages
	book.ImageURL = input.ImageURL

	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return book, nil
}

func (s *bookService) SetImageURL(ctx context.Context, id uuid.UUID, url string) error {
	if err := s.bookRepo.UpdateImageURL(ctx, id, url); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, err := s.bookRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return book, nil
}

// Cache failures are logged and otherwise ignored; the database stays authoritative.
func (s *bookService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != ErrCacheMiss {
			logger.Logger.WithFields(logrus.Fields{"error": err, "key": key}).Warn("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err, "key": key}).Warn("Cache entry is corrupt")
		return false
	}
	return true
}

func (s *bookService) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err, "key": key}).Warn("Cache write failed")
	}
}

func (s *bookService) invalidate(ctx context.Context) {
	invalidateBooks(ctx, s.cache)
}

// invalidateBooks drops every cached book entry. Expanded listings embed
// readings, so reading writes call it too.
func invalidateBooks(ctx context.Context, cache CacheService) {
	if err := cache.DeleteByPattern(ctx, bookCachePrefix+"*"); err != nil {
		logger.Logger.WithFields(logrus.Fields{"error": err}).Warn("Cache invalidation failed")
	}
}
