package services

import (
	"context"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/repository"

	"github.com/google/uuid"
)

type ReadingInput struct {
	UserID      uuid.UUID
	BookID      uuid.UUID
	CurrentPage int
	TimeSpent   int
	Rating      int
	Comments    string
}

type ReadingService interface {
	List(ctx context.Context, expand repository.Expand) ([]models.Reading, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Reading, error)
	Create(ctx context.Context, input ReadingInput) (*models.Reading, error)
	Update(ctx context.Context, id uuid.UUID, input ReadingInput) (*models.Reading, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.Reading, error)
}

type readingService struct {
	readingRepo repository.ReadingRepository
	bookRepo    repository.BookRepository
	userRepo    repository.UserRepository
	cache       CacheService
}

func NewReadingService(
	readingRepo repository.ReadingRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	cache CacheService,
) ReadingService {
	return &readingService{
		readingRepo: readingRepo,
		bookRepo:    bookRepo,
		userRepo:    userRepo,
		cache:       cache,
	}
}

func (s *readingService) List(ctx context.Context, expand repository.Expand) ([]models.Reading, error) {
	return s.readingRepo.List(ctx, expand)
}

func (s *readingService) Get(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	return s.readingRepo.GetByID(ctx, id)
}

func (s *readingService) Create(ctx context.Context, input ReadingInput) (*models.Reading, error) {
	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.New(errors.ErrInvalidInput, "Invalid user.")
		}
		return nil, err
	}
	if _, err := s.bookRepo.GetByID(ctx, input.BookID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.New(errors.ErrInvalidInput, "Invalid book.")
		}
		return nil, err
	}

	if _, err := s.readingRepo.GetByUserAndBook(ctx, input.UserID, input.BookID); err == nil {
		return nil, errors.New(errors.ErrAlreadyExists, "Reading already registered.")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	reading := &models.Reading{
		UserID:      input.UserID,
		BookID:      input.BookID,
		CurrentPage: input.CurrentPage,
		TimeSpent:   input.TimeSpent,
		Rating:      input.Rating,
		Comments:    input.Comments,
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, err
	}

	invalidateBooks(ctx, s.cache)
	return reading, nil
}

// Update changes progress fields only; the (user, book) pair is fixed at creation.
func (s *readingService) Update(ctx context.Context, id uuid.UUID, input ReadingInput) (*models.Reading, error) {
	reading, err := s.readingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reading.CurrentPage = input.CurrentPage
	reading.TimeSpent = input.TimeSpent
	reading.Rating = input.Rating
	reading.Comments = input.Comments

	if err := s.readingRepo.Update(ctx, reading); err != nil {
		return nil, err
	}

	invalidateBooks(ctx, s.cache)
	return reading, nil
}

func (s *readingService) Delete(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	reading, err := s.readingRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	invalidateBooks(ctx, s.cache)
	return reading, nil
}
