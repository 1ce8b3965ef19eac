package repository

import (
	"context"
	stderrors "errors"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Expand selects which relations a listing preloads.
type Expand int

const (
	ExpandNone Expand = iota
	ExpandReadings
	ExpandAll
)

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context, expand Expand) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New(errors.ErrAlreadyExists, "Book already registered.")
		}
		return errors.Wrap(err, "failed to create book")
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get book")
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, "isbn = ?", isbn).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get book by ISBN")
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, expand Expand) ([]models.Book, error) {
	var books []models.Book

	query := r.db.WithContext(ctx)
	switch expand {
	case ExpandReadings:
		query = query.Preload("Readings").Order("pages")
	case ExpandAll:
		query = query.Preload("Readings.User").Order("pages")
	default:
		query = query.Order("title")
	}

	if err := query.Find(&books).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	result := r.db.WithContext(ctx).Model(book).
		Select("title", "author", "description", "pages", "image_url", "updated_at").
		Updates(book)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update book")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *bookRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", id).Update("image_url", url)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update book image")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// Delete removes the book and returns the removed record.
func (r *bookRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&book, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Reading{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Book{}, "id = ?", id).Error
	})
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete book")
	}
	return &book, nil
}
