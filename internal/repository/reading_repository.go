package repository

import (
	"context"
	stderrors "errors"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReadingRepository interface {
	Create(ctx context.Context, reading *models.Reading) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reading, error)
	GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*models.Reading, error)
	List(ctx context.Context, expand Expand) ([]models.Reading, error)
	Update(ctx context.Context, reading *models.Reading) error
	Delete(ctx context.Context, id uuid.UUID) (*models.Reading, error)
}

type readingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Create(ctx context.Context, reading *models.Reading) error {
	if err := r.db.WithContext(ctx).Omit("User", "Book").Create(reading).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.New(errors.ErrAlreadyExists, "Reading already registered.")
		}
		return errors.Wrap(err, "failed to create reading")
	}
	return nil
}

func (r *readingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.WithContext(ctx).First(&reading, "id = ?", id).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reading")
	}
	return &reading, nil
}

func (r *readingRepository) GetByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.WithContext(ctx).First(&reading, "user_id = ? AND book_id = ?", userID, bookID).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reading")
	}
	return &reading, nil
}

func (r *readingRepository) List(ctx context.Context, expand Expand) ([]models.Reading, error) {
	var readings []models.Reading

	query := r.db.WithContext(ctx).Order("updated_at DESC")
	if expand == ExpandAll {
		query = query.Preload("Book").Preload("User")
	}

	if err := query.Find(&readings).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list readings")
	}
	return readings, nil
}

func (r *readingRepository) Update(ctx context.Context, reading *models.Reading) error {
	result := r.db.WithContext(ctx).Model(reading).
		Select("current_page", "time_spent", "rating", "comments", "updated_at").
		Updates(reading)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update reading")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}

func (r *readingRepository) Delete(ctx context.Context, id uuid.UUID) (*models.Reading, error) {
	var reading models.Reading
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&reading, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Reading{}, "id = ?", id).Error
	})
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete reading")
	}
	return &reading, nil
}
