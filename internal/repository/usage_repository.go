package repository

import (
	"context"
	stderrors "errors"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UsageRepository interface {
	// Consume takes one call from the user's allowance for date. It never
	// lets the stored count exceed limit, even under concurrent callers.
	Consume(ctx context.Context, userID uuid.UUID, date string, limit int) (*models.UsageResult, error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.UsageEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UsageEntry, error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Consume(ctx context.Context, userID uuid.UUID, date string, limit int) (*models.UsageResult, error) {
	db := r.db.WithContext(ctx)

	// Two rounds at most: a lost insert race falls back to the conditional update.
	for attempt := 0; attempt < 2; attempt++ {
		result := db.Model(&models.UsageEntry{}).
			Where("user_id = ? AND date = ? AND count < ?", userID, date, limit).
			UpdateColumn("count", gorm.Expr("count + ?", 1))
		if result.Error != nil {
			return nil, errors.Wrap(result.Error, "failed to increment usage")
		}

		if result.RowsAffected > 0 {
			entry, err := r.GetByUserAndDate(ctx, userID, date)
			if err != nil {
				return nil, err
			}
			return &models.UsageResult{Outcome: models.UsageIncremented, Date: date, Count: entry.Count}, nil
		}

		entry, err := r.GetByUserAndDate(ctx, userID, date)
		if err == nil {
			return &models.UsageResult{Outcome: models.UsageQuotaExceeded, Date: date, Count: entry.Count}, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		if limit <= 0 {
			return &models.UsageResult{Outcome: models.UsageQuotaExceeded, Date: date}, nil
		}

		created := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UsageEntry{UserID: userID, Date: date, Count: 1})
		if created.Error != nil {
			return nil, errors.Wrap(created.Error, "failed to create usage entry")
		}
		if created.RowsAffected > 0 {
			return &models.UsageResult{Outcome: models.UsageCreatedToday, Date: date, Count: 1}, nil
		}
	}

	return nil, errors.Wrap(errors.ErrDatabaseError, "usage ledger contention")
}

func (r *usageRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*models.UsageEntry, error) {
	var entry models.UsageEntry
	result := r.db.WithContext(ctx).First(&entry, "user_id = ? AND date = ?", userID, date)

	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get usage entry")
	}

	return &entry, nil
}

func (r *usageRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UsageEntry, error) {
	var entries []models.UsageEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date").Find(&entries).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list usage entries")
	}
	return entries, nil
}
