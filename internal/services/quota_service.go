package services

import (
	"context"
	"time"

	"bux-api/internal/config"
	"bux-api/internal/logger"
	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/repository"

	"github.com/sirupsen/logrus"
)

// QuotaService enforces the per-key daily call budget.
type QuotaService interface {
	// Consume resolves the (host, apiKey) binding and takes one call from
	// today's allowance. The decision is returned even when the call is
	// rejected for exceeding the quota.
	Consume(ctx context.Context, host, apiKey string) (*QuotaDecision, error)
	Usage(ctx context.Context, user *models.User) (*UsageStats, error)
}

// QuotaDecision describes the outcome of one Consume call.
type QuotaDecision struct {
	User    *models.User
	Result  *models.UsageResult
	Limit   int
	ResetAt time.Time
}

// Remaining is how many calls are left today, never negative.
func (d *QuotaDecision) Remaining() int {
	if d.Result == nil {
		return 0
	}
	if left := d.Limit - d.Result.Count; left > 0 {
		return left
	}
	return 0
}

type UsageStats struct {
	Date              string              `json:"date"`
	CurrentCount      int                 `json:"count"`
	Limit             int                 `json:"limit"`
	RemainingRequests int                 `json:"remaining"`
	ResetAt           time.Time           `json:"resetAt"`
	History           []models.UsageEntry `json:"history"`
}

type quotaService struct {
	userRepo  repository.UserRepository
	usageRepo repository.UsageRepository
	cfg       *config.QuotaConfig
	now       func() time.Time
}

func NewQuotaService(userRepo repository.UserRepository, usageRepo repository.UsageRepository, cfg *config.QuotaConfig) QuotaService {
	return &quotaService{
		userRepo:  userRepo,
		usageRepo: usageRepo,
		cfg:       cfg,
		now:       time.Now,
	}
}

var errNotAuthorized = errors.New(errors.ErrForbidden, "Not authorized.")

func (s *quotaService) Consume(ctx context.Context, host, apiKey string) (*QuotaDecision, error) {
	if host == "" || apiKey == "" {
		return nil, errNotAuthorized
	}

	user, err := s.userRepo.GetByAPIKey(ctx, host, apiKey)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			logger.Logger.WithFields(logrus.Fields{
				"error": err,
				"host":  host,
			}).Error("API key lookup failed")
		}
		return nil, errNotAuthorized
	}

	now := s.now()
	result, err := s.usageRepo.Consume(ctx, user.ID, models.UsageDate(now), s.cfg.MaxPerDay)
	if err != nil {
		logger.Logger.WithFields(logrus.Fields{
			"error": err,
			"user":  user.ID,
		}).Error("Usage ledger update failed")
		return nil, errNotAuthorized
	}

	decision := &QuotaDecision{
		User:    user,
		Result:  result,
		Limit:   s.cfg.MaxPerDay,
		ResetAt: nextUTCMidnight(now),
	}

	if !result.Outcome.Allowed() {
		return decision, errors.New(errors.ErrRateLimited, "Max API calls exceeded.")
	}
	return decision, nil
}

func (s *quotaService) Usage(ctx context.Context, user *models.User) (*UsageStats, error) {
	now := s.now()
	history, err := s.usageRepo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	today := models.UsageDate(now)
	count := 0
	for _, entry := range history {
		if entry.Date == today {
			count = entry.Count
		}
	}

	remaining := s.cfg.MaxPerDay - count
	if remaining < 0 {
		remaining = 0
	}

	return &UsageStats{
		Date:              today,
		CurrentCount:      count,
		Limit:             s.cfg.MaxPerDay,
		RemainingRequests: remaining,
		ResetAt:           nextUTCMidnight(now),
		History:           history,
	}, nil
}

func nextUTCMidnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
