package services

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"time"

	"bux-api/internal/models"
)

const (
	APIKeyLength   = 30
	apiKeyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var apiKeyRegex = regexp.MustCompile(`^[0-9a-z]{30}$`)

// APIKeyService issues origin-bound API keys.
type APIKeyService interface {
	GenerateAPIKey() (string, error)
	// IssueBinding binds a fresh key to origin and resets the usage ledger to
	// a single zero entry for today. The caller persists the user.
	IssueBinding(user *models.User, origin string) (*models.User, error)
}

type apiKeyService struct {
	now func() time.Time
}

func NewAPIKeyService() APIKeyService {
	return &apiKeyService{now: time.Now}
}

func (s *apiKeyService) GenerateAPIKey() (string, error) {
	return GenerateAPIKey()
}

func (s *apiKeyService) IssueBinding(user *models.User, origin string) (*models.User, error) {
	key, err := GenerateAPIKey()
	if err != nil {
		return nil, err
	}

	user.Host = origin
	user.APIKey = key
	user.Usage = []models.UsageEntry{{Date: models.UsageDate(s.now()), Count: 0}}
	return user, nil
}

// GenerateAPIKey draws one uniform base-36 digit per position.
func GenerateAPIKey() (string, error) {
	// 252 is the largest multiple of 36 that fits in a byte; higher bytes
	// are redrawn to keep every digit equally likely.
	const ceiling = 252

	key := make([]byte, 0, APIKeyLength)
	buf := make([]byte, APIKeyLength)
	for len(key) < APIKeyLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate api key: %w", err)
		}
		for _, b := range buf {
			if b >= ceiling {
				continue
			}
			key = append(key, apiKeyAlphabet[int(b)%len(apiKeyAlphabet)])
			if len(key) == APIKeyLength {
				break
			}
		}
	}
	return string(key), nil
}

// ValidAPIKey reports whether key has the issued shape.
func ValidAPIKey(key string) bool {
	return apiKeyRegex.MatchString(key)
}
