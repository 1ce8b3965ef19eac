package services

import (
	"testing"
	"time"

	"bux-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKeyFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		key, err := GenerateAPIKey()
		require.NoError(t, err)
		assert.Len(t, key, APIKeyLength)
		assert.True(t, ValidAPIKey(key), key)
		seen[key] = true
	}
	assert.Len(t, seen, 200)
}

func TestValidAPIKey(t *testing.T) {
	assert.True(t, ValidAPIKey("0123456789abcdefghijklmnopqrst"))
	assert.False(t, ValidAPIKey("0123456789ABCDEFGHIJKLMNOPQRST"))
	assert.False(t, ValidAPIKey("short"))
	assert.False(t, ValidAPIKey("0123456789abcdefghijklmnopqrst-"))
}

func TestIssueBinding(t *testing.T) {
	svc := &apiKeyService{now: func() time.Time { return time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC) }}
	user := &models.User{
		Name:  "Reader",
		Usage: []models.UsageEntry{{Date: "2026-10-01", Count: 12}},
	}

	bound, err := svc.IssueBinding(user, "https://bux.example")
	require.NoError(t, err)
	assert.Same(t, user, bound)
	assert.Equal(t, "https://bux.example", user.Host)
	assert.True(t, ValidAPIKey(user.APIKey))
	assert.Equal(t, []models.UsageEntry{{Date: "2026-10-18", Count: 0}}, user.Usage)
}
