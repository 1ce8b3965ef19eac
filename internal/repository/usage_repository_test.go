package repository

import (
	"context"
	"sync"
	"testing"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const today = "2026-10-18"

func seedUser(t *testing.T, repo UserRepository, usage ...models.UsageEntry) *models.User {
	t.Helper()
	user := &models.User{
		Name:   "testuser",
		Email:  "test@mail.com",
		Hash:   "hash",
		Salt:   "salt",
		Host:   "http://localhost:3000",
		APIKey: "an0qrr5i9u0q4km27hv2hue3ywx3uu",
		Usage:  usage,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestConsume_CreatesFirstEntryOfDay(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users)

	result, err := usage.Consume(context.Background(), user.ID, today, 100)
	require.NoError(t, err)
	assert.Equal(t, models.UsageCreatedToday, result.Outcome)
	assert.Equal(t, 1, result.Count)

	entry, err := usage.GetByUserAndDate(context.Background(), user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Count)
}

func TestConsume_IncrementsBelowLimit(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users, models.UsageEntry{Date: today, Count: 1})

	result, err := usage.Consume(context.Background(), user.ID, today, 100)
	require.NoError(t, err)
	assert.Equal(t, models.UsageIncremented, result.Outcome)
	assert.Equal(t, 2, result.Count)
}

func TestConsume_LimitBoundary(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users, models.UsageEntry{Date: today, Count: 99})
	ctx := context.Background()

	first, err := usage.Consume(ctx, user.ID, today, 100)
	require.NoError(t, err)
	assert.Equal(t, models.UsageIncremented, first.Outcome)
	assert.Equal(t, 100, first.Count)

	second, err := usage.Consume(ctx, user.ID, today, 100)
	require.NoError(t, err)
	assert.Equal(t, models.UsageQuotaExceeded, second.Outcome)
	assert.Equal(t, 100, second.Count)

	entry, err := usage.GetByUserAndDate(ctx, user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 100, entry.Count)
}

func TestConsume_OldEntriesUntouched(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users, models.UsageEntry{Date: "2021-02-26", Count: 257})
	ctx := context.Background()

	result, err := usage.Consume(ctx, user.ID, today, 100)
	require.NoError(t, err)
	assert.Equal(t, models.UsageCreatedToday, result.Outcome)

	entries, err := usage.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2021-02-26", entries[0].Date)
	assert.Equal(t, 257, entries[0].Count)
	assert.Equal(t, today, entries[1].Date)
	assert.Equal(t, 1, entries[1].Count)
}

func TestConsume_ZeroLimitRejects(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users)

	result, err := usage.Consume(context.Background(), user.ID, today, 0)
	require.NoError(t, err)
	assert.Equal(t, models.UsageQuotaExceeded, result.Outcome)

	_, err = usage.GetByUserAndDate(context.Background(), user.ID, today)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestConsume_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	gdb := testutil.NewDB(t)
	users := NewUserRepository(gdb)
	usage := NewUsageRepository(gdb)
	user := seedUser(t, users)

	const limit = 10
	const callers = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := usage.Consume(context.Background(), user.ID, today, limit)
			if err != nil {
				t.Errorf("consume: %v", err)
				return
			}
			if result.Outcome.Allowed() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed)
	entry, err := usage.GetByUserAndDate(context.Background(), user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, limit, entry.Count)
}
