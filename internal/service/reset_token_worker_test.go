package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/testutil"
)

func setupPurgeWorker() (*ResetTokenPurgeWorker, *testutil.MockResetTokenRepository) {
	repo := testutil.NewMockResetTokenRepository(nil)
	worker := NewResetTokenPurgeWorker(repo, zerolog.Nop(), ResetTokenPurgeConfig{
		Interval:  100 * time.Millisecond,
		Retention: 24 * time.Hour,
	})
	return worker, repo
}

func TestResetTokenPurgeWorker_DefaultConfig(t *testing.T) {
	config := DefaultResetTokenPurgeConfig()
	assert.Equal(t, time.Hour, config.Interval)
	assert.Equal(t, 24*time.Hour, config.Retention)

	worker := NewResetTokenPurgeWorker(testutil.NewMockResetTokenRepository(nil), zerolog.Nop(), ResetTokenPurgeConfig{})
	assert.Equal(t, time.Hour, worker.interval)
	assert.Equal(t, 24*time.Hour, worker.retention)
	assert.False(t, worker.IsRunning())
}

func TestResetTokenPurgeWorker_PurgeNow(t *testing.T) {
	worker, repo := setupPurgeWorker()
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)
	worker.now = func() time.Time { return now }

	usedLongAgo := now.Add(-30 * time.Hour)
	usedRecently := now.Add(-time.Hour)
	seed := func(hash string, expires time.Time, used *time.Time) {
		require.NoError(t, repo.Create(context.Background(), &domain.ResetToken{
			ID: uuid.New(), UserID: uuid.New(), TokenHash: hash, ExpiresAt: expires, UsedAt: used,
		}))
	}
	seed("expired-two-days-ago", now.Add(-48*time.Hour), nil)
	seed("expired-an-hour-ago", now.Add(-time.Hour), nil)
	seed("used-long-ago", now.Add(-29*time.Hour), &usedLongAgo)
	seed("used-recently", now.Add(time.Hour), &usedRecently)
	seed("live", now.Add(time.Hour), nil)

	deleted, err := worker.PurgeNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, []time.Time{now.Add(-24 * time.Hour)}, repo.DeleteStaleCalls)

	assert.NotContains(t, repo.Tokens, "expired-two-days-ago")
	assert.NotContains(t, repo.Tokens, "used-long-ago")
	assert.Contains(t, repo.Tokens, "expired-an-hour-ago")
	assert.Contains(t, repo.Tokens, "used-recently")
	assert.Contains(t, repo.Tokens, "live")
}

func TestResetTokenPurgeWorker_StartStop(t *testing.T) {
	worker, repo := setupPurgeWorker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx)
	assert.True(t, worker.IsRunning())

	// runs on startup and then on every tick
	assert.Eventually(t, func() bool { return repo.Calls() >= 2 }, 2*time.Second, 10*time.Millisecond)

	worker.Stop()
	assert.False(t, worker.IsRunning())

	// stopping again is a no-op
	worker.Stop()
}

func TestResetTokenPurgeWorker_ContextCancel(t *testing.T) {
	worker, _ := setupPurgeWorker()

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	cancel()

	assert.Eventually(t, func() bool { return !worker.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}
