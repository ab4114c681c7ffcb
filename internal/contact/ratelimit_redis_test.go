package contact

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLedger(t *testing.T, window time.Duration, max int) (*RedisLedger, *fakeClock) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewRedisLedger(client, window, max, WithRedisClock(clock.Now)), clock
}

func TestRedisLedgerAdmitsUpToLimit(t *testing.T) {
	ledger, clock := newTestRedisLedger(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, d.Limited, "attempt %d should be admitted", i+1)
		clock.Advance(time.Second)
	}

	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Limited)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestRedisLedgerRetryAfterTracksOldestAttempt(t *testing.T) {
	ledger, clock := newTestRedisLedger(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	clock.Advance(30 * time.Second)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Limited)

	// Oldest attempt leaves the window in 10m minus the 35s elapsed.
	assert.Equal(t, 9*time.Minute+25*time.Second, d.RetryAfter)
}

func TestRedisLedgerWindowSlides(t *testing.T) {
	ledger, clock := newTestRedisLedger(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	d, _ := ledger.Check(ctx, "1.2.3.4")
	require.True(t, d.Limited)

	// Once the oldest attempt falls out of the window, the next request is
	// admitted again.
	clock.Advance(10 * time.Minute)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Limited)
}

func TestRedisLedgerIsKeyedPerIdentity(t *testing.T) {
	ledger, clock := newTestRedisLedger(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	d, _ := ledger.Check(ctx, "1.2.3.4")
	require.True(t, d.Limited)

	// A different identity has its own independent budget.
	d, err := ledger.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.False(t, d.Limited)
}

func TestRedisLedgerRejectionDoesNotConsumeBudget(t *testing.T) {
	ledger, clock := newTestRedisLedger(t, 10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		clock.Advance(time.Second)
	}

	// Hammering while limited must not push the recovery point out.
	for i := 0; i < 10; i++ {
		d, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Limited)
		clock.Advance(time.Second)
	}

	clock.Advance(10 * time.Minute)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Limited)
}
