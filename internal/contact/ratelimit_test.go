package contact

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source for ledger tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLedger(window time.Duration, max int) (*MemoryLedger, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewMemoryLedger(window, max, WithClock(clock.Now)), clock
}

func TestMemoryLedgerAdmitsUpToLimit(t *testing.T) {
	ledger, _ := newTestLedger(10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.False(t, d.Limited, "attempt %d should be admitted", i+1)
	}

	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, d.Limited)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestMemoryLedgerRetryAfterTracksOldestAttempt(t *testing.T) {
	ledger, clock := newTestLedger(10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
	}

	clock.Advance(30 * time.Second)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Limited)

	// Oldest attempt leaves the window in 9m30s.
	assert.Equal(t, 9*time.Minute+30*time.Second, d.RetryAfter)
}

func TestMemoryLedgerRetryAfterFlooredAtOneSecond(t *testing.T) {
	ledger, clock := newTestLedger(10*time.Minute, 1)
	ctx := context.Background()

	_, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)

	clock.Advance(10*time.Minute - time.Millisecond)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Limited)
	assert.Equal(t, time.Second, d.RetryAfter)
}

func TestMemoryLedgerWindowSlides(t *testing.T) {
	ledger, clock := newTestLedger(10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
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

func TestMemoryLedgerIsKeyedPerIdentity(t *testing.T) {
	ledger, _ := newTestLedger(10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
	}

	d, _ := ledger.Check(ctx, "1.2.3.4")
	require.True(t, d.Limited)

	// A different identity has its own independent budget.
	d, err := ledger.Check(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.False(t, d.Limited)
}

func TestMemoryLedgerRejectionDoesNotConsumeBudget(t *testing.T) {
	ledger, clock := newTestLedger(10*time.Minute, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
	}

	// Hammering while limited must not push the recovery point out.
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		d, err := ledger.Check(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, d.Limited)
	}

	clock.Advance(10 * time.Minute)
	d, err := ledger.Check(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Limited)
}
