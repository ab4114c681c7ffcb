package contact

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedger keeps the sliding window in a Redis sorted set per identity,
// scored by attempt time in milliseconds, so every instance of the server
// enforces one shared limit.
type RedisLedger struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
}

// RedisOption configures a RedisLedger.
type RedisOption func(*RedisLedger)

// WithRedisClock overrides the ledger's time source for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(l *RedisLedger) { l.now = now }
}

func NewRedisLedger(client *redis.Client, window time.Duration, max int, opts ...RedisOption) *RedisLedger {
	l := &RedisLedger{
		client: client,
		window: window,
		max:    max,
		prefix: "contact:ratelimit:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *RedisLedger) Check(ctx context.Context, identity string) (Decision, error) {
	now := l.now()
	key := l.prefix + identity
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixMilli(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	if countCmd.Val() >= int64(l.max) {
		oldest := now
		if scored := oldestCmd.Val(); len(scored) > 0 {
			oldest = time.UnixMilli(int64(scored[0].Score))
		}
		return Decision{Limited: true, RetryAfter: retryAfter(oldest, l.window, now)}, nil
	}

	// Admission is a second round trip; two racing requests can both be
	// admitted at the boundary. The window is an abuse heuristic, not a
	// quota, so that slack is fine.
	admit := l.client.TxPipeline()
	admit.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	admit.Expire(ctx, key, l.window)
	if _, err := admit.Exec(ctx); err != nil {
		return Decision{}, err
	}

	return Decision{}, nil
}
