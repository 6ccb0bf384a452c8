package ports

import (
	"context"
	"time"
)

// AnalyticsCache stores raw upstream analytics responses.
type AnalyticsCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (LockoutState, error)
	Reset(ctx context.Context, key string) error
}
