package memory

import (
	"context"
	"sync"
	"time"

	"github.com/thrivebrands/beaconiq/internal/ports"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

type AnalyticsCache struct {
	mu    sync.Mutex
	items map[string]cacheEntry
	nowFn func() time.Time
}

func NewAnalyticsCache() *AnalyticsCache {
	return &AnalyticsCache{items: map[string]cacheEntry{}, nowFn: time.Now}
}

func (c *AnalyticsCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.items[key]
	if !ok || c.nowFn().After(entry.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), entry.value...), true, nil
}

func (c *AnalyticsCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry{value: append([]byte(nil), value...), expiresAt: c.nowFn().Add(ttl)}
	return nil
}

func (c *AnalyticsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	return nil
}

type LockoutStore struct {
	mu    sync.Mutex
	items map[string]ports.LockoutState
}

func NewLockoutStore() *LockoutStore {
	return &LockoutStore{items: map[string]ports.LockoutState{}}
}

func (s *LockoutStore) Get(_ context.Context, key string) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[key], nil
}

func (s *LockoutStore) RecordFailure(_ context.Context, key string, now time.Time, threshold int, window time.Duration) (ports.LockoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.items[key]
	state.FailedCount++
	if state.FailedCount >= threshold {
		until := now.Add(window)
		state.LockedUntil = &until
	}
	s.items[key] = state
	return state, nil
}

func (s *LockoutStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
