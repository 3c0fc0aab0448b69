package ratelimiter

import (
	"context"
	"sync"
)

type FakeRateLimiter struct {
	IsAllowed bool
	Keys      []string
	lock      sync.Mutex
}

func NewFakeRateLimiter(isAllowed bool) *FakeRateLimiter {
	return &FakeRateLimiter{IsAllowed: isAllowed}
}

func (rl *FakeRateLimiter) CheckLimit(ctx context.Context, key string, limit Limit) Result {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	rl.Keys = append(rl.Keys, key)
	if rl.IsAllowed {
		return Allowed()
	}
	return NotAllowed()
}

// CountingRateLimiter denies a key once it has been checked more than limit.Value times.
type CountingRateLimiter struct {
	Counts map[string]int
	lock   sync.Mutex
}

func NewCountingRateLimiter() *CountingRateLimiter {
	return &CountingRateLimiter{Counts: make(map[string]int)}
}

func (rl *CountingRateLimiter) CheckLimit(ctx context.Context, key string, limit Limit) Result {
	rl.lock.Lock()
	defer rl.lock.Unlock()
	rl.Counts[key]++
	if rl.Counts[key] > int(limit.Value) {
		return NotAllowed()
	}
	return Allowed()
}
