package ratelimiting

import (
	"context"
	e "verifyme/internal/core/domain/errors"
	"verifyme/internal/core/domain/logging"
	ratelimiter "verifyme/internal/core/domain/rate_limiter"
)

// Guard counts attempts per key against a limit. A guard without a rate limiter
// lets everything through.
type Guard struct {
	log         logging.Logger
	rateLimiter ratelimiter.RateLimiter
	rateLimit   ratelimiter.Limit
}

func NewGuard(
	log logging.Logger,
	rateLimiter ratelimiter.RateLimiter,
	rateLimit ratelimiter.Limit,
) *Guard {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &Guard{
		log:         log,
		rateLimiter: rateLimiter,
		rateLimit:   rateLimit,
	}
}

func (g *Guard) IsEnabled() bool {
	return g.rateLimiter != nil
}

// Check records one attempt for key and fails with ErrRateLimitExceeded
// once the limit is reached.
func (g *Guard) Check(ctx context.Context, key string) error {
	if g.rateLimiter == nil {
		return nil
	}
	rate := g.rateLimiter.CheckLimit(ctx, key, g.rateLimit)
	if rate.IsAllowed {
		return nil
	}

	g.log.Warning(ctx, "Rate limit exceeded.", logging.Entry("key", key))
	return ratelimiter.ErrRateLimitExceeded
}
