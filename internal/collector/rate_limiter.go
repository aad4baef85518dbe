package collector

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out workspace queries so a large estate cannot
// hammer the query API. A zero or negative rate disables the cap.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter builds a token-bucket limiter allowing rps requests per
// second with bursts of up to twice that.
func NewRateLimiter(rps int) *RateLimiter {
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = rps * 2
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until the next request may proceed or ctx finishes.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
