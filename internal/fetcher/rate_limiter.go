package fetcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter держит отдельный token bucket на каждый хост
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	rl.mu.Lock()
	limiter, exists := rl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[host] = limiter
	}
	rl.mu.Unlock()

	return limiter.Wait(ctx)
}
