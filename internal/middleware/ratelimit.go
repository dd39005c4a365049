// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/corpcms-go/internal/util"
)

// limiterCache manages a bounded map of rate limiters keyed by K.
type limiterCache[K comparable] struct {
	mu       sync.Mutex
	limiters map[K]*rate.Limiter
	rps      rate.Limit
	burst    int
	maxSize  int
}

func newLimiterCache[K comparable](rps rate.Limit, burst, maxSize int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rps:      rps,
		burst:    burst,
		maxSize:  maxSize,
	}
}

// get returns the limiter for key, creating it if needed. When the map
// grows past maxSize it is reset wholesale; per-key state is cheap to
// rebuild and an unbounded map is a memory leak.
func (c *limiterCache[K]) get(key K) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lim, ok := c.limiters[key]; ok {
		return lim
	}

	if len(c.limiters) >= c.maxSize {
		c.limiters = make(map[K]*rate.Limiter)
	}

	lim := rate.NewLimiter(c.rps, c.burst)
	c.limiters[key] = lim
	return lim
}

// GlobalRateLimiter applies a per-IP request rate limit across the API.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter creates a limiter allowing rps requests per second
// per client IP with the given burst.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		cache: newLimiterCache[string](rate.Limit(rps), burst, 10000),
	}
}

// Middleware rejects over-limit requests with 429.
func (g *GlobalRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := util.ClientIP(r)
		if !g.cache.get(ip).Allow() {
			w.Header().Set("Retry-After", "1")
			WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
