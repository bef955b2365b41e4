package api

import (
	"sync"

	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per owner.
type limiterStore struct {
	limit    RateLimit
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

func newLimiterStore(limit RateLimit) *limiterStore {
	if limit.PerSecond <= 0 {
		limit.PerSecond = 10
	}
	if limit.Burst <= 0 {
		limit.Burst = 20
	}
	return &limiterStore{limit: limit, limiters: make(map[string]*rate.Limiter)}
}

func (s *limiterStore) get(owner string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[owner]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.limit.PerSecond), s.limit.Burst)
		s.limiters[owner] = limiter
	}
	return limiter
}
