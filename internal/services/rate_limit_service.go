package services

import (
	"sync"
	"time"

	"github.com/staynest/booking-backend/internal/config"
	"golang.org/x/time/rate"
)

// RateLimitService keeps one token bucket per client key
type RateLimitService struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	every    time.Duration
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// NewRateLimitService allows cfg.Requests per window with a matching burst
func NewRateLimitService(cfg config.RateLimitConfig) *RateLimitService {
	requests := cfg.Requests
	if requests <= 0 {
		requests = 20
	}
	window := time.Duration(cfg.WindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	return &RateLimitService{
		limiters: make(map[string]*limiterEntry),
		every:    window / time.Duration(requests),
		burst:    requests,
		now:      time.Now,
	}
}

// Check consumes one token from the bucket of key within limitType
func (s *RateLimitService) Check(limitType, key string) error {
	bucket := limitType + ":" + key

	s.mu.Lock()
	now := s.now()
	entry, ok := s.limiters[bucket]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.limiters[bucket] = entry
	}
	entry.lastSeen = now
	allowed := entry.limiter.AllowN(now, 1)
	s.mu.Unlock()

	if allowed {
		return nil
	}
	return &RateLimitError{
		Message:    "Too many requests. Please try again later.",
		RetryAfter: now.Add(s.every),
		Type:       limitType,
	}
}

// Cleanup drops limiters not used within idle. Returns how many were removed.
func (s *RateLimitService) Cleanup(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for key, entry := range s.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(s.limiters, key)
			removed++
		}
	}
	return removed
}

// Tracked returns the number of keys with a live limiter
func (s *RateLimitService) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
