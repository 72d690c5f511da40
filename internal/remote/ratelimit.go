package remote

import (
	"context"
	"sort"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RateLimitConfig defines the limit for a method or for the whole service.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustainable rate (tokens added per second).
	RequestsPerSecond float64

	// BurstSize is the maximum number of requests allowed in a burst.
	BurstSize int
}

// DefaultRateLimits keeps a stuck button or a runaway script from flooding
// the player with transport commands.
var DefaultRateLimits = map[string]RateLimitConfig{
	// Transport commands restart audio on every call
	FullMethod(MethodPlay):     {RequestsPerSecond: 5, BurstSize: 10},
	FullMethod(MethodPause):    {RequestsPerSecond: 5, BurstSize: 10},
	FullMethod(MethodNext):     {RequestsPerSecond: 10, BurstSize: 20},
	FullMethod(MethodPrevious): {RequestsPerSecond: 10, BurstSize: 20},
	FullMethod(MethodJump):     {RequestsPerSecond: 10, BurstSize: 20},
	FullMethod(MethodRespond):  {RequestsPerSecond: 5, BurstSize: 10},

	// Rebuilding the sequence reads profiles and settings from disk
	FullMethod(MethodConfigure): {RequestsPerSecond: 1, BurstSize: 3},

	// Reads
	FullMethod(MethodStatus):     {RequestsPerSecond: 100, BurstSize: 200},
	FullMethod(MethodNavigation): {RequestsPerSecond: 100, BurstSize: 200},
	FullMethod(MethodPing):       {RequestsPerSecond: 1000, BurstSize: 1000},
}

// tokenBucket implements the token bucket algorithm.
type tokenBucket struct {
	mu         sync.Mutex
	now        func() time.Time
	tokens     float64
	lastUpdate time.Time
	ratePerSec float64
	maxTokens  float64
	requests   int64
	denied     int64
}

func newTokenBucket(cfg RateLimitConfig, now func() time.Time) *tokenBucket {
	return &tokenBucket{
		now:        now,
		tokens:     float64(cfg.BurstSize),
		lastUpdate: now(),
		ratePerSec: cfg.RequestsPerSecond,
		maxTokens:  float64(cfg.BurstSize),
	}
}

// refillLocked adds the tokens earned since the last update.
func (tb *tokenBucket) refillLocked() {
	now := tb.now()
	tb.tokens += now.Sub(tb.lastUpdate).Seconds() * tb.ratePerSec
	if tb.tokens > tb.maxTokens {
		tb.tokens = tb.maxTokens
	}
	tb.lastUpdate = now
}

// allow consumes a token when one is available.
func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.requests++
	tb.refillLocked()
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	tb.denied++
	return false
}

func (tb *tokenBucket) snapshot() (available float64, requests, denied int64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refillLocked()
	return tb.tokens, tb.requests, tb.denied
}

// RateLimiter manages per-method token buckets plus an optional global one.
type RateLimiter struct {
	mu      sync.RWMutex
	now     func() time.Time
	buckets map[string]*tokenBucket
	configs map[string]RateLimitConfig
	global  *tokenBucket
	enabled bool

	globalConfig *RateLimitConfig
}

// RateLimiterOption configures the RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithMethodLimits overrides limits for specific methods.
func WithMethodLimits(limits map[string]RateLimitConfig) RateLimiterOption {
	return func(rl *RateLimiter) {
		for method, cfg := range limits {
			rl.configs[method] = cfg
		}
	}
}

// WithGlobalLimit sets a limit applied to every method.
func WithGlobalLimit(cfg RateLimitConfig) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.globalConfig = &cfg
	}
}

// WithEnabled enables or disables rate limiting.
func WithEnabled(enabled bool) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.enabled = enabled
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// NewRateLimiter creates a rate limiter seeded with DefaultRateLimits.
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		now:     time.Now,
		buckets: make(map[string]*tokenBucket),
		configs: make(map[string]RateLimitConfig),
		enabled: true,
	}
	for method, cfg := range DefaultRateLimits {
		rl.configs[method] = cfg
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.globalConfig != nil {
		rl.global = newTokenBucket(*rl.globalConfig, rl.now)
	}
	return rl
}

// Allow reports whether a call to method may proceed.
func (rl *RateLimiter) Allow(method string) bool {
	if !rl.IsEnabled() {
		return true
	}
	if rl.global != nil && !rl.global.allow() {
		return false
	}
	bucket := rl.bucket(method)
	if bucket == nil {
		return true
	}
	return bucket.allow()
}

// bucket returns the bucket for a method, creating it on first use. Methods
// without a configured limit get none.
func (rl *RateLimiter) bucket(method string) *tokenBucket {
	rl.mu.RLock()
	bucket, ok := rl.buckets[method]
	rl.mu.RUnlock()
	if ok {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if bucket, ok = rl.buckets[method]; ok {
		return bucket
	}
	cfg, ok := rl.configs[method]
	if !ok {
		return nil
	}
	bucket = newTokenBucket(cfg, rl.now)
	rl.buckets[method] = bucket
	return bucket
}

// MethodStats describes the state of one bucket.
type MethodStats struct {
	Method         string
	Available      float64
	RequestsPerSec float64
	BurstSize      int
	TotalRequests  int64
	DeniedRequests int64
}

// DeniedPercentage returns the share of denied requests.
func (s MethodStats) DeniedPercentage() float64 {
	if s.TotalRequests == 0 {
		return 0
	}
	return float64(s.DeniedRequests) / float64(s.TotalRequests) * 100
}

// Stats returns statistics for every configured method, sorted by method.
func (rl *RateLimiter) Stats() []MethodStats {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	stats := make([]MethodStats, 0, len(rl.configs))
	for method, cfg := range rl.configs {
		ms := MethodStats{
			Method:         method,
			RequestsPerSec: cfg.RequestsPerSecond,
			BurstSize:      cfg.BurstSize,
			Available:      float64(cfg.BurstSize),
		}
		if bucket, ok := rl.buckets[method]; ok {
			ms.Available, ms.TotalRequests, ms.DeniedRequests = bucket.snapshot()
		}
		stats = append(stats, ms)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Method < stats[j].Method })
	return stats
}

// GlobalStats returns statistics for the global limit, or nil without one.
func (rl *RateLimiter) GlobalStats() *MethodStats {
	if rl.global == nil {
		return nil
	}
	available, total, denied := rl.global.snapshot()
	return &MethodStats{
		Method:         "global",
		Available:      available,
		RequestsPerSec: rl.globalConfig.RequestsPerSecond,
		BurstSize:      rl.globalConfig.BurstSize,
		TotalRequests:  total,
		DeniedRequests: denied,
	}
}

// SetEnabled enables or disables rate limiting at runtime.
func (rl *RateLimiter) SetEnabled(enabled bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.enabled = enabled
}

// IsEnabled reports whether rate limiting is on.
func (rl *RateLimiter) IsEnabled() bool {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return rl.enabled
}

// UnaryServerInterceptor rejects calls over the limit with ResourceExhausted.
func (rl *RateLimiter) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !rl.Allow(info.FullMethod) {
			return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded for method %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}
