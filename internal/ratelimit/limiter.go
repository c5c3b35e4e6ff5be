// Package ratelimit provides per-key token bucket rate limiting for MCP tools.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited is returned by CheckLimit when a tool call is rejected.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter implements a per-key token bucket rate limiter.
// It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64 // tokens per second
	burst   int     // max burst size and initial token count
	nowFunc func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   burst,
		nowFunc: time.Now,
	}
}

// refill returns the bucket for key with tokens topped up to now. Callers hold mu.
func (l *Limiter) refill(key string) *bucket {
	now := l.nowFunc()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.burst), lastCheck: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastCheck).Seconds(); elapsed > 0 {
		b.tokens = min(b.tokens+l.rate*elapsed, float64(l.burst))
		b.lastCheck = now
	}
	return b
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.refill(key)
	if b.tokens < 1.0 {
		return false
	}
	b.tokens--
	return true
}

// Tokens returns the tokens currently available for key.
func (l *Limiter) Tokens(key string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refill(key).tokens
}

// Rate describes one tool's allowance.
type Rate struct {
	PerMinute float64
	Burst     int
}

// DefaultRates returns the per-tool allowances for the hyperscore MCP server.
// Simulation is the expensive call, so it gets the tightest budget.
func DefaultRates() map[string]Rate {
	return map[string]Rate{
		"hyperscore_simulate": {PerMinute: 20, Burst: 5},
		"hyperscore_graph":    {PerMinute: 30, Burst: 5},
		"hyperscore_results":  {PerMinute: 60, Burst: 10},
	}
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates limiters for the given rates, or DefaultRates when nil.
func NewToolLimiters(rates map[string]Rate) ToolLimiters {
	if rates == nil {
		rates = DefaultRates()
	}
	limiters := make(ToolLimiters, len(rates))
	for tool, r := range rates {
		limiters[tool] = NewLimiter(r.PerMinute/60.0, r.Burst)
	}
	return limiters
}

// CheckLimit checks the rate limit for a given tool name.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil
	}
	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}
	return nil
}
