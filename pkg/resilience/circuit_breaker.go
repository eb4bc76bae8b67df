package resilience

import (
	"errors"
	"sync"
	"time"
)

// RateLimitError marks a provider 429. The circuit breaker counts only
// these; ordinary connect failures stay the retry layer's problem.
type RateLimitError struct {
	Provider string
	Message  string
}

func (e RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "rate limited"
	}
	if e.Provider == "" {
		return msg
	}
	return e.Provider + ": " + msg
}

// IsRateLimit reports whether err is, or wraps, a RateLimitError.
func IsRateLimit(err error) bool {
	var rl RateLimitError
	return errors.As(err, &rl)
}

// CircuitBreaker sheds LLM requests after consecutive rate-limit
// failures, so a throttled provider is not hammered into a longer
// throttle window. It opens for one cooldown after `threshold`
// consecutive 429s and closes again when the cooldown passes; any
// success clears the count.
type CircuitBreaker struct {
	mu          sync.Mutex
	consecutive int
	threshold   int
	openUntil   time.Time
	cooldown    time.Duration
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{threshold: threshold, cooldown: cooldown}
}

// Allow reports whether a request may go out now.
func (c *CircuitBreaker) Allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !time.Now().Before(c.openUntil)
}

// OnSuccess closes the breaker and clears the failure streak.
func (c *CircuitBreaker) OnSuccess() {
	c.mu.Lock()
	c.consecutive = 0
	c.openUntil = time.Time{}
	c.mu.Unlock()
}

// OnError feeds a request outcome in. Only rate-limit errors count
// toward opening; everything else is ignored here.
func (c *CircuitBreaker) OnError(err error) {
	if !IsRateLimit(err) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutive++
	if c.consecutive >= c.threshold {
		c.openUntil = time.Now().Add(c.cooldown)
	}
}
