// Package resilience keeps the LLM socket usable through transient
// failures: a short flat-backoff retry for dials and a circuit breaker
// that sheds load while the provider is rate limiting.
package resilience

import "time"

// RetryPolicy re-runs an operation a fixed number of times with a flat
// pause between attempts. It is sized for websocket dials inside a live
// voice turn: the caller has at most a second or two before the silence
// is audible, so there is no exponential growth.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

func NewRetryPolicy(maxRetries int, backoff time.Duration) RetryPolicy {
	if maxRetries <= 0 {
		maxRetries = 2
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return RetryPolicy{MaxRetries: maxRetries, Backoff: backoff}
}

// Do runs fn until it returns nil or the attempts are spent, then
// returns the last error. fn decides what is worth retrying: a caller
// that hits a non-transient failure (a 429, a cancelled context)
// captures it and returns nil to stop the loop.
func (r RetryPolicy) Do(fn func() error) error {
	var err error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(r.Backoff)
		}
		if err = fn(); err == nil {
			return nil
		}
	}
	return err
}
