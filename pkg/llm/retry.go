package llm

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/harunnryd/vaani/pkg/chatctx"
	"github.com/harunnryd/vaani/pkg/errorsx"
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
	IsRetryable func(error) bool
	Sleep       func(time.Duration)
}

func (c *RetryConfig) defaults() {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 2 * time.Second
	}
	if c.IsRetryable == nil {
		c.IsRetryable = DefaultIsRetryable
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
}

func Retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) (Response, error)) (Response, error) {
	cfg.defaults()
	var lastErr error
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < cfg.MaxAttempts; i++ {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}
		resp, err := fn(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !cfg.IsRetryable(err) || i == cfg.MaxAttempts-1 {
			break
		}
		delay := backoffDelay(cfg.BaseDelay, cfg.MaxDelay, cfg.Jitter, i, r)
		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		default:
			cfg.Sleep(delay)
		}
	}
	return Response{}, errorsx.Wrap(lastErr, errorsx.ReasonLLMGenerate)
}

// DefaultIsRetryable treats every failure as transient except context
// cancellation and deadline expiry, where retrying only burns the
// caller's remaining turn time.
func DefaultIsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func backoffDelay(base, max time.Duration, jitter float64, attempt int, r *rand.Rand) time.Duration {
	pow := math.Pow(2, float64(attempt))
	d := time.Duration(float64(base) * pow)
	if d > max {
		d = max
	}
	if jitter > 0 {
		j := time.Duration(float64(d) * jitter * r.Float64())
		return d + j
	}
	return d
}

// RetryAdapter wraps an Adapter so Generate calls retry transient
// failures. Stream is not retried here: a partially spoken turn cannot
// be replayed, so stream recovery is a pipeline-level decision.
type RetryAdapter struct {
	inner Adapter
	cfg   RetryConfig
}

var _ Adapter = (*RetryAdapter)(nil)

func NewRetryAdapter(inner Adapter, cfg RetryConfig) *RetryAdapter {
	cfg.defaults()
	return &RetryAdapter{inner: inner, cfg: cfg}
}

func (a *RetryAdapter) Name() string { return a.inner.Name() }

func (a *RetryAdapter) Generate(ctx context.Context, history chatctx.History) (Response, error) {
	return Retry(ctx, a.cfg, func(ctx context.Context) (Response, error) {
		return a.inner.Generate(ctx, history)
	})
}

func (a *RetryAdapter) Stream(ctx context.Context, history chatctx.History) (<-chan string, error) {
	return a.inner.Stream(ctx, history)
}
