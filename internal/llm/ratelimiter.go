package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider wraps a Provider with a token bucket so that bursts of
// concurrent conversations stay under the provider's requests-per-minute quota.
type RateLimitedProvider struct {
	provider Provider
	rpm      int
	interval time.Duration

	mu       sync.Mutex
	tokens   int
	lastFill time.Time
}

// NewRateLimitedProvider wraps the given provider with a rate limiter
// that allows at most rpm requests per minute. A non-positive rpm disables limiting.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		rpm:      rpm,
		interval: time.Minute / time.Duration(rpm),
		tokens:   rpm,
		lastFill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

// take claims a token, returning how long to wait when none is available.
func (r *RateLimitedProvider) take(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if refill := int(now.Sub(r.lastFill) / r.interval); refill > 0 {
		r.tokens = min(r.rpm, r.tokens+refill)
		r.lastFill = r.lastFill.Add(time.Duration(refill) * r.interval)
	}
	if r.tokens > 0 {
		r.tokens--
		return 0
	}
	return r.interval - now.Sub(r.lastFill)
}

func (r *RateLimitedProvider) wait(ctx context.Context) error {
	for {
		delay := r.take(time.Now())
		if delay <= 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
