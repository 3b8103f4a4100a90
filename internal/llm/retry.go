package llm

import (
	"context"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"vetstudy-backend/internal/logger"
)

// Retrying repeats a failed completion at most MaxRetries times when the
// failure is retryable. With a non-zero Budget, a retry is only started when
// a full attempt still fits in the time left.
type Retrying struct {
	Next       Completer
	MaxRetries int
	Backoff    time.Duration
	Budget     time.Duration
	Log        *logger.Logger
}

func NewRetrying(next Completer, maxRetries int, backoff time.Duration, log *logger.Logger) *Retrying {
	return &Retrying{Next: next, MaxRetries: maxRetries, Backoff: backoff, Log: log}
}

func (r *Retrying) Complete(ctx context.Context, req Request) (*Completion, error) {
	started := time.Now()
	attempts := 0
	for {
		attempts++
		out, err := r.Next.Complete(ctx, req)
		if err == nil {
			out.Attempts = attempts
			return out, nil
		}
		if attempts > r.MaxRetries || ctx.Err() != nil || !IsRetryable(err) {
			return nil, err
		}

		wait := jitter(r.Backoff)
		if r.Budget > 0 && time.Since(started)+wait+req.Timeout > r.Budget {
			if r.Log != nil {
				r.Log.Warn("completion attempt failed, no time left to retry",
					"attempt", attempts,
					"model", req.Model,
					"elapsed", time.Since(started).String(),
					"error", err.Error(),
				)
			}
			return nil, err
		}
		if r.Log != nil {
			r.Log.Warn("completion attempt failed, retrying",
				"attempt", attempts,
				"model", req.Model,
				"wait", wait.String(),
				"error", err.Error(),
			)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}
}

func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := float64(base) * 0.2
	return time.Duration(float64(base) - delta + rand.Float64()*2*delta)
}

// Limited throttles outbound calls to the provider's request quota.
type Limited struct {
	Next    Completer
	Limiter *rate.Limiter
}

// NewLimited allows perMinute calls per minute; zero or less disables the limit.
func NewLimited(next Completer, perMinute int) *Limited {
	limit := rate.Inf
	burst := 1
	if perMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(perMinute))
		burst = perMinute
	}
	return &Limited{Next: next, Limiter: rate.NewLimiter(limit, burst)}
}

func (l *Limited) Complete(ctx context.Context, req Request) (*Completion, error) {
	if err := l.Limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{Err: err}
	}
	return l.Next.Complete(ctx, req)
}
