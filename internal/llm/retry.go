package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/metrics"
)

// RetryProvider retries transient failures with exponential backoff and
// ±20% jitter.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	log    *logger.Logger
}

// WithRetry wraps p. A nil log discards retry warnings.
func WithRetry(p Provider, cfg RetryConfig, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &RetryProvider{inner: p, config: cfg, log: log}
}

// retryVerdict says whether an error is worth another attempt.
type retryVerdict int

const (
	giveUp retryVerdict = iota
	retryTransient
	// retryOnce is for invalid output: a second sample often parses, a
	// third rarely helps.
	retryOnce
)

func classifyRetry(err error) (retryVerdict, string) {
	var (
		maxTok   *ErrMaxTokensExceeded
		rejected *ErrRequestRejected
		invalid  *ErrInvalidResponse
		rl       *ErrRateLimit
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return giveUp, "context"
	case errors.As(err, &maxTok):
		return giveUp, "max_tokens"
	case errors.As(err, &rejected):
		return giveUp, "rejected"
	case errors.As(err, &invalid):
		return retryOnce, "invalid_response"
	case errors.As(err, &rl):
		return retryTransient, "rate_limit"
	default:
		return retryTransient, "unavailable"
	}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	var (
		lastErr        error
		invalidRetried bool
	)
	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		verdict, reason := classifyRetry(err)
		if verdict == giveUp || (verdict == retryOnce && invalidRetried) {
			return nil, err
		}
		if verdict == retryOnce {
			invalidRetried = true
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		wait := r.backoff(attempt, err)
		metrics.LLMRetries.WithLabelValues(r.inner.Name(), reason).Inc()
		r.log.Warn("llm call failed, retrying",
			"provider", r.inner.Name(),
			"purpose", PurposeFrom(ctx),
			"attempt", attempt+1,
			"reason", reason,
			"wait", wait,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

func (r *RetryProvider) ModelID() string { return r.inner.ModelID() }

func (r *RetryProvider) Name() string { return r.inner.Name() }

// backoff honours a server Retry-After on rate limits, otherwise grows
// InitialWait by Multiplier per attempt up to MaxWait.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	wait := math.Min(
		float64(r.config.InitialWait)*math.Pow(r.config.Multiplier, float64(attempt)),
		float64(r.config.MaxWait),
	)
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}
