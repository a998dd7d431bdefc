package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/studypath/internal/logger"
	"github.com/abhisek/studypath/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewCompatProvider(cfg.Provider, cfg.OpenRouter)
	case "groq":
		base, err = NewCompatProvider(cfg.Provider, cfg.Groq)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → logging → base
	logged := WithLogging(base, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry, log)

	return WithTimeout(retried, cfg.Timeout), nil
}

// TimeoutProvider bounds each Generate call, retries included.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps p so every call gets at most d. A zero d disables the
// bound.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &TimeoutProvider{inner: p, timeout: d}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *TimeoutProvider) ModelID() string { return t.inner.ModelID() }

func (t *TimeoutProvider) Name() string { return t.inner.Name() }

// UnavailableProvider fails every call. Servers use it when no provider is
// configured so that model-free endpoints keep working.
type UnavailableProvider struct {
	cause error
}

// Unavailable returns a provider whose calls fail with
// ErrProviderUnavailable wrapping cause.
func Unavailable(cause error) *UnavailableProvider {
	return &UnavailableProvider{cause: cause}
}

func (u *UnavailableProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.cause}
}

func (u *UnavailableProvider) ModelID() string { return "none" }

func (u *UnavailableProvider) Name() string { return "unavailable" }
