package tips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Providers accepted by TIPS_PROVIDER.
const (
	ProviderNone   = "none"
	ProviderStatic = "static"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider  string
	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	CacheTTL  time.Duration
	CacheSize int
}

// New builds the configured Generator. AI providers fall back to the static
// rules when they fail, and every provider except none is cached.
func New(ctx context.Context, s Settings, logger *slog.Logger) (Generator, *CachedGenerator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var gen Generator
	switch s.Provider {
	case ProviderNone:
		return NewNone(), nil, nil
	case ProviderStatic, "":
		gen = NewStatic()
	case ProviderGemini:
		g, err := NewGemini(ctx, s.Gemini)
		if err != nil {
			return nil, nil, err
		}
		gen = withFallback(g, NewStatic(), s.Provider, logger)
	case ProviderOpenAI:
		g, err := NewOpenAI(s.OpenAI)
		if err != nil {
			return nil, nil, err
		}
		gen = withFallback(g, NewStatic(), s.Provider, logger)
	default:
		return nil, nil, fmt.Errorf("unknown tips provider: %s", s.Provider)
	}

	size := s.CacheSize
	if size <= 0 {
		size = 1000
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	cached := NewCached(gen, size, ttl)
	return cached, cached, nil
}

type fallbackGenerator struct {
	primary  Generator
	fallback Generator
	provider string
	logger   *slog.Logger
}

func withFallback(primary, fallback Generator, provider string, logger *slog.Logger) Generator {
	return &fallbackGenerator{primary: primary, fallback: fallback, provider: provider, logger: logger}
}

func (f *fallbackGenerator) Generate(ctx context.Context, req Request) ([]Tip, error) {
	tips, _, err := f.generate(ctx, req)
	return tips, err
}

// generate reports whether the tips came from the primary provider. Static
// fallback tips are not cached, so the provider is retried on the next request.
func (f *fallbackGenerator) generate(ctx context.Context, req Request) ([]Tip, bool, error) {
	tips, err := f.primary.Generate(ctx, req)
	if err == nil {
		return tips, true, nil
	}
	if errors.Is(err, ErrNoIncome) || ctx.Err() != nil {
		return nil, false, err
	}
	f.logger.WarnContext(ctx, "Tip provider failed, using static tips", "provider", f.provider, "error", err)
	tips, err = f.fallback.Generate(ctx, req)
	return tips, false, err
}
