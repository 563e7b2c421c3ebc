package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
)

// Provider is a text generator that can also list its models.
type Provider interface {
	core.TextGenerator
	ModelLister
}

// NewProvider builds the raw provider selected by cfg. Gemini has no listing API and is
// returned by NewGenerator only.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model), nil
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Model), nil
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model), nil
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model), nil
	case config.ProviderCustom:
		return NewCustom(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// NewGenerator returns the text generator used by the answerer, wrapped with retries.
// Provider "none" yields a nil generator so that every answer comes from the fallback.
func NewGenerator(ctx context.Context, cfg *config.LLMConfig) (core.TextGenerator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	var gen core.TextGenerator
	switch cfg.Provider {
	case "", config.ProviderNone:
		return nil, nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiAPIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		p, err := NewProvider(cfg)
		if err != nil {
			return nil, err
		}
		gen = p
	}

	return NewRetrying(gen, NewRetryConfig()), nil
}
