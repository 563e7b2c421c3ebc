package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/buddybot/pkg/log"
)

const (
	ProviderNone       = "none"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGemini     = "gemini"
	ProviderCustom     = "custom"
)

type LLMConfig struct {
	Provider string `env:"BUDDY_LLM_PROVIDER" envDefault:"none"`
	Model    string `env:"BUDDY_LLM_MODEL"`

	OpenAIAPIKey        string `env:"BUDDY_OPENAI_API_KEY"`
	AnthropicAPIKey     string `env:"BUDDY_ANTHROPIC_API_KEY"`
	OpenRouterAPIKey    string `env:"BUDDY_OPENROUTER_API_KEY"`
	GeminiAPIKey        string `env:"BUDDY_GEMINI_API_KEY"`
	OllamaBaseURL       string `env:"BUDDY_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	OllamaAPIKey        string `env:"BUDDY_OLLAMA_API_KEY"`
	CustomOpenAIBaseURL string `env:"BUDDY_CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"BUDDY_CUSTOM_OPENAI_API_KEY"`

	Timeout           time.Duration `env:"BUDDY_LLM_TIMEOUT" envDefault:"20s"`
	MaxTokens         int           `env:"BUDDY_LLM_MAX_TOKENS" envDefault:"300"`
	PromptTokenBudget int           `env:"BUDDY_LLM_PROMPT_TOKEN_BUDGET" envDefault:"3000"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func (c LLMConfig) GetLLMTimeout() time.Duration {
	return c.Timeout
}

func (c LLMConfig) GetMaxOutputTokens() int {
	return c.MaxTokens
}

func (c LLMConfig) GetPromptTokenBudget() int {
	return c.PromptTokenBudget
}
