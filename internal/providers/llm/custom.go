package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Custom reaches any OpenAI-compatible endpoint through langchaingo.
type Custom struct {
	llm llms.Model
	// catalogue lists models with the hand-rolled client, langchaingo has no listing API.
	catalogue *OpenAICompatible
}

func NewCustom(baseURL, apiKey, model string) (*Custom, error) {
	if baseURL == "" {
		return nil, errors.New("custom provider needs a base url")
	}
	if apiKey == "" {
		// langchaingo refuses an empty token, local servers ignore it
		apiKey = "none"
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL+"/v1"),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create langchaingo client: %w", err)
	}

	return &Custom{
		llm: llm,
		catalogue: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}, nil
}

func (c *Custom) Complete(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	var opts []llms.CallOption
	if maxOutputTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxOutputTokens))
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("custom completion: %w", err)
	}
	return text, nil
}

func (c *Custom) Models(ctx context.Context) ([]Model, error) {
	return c.catalogue.Models(ctx)
}
