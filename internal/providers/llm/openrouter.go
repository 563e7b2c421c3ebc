package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sandevgo/buddybot/internal/core"
)

const openRouterBaseURL = "https://openrouter.ai/api"

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(apiKey, model string) *OpenRouter {
	return newOpenRouterAt(openRouterBaseURL, apiKey, model)
}

func newOpenRouterAt(baseURL, apiKey, model string) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.BuddyRepositoryURL,
				"X-Title":      core.BuddyName,
			},
		}),
	}
}

// Models uses OpenRouter's catalogue, which carries names and context lengths.
func (o *OpenRouter) Models(ctx context.Context) ([]Model, error) {
	var result struct {
		Data []Model `json:"data"`
	}
	if err := o.doJSON(ctx, http.MethodGet, "/v1/models", nil, o.headers(), &result); err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	return result.Data, nil
}
