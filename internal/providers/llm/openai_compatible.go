package llm

import (
	"context"
	"fmt"
	"net/http"
)

type OpenAICompatible struct {
	baseProvider
	authHeader   string
	authPrefix   string
	extraHeaders map[string]string
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	return &OpenAICompatible{
		baseProvider: newBaseProvider(cfg.BaseURL, cfg.APIKey, cfg.Model),
		authHeader:   cfg.AuthHeader,
		authPrefix:   cfg.AuthPrefix,
		extraHeaders: cfg.ExtraHeaders,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (o *OpenAICompatible) headers() map[string]string {
	headers := make(map[string]string, len(o.extraHeaders)+1)
	if o.authHeader != "" && o.apiKey != "" {
		headers[o.authHeader] = o.authPrefix + o.apiKey
	}
	for k, v := range o.extraHeaders {
		headers[k] = v
	}
	return headers
}

// Complete sends prompt as a single user turn to /v1/chat/completions.
func (o *OpenAICompatible) Complete(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	payload := chatRequest{
		Model:     o.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxOutputTokens,
	}

	var result chatResponse
	if err := o.doJSON(ctx, http.MethodPost, "/v1/chat/completions", payload, o.headers(), &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return result.Choices[0].Message.Content, nil
}

// Models lists /v1/models.
func (o *OpenAICompatible) Models(ctx context.Context) ([]Model, error) {
	var apiResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := o.doJSON(ctx, http.MethodGet, "/v1/models", nil, o.headers(), &apiResp); err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}

	models := make([]Model, 0, len(apiResp.Data))
	for _, m := range apiResp.Data {
		models = append(models, Model{ID: m.ID, Name: m.ID})
	}
	return models, nil
}
