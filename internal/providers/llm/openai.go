package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI talks to the official API through the openai-go SDK.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(apiKey, model string, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		// retries are handled by the Retrying wrapper
		option.WithMaxRetries(0),
	}, opts...)

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (o *OpenAI) Complete(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if maxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxOutputTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Models(ctx context.Context) ([]Model, error) {
	page, err := o.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}

	models := make([]Model, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, Model{ID: m.ID, Name: m.ID})
	}
	return models, nil
}
