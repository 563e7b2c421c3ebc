package installer

import (
	"net/url"
	"strings"

	"github.com/sandevgo/buddybot/internal/config"
)

// apiKeyTarget returns the LLMConfig field holding the key of the chosen provider.
func apiKeyTarget(state *InstallState) (*string, string) {
	switch state.LLM.Provider {
	case config.ProviderOpenAI:
		return &state.LLM.OpenAIAPIKey, "OpenAI API Key"
	case config.ProviderAnthropic:
		return &state.LLM.AnthropicAPIKey, "Anthropic API Key"
	case config.ProviderOpenRouter:
		return &state.LLM.OpenRouterAPIKey, "OpenRouter API Key"
	case config.ProviderGemini:
		return &state.LLM.GeminiAPIKey, "Gemini API Key"
	case config.ProviderOllama:
		return &state.LLM.OllamaAPIKey, "Ollama API Key"
	case config.ProviderCustom:
		return &state.LLM.CustomOpenAIAPIKey, "endpoint API Key"
	default:
		return nil, ""
	}
}

// keyOptional is true for self hosted endpoints that may run without auth.
func keyOptional(state *InstallState) bool {
	return state.LLM.Provider == config.ProviderOllama || state.LLM.Provider == config.ProviderCustom
}

// NewAPIKeyStep collects the provider API key. Skipped when no provider is chosen.
func NewAPIKeyStep() Step {
	return newInputStep(inputField{
		applies: func(state *InstallState) bool {
			target, _ := apiKeyTarget(state)
			return target != nil
		},
		title: func(state *InstallState) string {
			_, title := apiKeyTarget(state)
			return title
		},
		placeholder: func(state *InstallState) string {
			switch state.LLM.Provider {
			case config.ProviderAnthropic:
				return "sk-ant-..."
			case config.ProviderOpenRouter:
				return "sk-or-v1-..."
			case config.ProviderGemini:
				return "AIza..."
			case config.ProviderOpenAI:
				return "sk-..."
			default:
				return ""
			}
		},
		secret:   true,
		optional: keyOptional,
		apply: func(state *InstallState, value string) {
			target, _ := apiKeyTarget(state)
			*target = value
		},
	})
}

// NewBaseURLStep asks for the endpoint of Ollama or a custom OpenAI compatible server.
func NewBaseURLStep() Step {
	return newInputStep(inputField{
		applies: func(state *InstallState) bool {
			return state.LLM.Provider == config.ProviderOllama || state.LLM.Provider == config.ProviderCustom
		},
		title: func(state *InstallState) string {
			if state.LLM.Provider == config.ProviderOllama {
				return "Ollama base URL"
			}
			return "custom OpenAI base URL"
		},
		placeholder: func(state *InstallState) string {
			if state.LLM.Provider == config.ProviderOllama {
				return "http://localhost:11434"
			}
			return "https://api.example.com/v1"
		},
		initial: func(state *InstallState) string {
			if state.LLM.Provider == config.ProviderOllama {
				return "http://localhost:11434"
			}
			return ""
		},
		validate: validateBaseURL,
		apply: func(state *InstallState, value string) {
			value = strings.TrimRight(value, "/")
			if state.LLM.Provider == config.ProviderOllama {
				state.LLM.OllamaBaseURL = value
				return
			}
			state.LLM.CustomOpenAIBaseURL = value
		},
	})
}

func validateBaseURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errInvalidURL
	}
	return nil
}
