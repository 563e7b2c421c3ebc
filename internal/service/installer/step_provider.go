package installer

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/buddybot/internal/config"
)

var providerChoices = []item{
	{id: config.ProviderNone, title: "None", desc: "answers come from the built-in keyword fallback"},
	{id: config.ProviderOpenAI, title: "OpenAI"},
	{id: config.ProviderAnthropic, title: "Anthropic"},
	{id: config.ProviderOpenRouter, title: "OpenRouter"},
	{id: config.ProviderOllama, title: "Ollama", desc: "local models"},
	{id: config.ProviderGemini, title: "Gemini"},
	{id: config.ProviderCustom, title: "Custom", desc: "any OpenAI compatible endpoint"},
}

// ProviderStep selects the text generator behind /ask.
type ProviderStep struct {
	cursor int
}

func NewProviderStep() Step {
	return &ProviderStep{}
}

func (s *ProviderStep) Init() tea.Cmd {
	return nil
}

func (s *ProviderStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch key.String() {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(providerChoices)-1 {
			s.cursor++
		}
	case "enter":
		state.LLM.Provider = providerChoices[s.cursor].id
		return nil, nil
	}
	return s, nil
}

func (s *ProviderStep) View(state *InstallState) string {
	return renderChoices("Select the LLM provider that answers questions:", providerChoices, s.cursor, nil) +
		"\n(press enter to confirm, ctrl+c to quit)\n"
}
