package installer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/providers/llm"
)

const modelsTimeout = 30 * time.Second

// ModelStep lists the models of the chosen provider. Gemini has no listing API and keeps its default.
type ModelStep struct {
	list     list.Model
	loading  bool
	fetching bool
	err      error
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select AI Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return next
}

func fetchModels(cfg config.LLMConfig) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), modelsTimeout)
		defer cancel()

		p, err := llm.NewProvider(&cfg)
		if err != nil {
			return errMsg(err)
		}
		models, err := p.Models(ctx)
		if err != nil {
			return errMsg(err)
		}

		items := make([]list.Item, 0, len(models))
		for _, mod := range models {
			desc := "ID: " + mod.ID
			if mod.ContextLength > 0 {
				desc = fmt.Sprintf("ID: %s | Context: %d", mod.ID, mod.ContextLength)
			}
			items = append(items, item{id: mod.ID, title: mod.Name, desc: desc})
		}
		return modelsMsg(items)
	}
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch state.LLM.Provider {
	case "", config.ProviderNone, config.ProviderGemini:
		return nil, nil
	}

	if s.loading && !s.fetching {
		s.fetching = true
		return s, fetchModels(state.LLM)
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			switch msg.String() {
			case "enter":
				s.err = nil
				s.loading = true
				return s, next
			case "s":
				return nil, nil
			}
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)
			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.LLM.Model = i.id
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			"\n\nCheck your API key and endpoint.\n\n(press enter to retry, s to keep the default model)\n"
	}
	if s.loading {
		return fmt.Sprintf("Fetching models from %s...\n", state.LLM.Provider)
	}
	return s.list.View()
}
