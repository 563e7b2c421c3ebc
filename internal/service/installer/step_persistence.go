package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/buddybot/internal/config"
)

// SaveEnvStep writes the collected configuration to the runtime .env file
type SaveEnvStep struct {
	path  string
	err   error
	saved bool
}

func NewSaveEnvStep() Step {
	return &SaveEnvStep{path: config.GetEnvFilePath()}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return next
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := SaveEnv(s.path, state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved to " + s.path + "\n"
	}
	return "Saving configuration...\n"
}
