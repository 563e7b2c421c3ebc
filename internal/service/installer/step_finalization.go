package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultReminderSchedule posts the open action items digest on weekday mornings.
const DefaultReminderSchedule = "0 9 * * 1-5"

// FinalizationStep computes derived values
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return next
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(state)
	return nil, nil
}

func finalize(state *InstallState) {
	state.App.EnableTelegram = state.App.EnableTelegram && state.Telegram.Token != ""
	state.App.EnableDiscord = state.App.EnableDiscord && state.Discord.Token != ""

	// Reminders need a chat to post into.
	if (state.App.EnableTelegram || state.App.EnableDiscord) && state.App.ReminderSchedule == "" {
		state.App.ReminderSchedule = DefaultReminderSchedule
	}
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
