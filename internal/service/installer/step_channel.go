package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	channelTelegram = "telegram"
	channelDiscord  = "discord"
	channelHTTP     = "http"
	channelMCP      = "mcp"
)

var channelChoices = []item{
	{id: channelTelegram, title: "Telegram"},
	{id: channelDiscord, title: "Discord"},
	{id: channelHTTP, title: "HTTP API", desc: "ingest and query endpoints"},
	{id: channelMCP, title: "MCP server", desc: "exposes the context store as tools"},
}

// ChannelStep toggles the transports the bot starts besides the local CLI.
type ChannelStep struct {
	cursor   int
	selected map[string]bool
}

func NewChannelStep() Step {
	return &ChannelStep{selected: make(map[string]bool)}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
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
		if s.cursor < len(channelChoices)-1 {
			s.cursor++
		}
	case " ", "x":
		id := channelChoices[s.cursor].id
		s.selected[id] = !s.selected[id]
	case "enter":
		state.App.EnableTelegram = s.selected[channelTelegram]
		state.App.EnableDiscord = s.selected[channelDiscord]
		state.App.EnableHTTP = s.selected[channelHTTP]
		state.App.EnableMCP = s.selected[channelMCP]
		return nil, nil
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	checked := func(i int) bool { return s.selected[channelChoices[i].id] }
	return renderChoices("Select the chat channels (the local CLI is always on):", channelChoices, s.cursor, checked) +
		"\n(space to toggle, enter to confirm)\n"
}
