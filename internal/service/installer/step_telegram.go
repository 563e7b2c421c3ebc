package installer

import (
	"errors"
	"strings"
)

var (
	errInvalidURL           = errors.New("expected an http(s) URL with a host")
	errInvalidTelegramToken = errors.New("a Telegram token looks like 123456789:ABCDEF...")
)

// NewTelegramTokenStep collects the Telegram bot token when Telegram was selected.
func NewTelegramTokenStep() Step {
	return newInputStep(inputField{
		applies: func(state *InstallState) bool { return state.App.EnableTelegram },
		title:   func(*InstallState) string { return "Telegram Bot Token" },
		placeholder: func(*InstallState) string {
			return "123456789:ABCDEF..."
		},
		secret: true,
		validate: func(value string) error {
			if id, secret, ok := strings.Cut(value, ":"); !ok || id == "" || secret == "" {
				return errInvalidTelegramToken
			}
			return nil
		},
		apply: func(state *InstallState, value string) { state.Telegram.Token = value },
	})
}

// NewDiscordTokenStep collects the Discord bot token when Discord was selected.
func NewDiscordTokenStep() Step {
	return newInputStep(inputField{
		applies:     func(state *InstallState) bool { return state.App.EnableDiscord },
		title:       func(*InstallState) string { return "Discord Bot Token" },
		placeholder: func(*InstallState) string { return "MTA..." },
		secret:      true,
		apply:       func(state *InstallState, value string) { state.Discord.Token = value },
	})
}
