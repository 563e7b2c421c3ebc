package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/pkg/env"
)

// InstallState collects the answers of the wizard in the same structs the bot parses at start.
type InstallState struct {
	App      config.AppConfig
	LLM      config.LLMConfig
	Telegram config.TelegramConfig
	Discord  config.DiscordConfig
}

func NewInstallState() *InstallState {
	return &InstallState{
		LLM: config.LLMConfig{Provider: config.ProviderNone},
	}
}

// Render returns the .env content. Unset values are left out so envDefault applies.
func (s *InstallState) Render() (string, error) {
	var b strings.Builder
	for _, c := range []any{&s.LLM, &s.App, &s.Telegram, &s.Discord} {
		out, err := env.MarshalEnv(c)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// SaveEnv writes the rendered state to path. An existing file is never overwritten.
func SaveEnv(path string, state *InstallState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf(".env file already exists at %s", path)
	}

	content, err := state.Render()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
