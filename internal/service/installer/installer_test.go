package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/buddybot/internal/config"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drive feeds msgs to step and reports whether the step finished.
func drive(t *testing.T, step Step, state *InstallState, msgs ...tea.Msg) (Step, bool) {
	t.Helper()
	for _, msg := range msgs {
		next, _ := step.Update(msg, state, 80, 24)
		if next == nil {
			return nil, true
		}
		step = next
	}
	return step, false
}

func TestProviderStep(t *testing.T) {
	state := NewInstallState()
	_, done := drive(t, NewProviderStep(), state, key("down"), key("j"), key("enter"))

	require.True(t, done)
	assert.Equal(t, config.ProviderAnthropic, state.LLM.Provider)
}

func TestChannelStep(t *testing.T) {
	state := NewInstallState()
	step := NewChannelStep()

	_, done := drive(t, step, state,
		key("space"),
		key("down"), key("down"), key("x"),
		key("enter"),
	)

	require.True(t, done)
	assert.True(t, state.App.EnableTelegram)
	assert.False(t, state.App.EnableDiscord)
	assert.True(t, state.App.EnableHTTP)
	assert.False(t, state.App.EnableMCP)
}

func TestInputSteps(t *testing.T) {
	tests := []struct {
		name   string
		step   func() Step
		setup  func(*InstallState)
		typed  string
		check  func(*testing.T, *InstallState)
		reject bool
	}{
		{
			name:  "openai key",
			step:  NewAPIKeyStep,
			setup: func(s *InstallState) { s.LLM.Provider = config.ProviderOpenAI },
			typed: "sk-test",
			check: func(t *testing.T, s *InstallState) { assert.Equal(t, "sk-test", s.LLM.OpenAIAPIKey) },
		},
		{
			name:  "ollama key is optional",
			step:  NewAPIKeyStep,
			setup: func(s *InstallState) { s.LLM.Provider = config.ProviderOllama },
			check: func(t *testing.T, s *InstallState) { assert.Empty(t, s.LLM.OllamaAPIKey) },
		},
		{
			name:   "openai key is required",
			step:   NewAPIKeyStep,
			setup:  func(s *InstallState) { s.LLM.Provider = config.ProviderOpenAI },
			reject: true,
		},
		{
			name:  "custom base url",
			step:  NewBaseURLStep,
			setup: func(s *InstallState) { s.LLM.Provider = config.ProviderCustom },
			typed: "https://llm.internal/v1/",
			check: func(t *testing.T, s *InstallState) {
				assert.Equal(t, "https://llm.internal/v1", s.LLM.CustomOpenAIBaseURL)
			},
		},
		{
			name:   "base url needs a scheme",
			step:   NewBaseURLStep,
			setup:  func(s *InstallState) { s.LLM.Provider = config.ProviderCustom },
			typed:  "llm.internal",
			reject: true,
		},
		{
			name:  "ollama base url is prefilled",
			step:  NewBaseURLStep,
			setup: func(s *InstallState) { s.LLM.Provider = config.ProviderOllama },
			check: func(t *testing.T, s *InstallState) {
				assert.Equal(t, "http://localhost:11434", s.LLM.OllamaBaseURL)
			},
		},
		{
			name:  "telegram token",
			step:  NewTelegramTokenStep,
			setup: func(s *InstallState) { s.App.EnableTelegram = true },
			typed: "123:abc",
			check: func(t *testing.T, s *InstallState) { assert.Equal(t, "123:abc", s.Telegram.Token) },
		},
		{
			name:   "malformed telegram token",
			step:   NewTelegramTokenStep,
			setup:  func(s *InstallState) { s.App.EnableTelegram = true },
			typed:  "abc",
			reject: true,
		},
		{
			name:  "discord token",
			step:  NewDiscordTokenStep,
			setup: func(s *InstallState) { s.App.EnableDiscord = true },
			typed: "MTA.xyz",
			check: func(t *testing.T, s *InstallState) { assert.Equal(t, "MTA.xyz", s.Discord.Token) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewInstallState()
			tt.setup(state)

			msgs := []tea.Msg{nextMsg{}}
			if tt.typed != "" {
				msgs = append(msgs, key(tt.typed))
			}
			msgs = append(msgs, key("enter"))

			step, done := drive(t, tt.step(), state, msgs...)
			if tt.reject {
				require.False(t, done)
				assert.Contains(t, step.View(state), "(press enter to confirm)")
				return
			}
			require.True(t, done)
			tt.check(t, state)
		})
	}
}

func TestStepsSkipWhenNotApplicable(t *testing.T) {
	steps := map[string]func() Step{
		"api key":        NewAPIKeyStep,
		"base url":       NewBaseURLStep,
		"model":          NewModelStep,
		"telegram token": NewTelegramTokenStep,
		"discord token":  NewDiscordTokenStep,
	}

	for name, newStep := range steps {
		t.Run(name, func(t *testing.T) {
			_, done := drive(t, newStep(), NewInstallState(), nextMsg{})
			assert.True(t, done)
		})
	}
}

func TestFinalize(t *testing.T) {
	state := NewInstallState()
	state.App.EnableTelegram = true
	state.App.EnableDiscord = true
	state.Discord.Token = "tok"

	finalize(state)

	assert.False(t, state.App.EnableTelegram, "telegram without a token stays off")
	assert.True(t, state.App.EnableDiscord)
	assert.Equal(t, DefaultReminderSchedule, state.App.ReminderSchedule)

	quiet := NewInstallState()
	finalize(quiet)
	assert.Empty(t, quiet.App.ReminderSchedule)
}

func TestSaveEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runtime", ".env")

	state := NewInstallState()
	state.LLM.Provider = config.ProviderOpenRouter
	state.LLM.OpenRouterAPIKey = "sk-or-v1-abc"
	state.LLM.Model = "meta/llama 3"
	state.App.EnableTelegram = true
	state.App.ReminderSchedule = DefaultReminderSchedule
	state.Telegram.Token = "123:abc"

	require.NoError(t, SaveEnv(path, state))

	got, err := godotenv.Read(path)
	require.NoError(t, err)

	want := map[string]string{
		"BUDDY_LLM_PROVIDER":       "openrouter",
		"BUDDY_LLM_MODEL":          "meta/llama 3",
		"BUDDY_OPENROUTER_API_KEY": "sk-or-v1-abc",
		"BUDDY_ENABLE_TELEGRAM":    "true",
		"BUDDY_REMINDER_SCHEDULE":  DefaultReminderSchedule,
		"BUDDY_TELEGRAM_TOKEN":     "123:abc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("env file mismatch (-want +got):\n%s", diff)
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.ErrorContains(t, SaveEnv(path, state), "already exists")
}
