package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	t.Setenv("BUDDY_RUNTIME_PATH", t.TempDir())

	c := NewAppConfig(context.Background())

	assert.Equal(t, 50, c.GetMessageCap())
	assert.Equal(t, 50, c.GetActionItemCap())
	assert.Equal(t, 100, c.GetDescriptionLimit())
	assert.Equal(t, 20, c.MinReplyLength)
	assert.Zero(t, c.QueryLookback)
	assert.True(t, c.EnableCLI)
	assert.False(t, c.EnableTelegram)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, filepath.Join(c.RuntimePath, "buddybot.db"), c.GetDatabasePath())
}

func TestNewAppConfig_Overrides(t *testing.T) {
	t.Setenv("BUDDY_RUNTIME_PATH", t.TempDir())
	t.Setenv("BUDDY_MESSAGE_CAP", "3")
	t.Setenv("BUDDY_QUERY_LOOKBACK", "24h")
	t.Setenv("BUDDY_ENABLE_HTTP", "true")

	c := NewAppConfig(context.Background())

	assert.Equal(t, 3, c.GetMessageCap())
	assert.Equal(t, 24*time.Hour, c.QueryLookback)
	assert.True(t, c.EnableHTTP)
}

func TestNewLLMConfig_Defaults(t *testing.T) {
	c := NewLLMConfig(context.Background())

	assert.Equal(t, ProviderNone, c.Provider)
	assert.Equal(t, 20*time.Second, c.GetLLMTimeout())
	assert.Equal(t, 300, c.GetMaxOutputTokens())
	assert.Equal(t, 3000, c.GetPromptTokenBudget())
}

func TestGetRuntimePath(t *testing.T) {
	abs := t.TempDir()
	t.Setenv("BUDDY_RUNTIME_PATH", abs)
	require.Equal(t, abs, GetRuntimePath())
	assert.Equal(t, filepath.Join(abs, ".env"), GetEnvFilePath())

	t.Setenv("BUDDY_RUNTIME_PATH", "rel")
	assert.True(t, filepath.IsAbs(GetRuntimePath()))
}
