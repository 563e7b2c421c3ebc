package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/buddybot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"BUDDY_RUNTIME_PATH" envDefault:".buddybot"`

	// Context store bounds
	MessageCap       int `env:"BUDDY_MESSAGE_CAP" envDefault:"50"`
	ActionItemCap    int `env:"BUDDY_ACTION_ITEM_CAP" envDefault:"50"`
	DescriptionLimit int `env:"BUDDY_DESCRIPTION_LIMIT" envDefault:"100"`

	// Pipeline
	QueryLookback  time.Duration `env:"BUDDY_QUERY_LOOKBACK" envDefault:"0s"`
	MinReplyLength int           `env:"BUDDY_MIN_REPLY_LENGTH" envDefault:"20"`

	// Transport flags
	EnableTelegram bool   `env:"BUDDY_ENABLE_TELEGRAM" envDefault:"false"`
	EnableDiscord  bool   `env:"BUDDY_ENABLE_DISCORD" envDefault:"false"`
	EnableCLI      bool   `env:"BUDDY_ENABLE_CLI" envDefault:"true"`
	EnableHTTP     bool   `env:"BUDDY_ENABLE_HTTP" envDefault:"false"`
	EnableMCP      bool   `env:"BUDDY_ENABLE_MCP" envDefault:"false"`
	HTTPAddr       string `env:"BUDDY_HTTP_ADDR" envDefault:":8080"`
	MCPAddr        string `env:"BUDDY_MCP_ADDR" envDefault:":8081"`

	EnableArchive    bool   `env:"BUDDY_ENABLE_ARCHIVE" envDefault:"true"`
	ReminderSchedule string `env:"BUDDY_REMINDER_SCHEDULE"`
	SnowflakeNode    int64  `env:"BUDDY_SNOWFLAKE_NODE" envDefault:"1"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = GetRuntimePath()
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "buddybot.db")
}

func (c AppConfig) GetMessageCap() int {
	return c.MessageCap
}

func (c AppConfig) GetActionItemCap() int {
	return c.ActionItemCap
}

func (c AppConfig) GetDescriptionLimit() int {
	return c.DescriptionLimit
}
