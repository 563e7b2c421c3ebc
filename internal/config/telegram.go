package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/buddybot/pkg/log"
)

type TelegramConfig struct {
	Token   string `env:"BUDDY_TELEGRAM_TOKEN,required,notEmpty"`
	BotName string `env:"BUDDY_TELEGRAM_BOT_NAME" envDefault:"BuddianBot"`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}
