package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

const baseContextKey = "base_context"

// Pipeline is the message flow shared by every transport.
type Pipeline interface {
	Handle(ctx context.Context, in buddy.Inbound) (string, bool, error)
}

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	pipeline Pipeline
	router   core.CmdRouter
	sender   *sender
	groups   *activeGroups
}

var (
	_ srv.Service   = (*Bot)(nil)
	_ core.Notifier = (*Bot)(nil)
)

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	pipeline Pipeline,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		pipeline: pipeline,
		router:   router,
		sender:   newSender(b),
		groups:   newActiveGroups(),
	}

	ctx = log.WithComponent(ctx, "telegram")
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleText)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	cmds := make([]tele.Command, 0, len(b.router.ListCommands()))
	for _, cmd := range b.router.ListCommands() {
		cmds = append(cmds, tele.Command{Text: cmd.Name(), Description: cmd.Description()})
	}
	if err := b.bot.SetCommands(cmds); err != nil {
		logger.Warn().Err(err).Msg("failed to publish telegram command menu")
	}

	logger.Info().Str("bot", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) Owns(channelID string) bool {
	_, ok := ParseChannelID(channelID)
	return ok
}

func (b *Bot) Notify(ctx context.Context, channelID, text string) error {
	chatID, ok := ParseChannelID(channelID)
	if !ok {
		return fmt.Errorf("not a telegram channel: %s", channelID)
	}
	return b.sender.sendMarkdown(ctx, tele.ChatID(chatID), text, nil)
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)

	if !isGroup(c.Chat()) {
		return b.sender.sendMarkdown(ctx, c.Chat(), privateWelcome, c.Message())
	}

	b.groups.activate(c.Chat().ID)
	log.FromCtx(ctx).Info().Str("channel", ChannelID(c.Chat().ID)).Str("title", c.Chat().Title).Msg("activated in group")
	return b.sender.sendMarkdown(ctx, c.Chat(), groupWelcome, c.Message())
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	msg := c.Message()
	channelID := ChannelID(c.Chat().ID)

	if strings.HasPrefix(msg.Text, "/") {
		if reply, ok := b.router.Execute(ctx, channelID, msg.Text); ok {
			return b.sender.sendMarkdown(ctx, c.Chat(), reply, msg)
		}
	}

	if isGroup(c.Chat()) && !b.groups.isActive(c.Chat().ID) {
		logger.Debug().Str("channel", channelID).Msg("group not activated, ignoring message")
		return nil
	}

	var botID int64
	if b.bot.Me != nil {
		botID = b.bot.Me.ID
	}
	reply, ok, err := b.pipeline.Handle(ctx, toInbound(msg, b.cfg.BotName, botID))
	if err != nil {
		logger.Warn().Err(err).Str("channel", channelID).Msg("message rejected")
		return nil
	}
	if !ok {
		return nil
	}

	return b.sender.sendMarkdown(ctx, c.Chat(), replyPrefix+reply, msg)
}

const (
	replyPrefix = "🤖 "

	groupWelcome = "🤖 **" + core.BuddyName + " activated!**\n\n" +
		"I'm now listening to your conversations and can help with:\n" +
		"- answering questions about your projects\n" +
		"- tracking action items and unresolved tasks\n" +
		"- providing context from previous discussions\n\n" +
		"Mention me or use /help to see the commands."

	privateWelcome = "👋 Hi! I'm " + core.BuddyName + ".\n\n" +
		"Add me to your team groups and send /start there so I can track conversations, " +
		"answer project questions and remind you about action items.\n\n" +
		"Use /help to see available commands."
)
