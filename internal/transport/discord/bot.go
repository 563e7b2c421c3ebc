package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

const maxDiscordMsgLen = 2000

// Pipeline is the message flow shared by every transport.
type Pipeline interface {
	Handle(ctx context.Context, in buddy.Inbound) (string, bool, error)
}

type Bot struct {
	session  *discordgo.Session
	pipeline Pipeline
	router   core.CmdRouter
	ctx      context.Context
}

var (
	_ srv.Service   = (*Bot)(nil)
	_ core.Notifier = (*Bot)(nil)
)

func NewBot(ctx context.Context, cfg *config.DiscordConfig, pipeline Pipeline, router core.CmdRouter) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	bot := &Bot{
		session:  session,
		pipeline: pipeline,
		router:   router,
		ctx:      log.WithComponent(ctx, "discord"),
	}
	session.AddHandler(bot.onMessageCreate)
	return bot, nil
}

// Start opens the gateway connection and keeps it until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	log.FromCtx(ctx).Info().Str("bot", b.session.State.User.Username).Msg("starting discord bot")

	<-ctx.Done()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	return b.session.Close()
}

func (b *Bot) Owns(channelID string) bool {
	_, ok := ParseChannelID(channelID)
	return ok
}

func (b *Bot) Notify(ctx context.Context, channelID, text string) error {
	id, ok := ParseChannelID(channelID)
	if !ok {
		return fmt.Errorf("not a discord channel: %s", channelID)
	}
	return b.send(ctx, id, text, nil)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx := b.ctx
	logger := log.FromCtx(ctx)
	ref := m.Reference()

	if strings.HasPrefix(m.Content, "/") {
		if reply, ok := b.router.Execute(ctx, ChannelID(m.ChannelID), m.Content); ok {
			if err := b.send(ctx, m.ChannelID, reply, ref); err != nil {
				logger.Error().Err(err).Msg("failed to send command reply")
			}
			return
		}
	}

	reply, ok, err := b.pipeline.Handle(ctx, toInbound(m.Message, s.State.User))
	if err != nil {
		logger.Warn().Err(err).Str("channel", ChannelID(m.ChannelID)).Msg("message rejected")
		return
	}
	if !ok {
		return
	}
	if err := b.send(ctx, m.ChannelID, reply, ref); err != nil {
		logger.Error().Err(err).Msg("failed to send reply")
	}
}

// send renders Markdown as plain text and splits it below the Discord limit.
func (b *Bot) send(ctx context.Context, channelID, md string, ref *discordgo.MessageReference) error {
	text := conv.MarkdownToPlain(md)
	if text == "" {
		return nil
	}

	for i, chunk := range conv.SplitChunks(text, maxDiscordMsgLen) {
		msg := &discordgo.MessageSend{Content: chunk}
		if i == 0 {
			msg.Reference = ref
		}
		if _, err := b.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to send discord chunk %d: %w", i, err)
		}
	}
	return nil
}
