package telegram

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in chunks if needed.
// The first chunk replies to replyTo when it is set.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string, replyTo *tele.Message) error {
	logger := log.FromCtx(ctx)
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	if html == "" {
		return nil
	}

	for i, chunk := range conv.SplitChunks(html, maxTelegramMsgLen) {
		opts := &tele.SendOptions{ParseMode: tele.ModeHTML}
		if i == 0 && replyTo != nil {
			opts.ReplyTo = replyTo
		}

		if _, err := s.bot.Send(to, chunk, opts); err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}
