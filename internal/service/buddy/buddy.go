package buddy

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
)

const (
	// DefaultQuestion replaces a mention that carries no real question.
	DefaultQuestion = "What should I help with?"

	minQuestionLength     = 5
	DefaultMinReplyLength = 20
)

// Gate decides whether an inbound message deserves an unsolicited reply.
type Gate interface {
	ShouldRespond(ctx context.Context, msg core.Message, mentioned bool) bool
}

type Config struct {
	// Lookback filters the context handed to the answerer; zero means the whole window.
	Lookback time.Duration
	// Answers whose length is not above MinReplyLength are not posted.
	// Zero or negative means DefaultMinReplyLength.
	MinReplyLength int
}

// Inbound is a chat message as seen by a transport.
type Inbound struct {
	Message core.Message
	// Mentioned is true when the bot was addressed explicitly.
	Mentioned bool
	// BotHandle is stripped from the question when Mentioned, e.g. "BuddianBot".
	BotHandle string
}

type IngestResult struct {
	core.AppendResult
	ShouldRespond bool
}

// Buddy wires the store, the gate and the answerer into the message pipeline shared by all transports.
type Buddy struct {
	cfg      Config
	store    core.ContextStore
	gate     Gate
	answerer core.Answerer
}

func New(cfg Config, store core.ContextStore, gate Gate, answerer core.Answerer) *Buddy {
	if cfg.MinReplyLength <= 0 {
		cfg.MinReplyLength = DefaultMinReplyLength
	}
	return &Buddy{
		cfg:      cfg,
		store:    store,
		gate:     gate,
		answerer: answerer,
	}
}

// Ingest validates and stores the message, then asks the gate whether to reply.
// Redelivered messages are stored once and never answered twice.
func (b *Buddy) Ingest(ctx context.Context, in Inbound) (IngestResult, error) {
	if err := in.Message.Validate(); err != nil {
		return IngestResult{}, err
	}
	logger := log.FromCtx(ctx)

	res := IngestResult{AppendResult: b.store.Append(in.Message)}
	if res.Duplicate {
		logger.Debug().Str("channel", in.Message.ChannelID).Str("message_id", in.Message.MessageID).Msg("duplicate message ignored")
		return res, nil
	}

	if res.ActionItemCreated {
		logger.Info().
			Str("channel", in.Message.ChannelID).
			Str("preview", conv.Truncate(in.Message.Content, 50)).
			Msg("action item detected")
	}
	if res.MessagesEvicted > 0 || res.ActionItemsEvicted > 0 {
		logger.Debug().
			Str("channel", in.Message.ChannelID).
			Int("messages", res.MessagesEvicted).
			Int("action_items", res.ActionItemsEvicted).
			Msg("evicted oldest entries")
	}

	res.ShouldRespond = b.gate.ShouldRespond(ctx, in.Message, in.Mentioned)
	return res, nil
}

// Handle runs the full pipeline and returns the reply to post, if any.
func (b *Buddy) Handle(ctx context.Context, in Inbound) (string, bool, error) {
	res, err := b.Ingest(ctx, in)
	if err != nil {
		return "", false, err
	}
	if res.Duplicate || !res.ShouldRespond {
		return "", false, nil
	}
	reply, ok := b.Respond(ctx, in)
	return reply, ok, nil
}

// Respond answers the message against its channel context. Short answers are suppressed.
func (b *Buddy) Respond(ctx context.Context, in Inbound) (string, bool) {
	question := in.Message.Content
	if in.Mentioned {
		question = QuestionFromMention(in.Message.Content, in.BotHandle)
	}

	res := b.answer(ctx, in.Message.ChannelID, question)
	answer := strings.TrimSpace(res.Answer)
	if utf8.RuneCountInString(answer) <= b.cfg.MinReplyLength {
		log.FromCtx(ctx).Debug().Str("channel", in.Message.ChannelID).Int("length", len(answer)).Msg("reply suppressed, too short")
		return "", false
	}
	return answer, true
}

// Ask answers an explicit query, bypassing the gate.
func (b *Buddy) Ask(ctx context.Context, channelID, question string) core.AnswerResult {
	return b.answer(ctx, channelID, question)
}

func (b *Buddy) answer(ctx context.Context, channelID, question string) core.AnswerResult {
	cc := b.store.Context(channelID, b.cfg.Lookback)
	res := b.answerer.Answer(ctx, question, cc)
	if res.Fallback {
		log.FromCtx(ctx).Debug().Str("channel", channelID).Msg("answered by fallback responder")
	}
	return res
}

// QuestionFromMention strips every @handle occurrence (any case). A remainder shorter than
// five characters becomes DefaultQuestion.
func QuestionFromMention(content, handle string) string {
	q := content
	if handle = strings.TrimPrefix(handle, "@"); handle != "" {
		re := regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(handle) + `\b`)
		q = re.ReplaceAllString(q, "")
	}
	q = strings.Join(strings.Fields(q), " ")
	if utf8.RuneCountInString(q) < minQuestionLength {
		return DefaultQuestion
	}
	return q
}

// Mentions reports whether content addresses handle with an @mention.
func Mentions(content, handle string) bool {
	handle = strings.TrimPrefix(handle, "@")
	if handle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(content), "@"+strings.ToLower(handle))
}
