package cli

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/pkg/conv"
	"github.com/sandevgo/buddybot/pkg/log"
)

const (
	// ChannelID is the single channel of the local chat.
	ChannelID = "cli-local"
	// Handle addresses the bot in the local chat.
	Handle = "buddy"
)

// Pipeline is the message flow shared by every transport.
type Pipeline interface {
	Handle(ctx context.Context, in buddy.Inbound) (string, bool, error)
}

// Session turns typed lines into pipeline messages or commands.
type Session struct {
	pipeline Pipeline
	router   core.CmdRouter
	user     string

	now   func() time.Time
	newID func() string
}

func NewSession(pipeline Pipeline, router core.CmdRouter, user string) *Session {
	return &Session{
		pipeline: pipeline,
		router:   router,
		user:     user,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Process returns the plain-text reply to print, if any.
func (s *Session) Process(ctx context.Context, line string) (string, bool) {
	if line == "" {
		return "", false
	}

	if strings.HasPrefix(line, "/") {
		if reply, ok := s.router.Execute(ctx, ChannelID, line); ok {
			return conv.MarkdownToPlain(reply), true
		}
	}

	in := buddy.Inbound{
		Message: core.Message{
			Content:   line,
			Timestamp: s.now(),
			Source:    core.SourceManual,
			ChannelID: ChannelID,
			UserID:    s.user,
			MessageID: s.newID(),
			Metadata: map[string]string{
				core.MetaUsername: s.user,
				core.MetaPlatform: "cli",
			},
		},
		Mentioned: buddy.Mentions(line, Handle),
		BotHandle: Handle,
	}

	reply, ok, err := s.pipeline.Handle(ctx, in)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("message rejected")
		return "", false
	}
	if !ok {
		return "", false
	}
	return conv.MarkdownToPlain(reply), true
}
