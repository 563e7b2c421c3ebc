package command

import (
	"context"
	"strconv"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/conv"
)

const (
	statusPreviews      = 3
	statusPreviewLength = 50
)

type StatusCommand struct {
	store     core.ContextStore
	formatter *ResponseFormatter
}

func NewStatusCommand(store core.ContextStore) *StatusCommand {
	return &StatusCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *StatusCommand) Name() string {
	return "status"
}

func (c *StatusCommand) Description() string {
	return "Show what is tracked in this chat"
}

func (c *StatusCommand) Execute(_ context.Context, channelID string, _ []string) (string, error) {
	cc := c.store.Context(channelID, 0)
	if len(cc.Messages) == 0 {
		return c.formatter.Empty("No messages tracked yet in this chat."), nil
	}

	recent := cc.Messages
	if len(recent) > statusPreviews {
		recent = recent[len(recent)-statusPreviews:]
	}
	previews := make([]string, 0, len(recent))
	for _, m := range recent {
		previews = append(previews, m.Author()+": "+conv.Truncate(m.Content, statusPreviewLength))
	}

	return c.formatter.Combine(
		c.formatter.Info("📊", "Chat Status"),
		c.formatter.Label("Messages tracked", strconv.Itoa(len(cc.Messages)))+
			c.formatter.Label("Open action items", strconv.Itoa(len(cc.Unresolved())))+
			c.formatter.Label("Last update", cc.LastUpdated.Format(time.DateTime)),
		c.formatter.Section("🗂", "Recent topics", c.formatter.List(previews)),
	), nil
}
