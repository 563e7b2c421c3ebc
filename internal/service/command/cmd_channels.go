package command

import (
	"context"

	"github.com/sandevgo/buddybot/internal/core"
)

type ChannelsCommand struct {
	store     core.ContextStore
	formatter *ResponseFormatter
}

func NewChannelsCommand(store core.ContextStore) *ChannelsCommand {
	return &ChannelsCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *ChannelsCommand) Name() string {
	return "channels"
}

func (c *ChannelsCommand) Description() string {
	return "List tracked channels"
}

func (c *ChannelsCommand) Execute(_ context.Context, channelID string, _ []string) (string, error) {
	channels := c.store.ListChannels()
	if len(channels) == 0 {
		return c.formatter.Empty("No channels tracked yet."), nil
	}

	items := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch == channelID {
			ch += " (this chat)"
		}
		items = append(items, ch)
	}
	return c.formatter.Info("💬", "Tracked channels") + c.formatter.List(items), nil
}
