package command

import (
	"context"

	"github.com/sandevgo/buddybot/internal/core"
)

// Asker answers explicit questions against a channel.
type Asker interface {
	Ask(ctx context.Context, channelID, question string) core.AnswerResult
}

func NewCommands(store core.ContextStore, asker Asker) []core.Command {
	return []core.Command{
		NewAskCommand(asker),
		NewStatusCommand(store),
		NewActionsCommand(store),
		NewResolveCommand(store),
		NewChannelsCommand(store),
	}
}
