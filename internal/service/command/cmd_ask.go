package command

import (
	"context"
	"strings"
)

type AskCommand struct {
	asker     Asker
	formatter *ResponseFormatter
}

func NewAskCommand(asker Asker) *AskCommand {
	return &AskCommand{
		asker:     asker,
		formatter: NewResponseFormatter(),
	}
}

func (c *AskCommand) Name() string {
	return "ask"
}

func (c *AskCommand) Description() string {
	return "Ask about this chat's tasks and status"
}

func (c *AskCommand) Execute(ctx context.Context, channelID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("❓", "Please provide a question after /ask"),
			c.formatter.Usage("/ask <question>"),
			c.formatter.Examples([]string{"/ask What tasks are still pending?"}),
		), nil
	}

	res := c.asker.Ask(ctx, channelID, strings.Join(args, " "))
	return c.formatter.Info("🤖", "Answer:") + res.Answer, nil
}
