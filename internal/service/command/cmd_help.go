package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/buddybot/internal/core"
)

type HelpCommand struct {
	router    core.CmdRouter
	formatter *ResponseFormatter
}

func NewHelpCommand(router core.CmdRouter) *HelpCommand {
	return &HelpCommand{
		router:    router,
		formatter: NewResponseFormatter(),
	}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "Show this help message"
}

func (c *HelpCommand) Execute(context.Context, string, []string) (string, error) {
	cmds := c.router.ListCommands()
	items := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		items = append(items, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}

	return c.formatter.Combine(
		c.formatter.Info("🤖", core.BuddyName+" Commands"),
		c.formatter.List(items),
		c.formatter.Section("✨", "Automatic features",
			c.formatter.List([]string{
				"I track the conversation context of every chat",
				"I detect action items and who they are assigned to",
				"I answer questions, help requests and status checks",
			})),
		"Mention me to get my attention.",
	), nil
}
