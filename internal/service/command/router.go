package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sandevgo/buddybot/internal/core"
)

type Router struct {
	commands map[string]core.Command
}

var _ core.CmdRouter = (*Router)(nil)

// New registers commands plus a /help that lists them.
func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	help := NewHelpCommand(c)
	c.commands[help.Name()] = help
	return c
}

// Execute runs input when it is a command. "/cmd@BotName" (Telegram group syntax) is accepted.
func (c *Router) Execute(ctx context.Context, channelID, input string) (string, bool) {
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(name)
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s", name), true
	}

	result, err := cmd.Execute(ctx, channelID, args)
	if err != nil {
		return NewResponseFormatter().Error(name, err), true
	}
	return result, true
}

// ListCommands returns the commands sorted by name.
func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	slices.SortFunc(res, func(a, b core.Command) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return res
}
