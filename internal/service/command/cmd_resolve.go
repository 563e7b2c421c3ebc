package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sandevgo/buddybot/internal/core"
)

type ResolveCommand struct {
	store     core.ContextStore
	formatter *ResponseFormatter
}

func NewResolveCommand(store core.ContextStore) *ResolveCommand {
	return &ResolveCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *ResolveCommand) Name() string {
	return "resolve"
}

func (c *ResolveCommand) Description() string {
	return "Mark an action item as done, by its /actions number"
}

func (c *ResolveCommand) Execute(_ context.Context, channelID string, args []string) (string, error) {
	if len(args) != 1 {
		return c.usage(), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return c.usage(), nil
	}

	item, ok := nthUnresolved(c.store.UnresolvedActionItems(channelID), n)
	if !ok {
		return "", fmt.Errorf("no open action item #%d", n)
	}

	// Resolve by ID: appends between the listing and this call may evict and shift items.
	resolved, err := c.store.ResolveByID(channelID, item.ID)
	if err != nil {
		if errors.Is(err, core.ErrActionItemNotFound) || errors.Is(err, core.ErrChannelNotFound) {
			return "", fmt.Errorf("action item #%d is gone: %w", n, err)
		}
		return "", err
	}
	return c.formatter.Success("Resolved: " + resolved.Description), nil
}

func (c *ResolveCommand) usage() string {
	return c.formatter.Combine(
		c.formatter.Usage("/resolve <number>"),
		c.formatter.Examples([]string{"/resolve 1"}),
	)
}

// nthUnresolved picks the 1-based position among open items, as numbered by /actions.
func nthUnresolved(open []core.ActionItem, n int) (core.ActionItem, bool) {
	if n < 1 || n > len(open) {
		return core.ActionItem{}, false
	}
	return open[n-1], true
}
