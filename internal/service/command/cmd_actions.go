package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/buddybot/internal/core"
)

const (
	actionsShown     = 10
	actionTimeLayout = "01/02 15:04"
)

type ActionsCommand struct {
	store     core.ContextStore
	formatter *ResponseFormatter
}

func NewActionsCommand(store core.ContextStore) *ActionsCommand {
	return &ActionsCommand{
		store:     store,
		formatter: NewResponseFormatter(),
	}
}

func (c *ActionsCommand) Name() string {
	return "actions"
}

func (c *ActionsCommand) Description() string {
	return "List unresolved action items"
}

func (c *ActionsCommand) Execute(_ context.Context, channelID string, _ []string) (string, error) {
	items := c.store.UnresolvedActionItems(channelID)
	if len(items) == 0 {
		return c.formatter.Success("No unresolved action items found!"), nil
	}
	return c.formatter.Info("📋", "Unresolved Action Items") + "\n" + FormatActionItems(items, actionsShown), nil
}

// FormatActionItems renders up to limit items numbered from 1, the numbers /resolve accepts.
func FormatActionItems(items []core.ActionItem, limit int) string {
	var sb strings.Builder
	for i, item := range items {
		if i == limit {
			fmt.Fprintf(&sb, "…and %d more\n", len(items)-limit)
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Description)
		if item.AssignedTo != "" {
			fmt.Fprintf(&sb, "   👤 Assigned to: %s\n", item.AssignedTo)
		}
		if item.Urgency == core.UrgencyHigh {
			sb.WriteString("   🔥 Urgent\n")
		}
		fmt.Fprintf(&sb, "   📅 From: %s\n\n", item.MentionedAt.Format(actionTimeLayout))
	}
	return sb.String()
}
