package agent

import (
	"fmt"
	"strings"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/classifier"
	"github.com/sandevgo/buddybot/pkg/conv"
)

const (
	noActionItemsAnswer = "No pending action items found in the conversation."
	projectAnswer       = "Based on the conversation, the team is working through the topics discussed in this channel. Ask about action items to see the open work."
	statusAnswer        = "Current status: work is in progress. Ask about action items to see what is still open."
	capabilityAnswer    = "I can help with questions about tasks, project status, and action items. Current context includes %d messages."
)

// fallbackAnswer is the local responder used whenever the text generator cannot answer.
func fallbackAnswer(question string, cc core.ConversationContext, cls *classifier.Classifier, descLimit int) string {
	q := strings.ToLower(question)

	switch {
	case strings.Contains(q, "action") || strings.Contains(q, "task") || strings.Contains(q, "todo"):
		items := pendingItems(cc, cls, descLimit)
		if len(items) == 0 {
			return noActionItemsAnswer
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Found %d action items:", len(items))
		for _, item := range items {
			sb.WriteString("\n- ")
			sb.WriteString(item.Description)
		}
		return sb.String()
	case strings.Contains(q, "working on") || strings.Contains(q, "project"):
		return projectAnswer
	case strings.Contains(q, "status"):
		return statusAnswer
	default:
		return fmt.Sprintf(capabilityAnswer, len(cc.Messages))
	}
}

// pendingItems prefers the tracked action items. A context built without them (nil slice)
// gets them derived from its messages.
func pendingItems(cc core.ConversationContext, cls *classifier.Classifier, descLimit int) []core.ActionItem {
	if cc.ActionItems != nil {
		return cc.Unresolved()
	}

	var items []core.ActionItem
	for _, m := range cc.Messages {
		c := cls.Classify(m.Content)
		if !c.HasActionItem {
			continue
		}
		items = append(items, core.ActionItem{
			Description:     conv.Truncate(m.Content, descLimit),
			MentionedAt:     m.Timestamp,
			AssignedTo:      c.FirstMention(),
			Status:          core.StatusUnresolved,
			Urgency:         c.Urgency,
			ChannelID:       m.ChannelID,
			SourceMessageID: m.MessageID,
		})
	}
	return items
}
