package core

import (
	"context"
	"time"
)

type JournalEventType string

const (
	EventMessageAppended    JournalEventType = "message_appended"
	EventActionItemCreated  JournalEventType = "action_item_created"
	EventActionItemResolved JournalEventType = "action_item_resolved"
)

// JournalEvent describes one committed store mutation.
type JournalEvent struct {
	Type       JournalEventType
	ChannelID  string
	Message    *Message
	ActionItem *ActionItem
	At         time.Time
}

// Journal observes store mutations. Record is called under the channel lock and must not block.
type Journal interface {
	Record(ev JournalEvent)
}

type ArchiveRepository interface {
	SaveMessage(ctx context.Context, msg Message) error
	SaveActionItem(ctx context.Context, item ActionItem) error
	MarkResolved(ctx context.Context, id int64, at time.Time) error
	LoadChannels(ctx context.Context, messageLimit, actionItemLimit int) ([]ConversationContext, error)
}
