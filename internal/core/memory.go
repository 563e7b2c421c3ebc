package core

import (
	"context"
	"time"
)

// ContextStore is the per-channel memory as seen by transports and services.
type ContextStore interface {
	Append(msg Message) AppendResult
	Context(channelID string, lookback time.Duration) ConversationContext
	UnresolvedActionItems(channelID string) []ActionItem
	Resolve(channelID string, index int) error
	// ResolveByID resolves the item with the given ID and returns it as stored after the update.
	ResolveByID(channelID string, id int64) (ActionItem, error)
	ListChannels() []string
}

// Answerer composes an answer from a channel snapshot. It never fails outward.
type Answerer interface {
	Answer(ctx context.Context, question string, cc ConversationContext) AnswerResult
}
