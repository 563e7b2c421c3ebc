package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	BuddyName          = "BuddyBot"
	BuddyUserAgent     = "BuddyBot/0.1"
	BuddyRepositoryURL = "https://github.com/sandevgo/buddybot"
	BuddyVersion       = "0.1.0"
)

// Source tells where a message entered the system.
type Source string

const (
	SourceExternal Source = "external"
	SourceManual   Source = "manual"
)

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

type Status string

const (
	StatusUnresolved Status = "unresolved"
	StatusResolved   Status = "resolved"
)

// Metadata keys accepted on a Message. Anything else is dropped by Normalize.
const (
	MetaUsername  = "username"
	MetaFirstName = "first_name"
	MetaChatTitle = "chat_title"
	MetaPlatform  = "platform"
)

var allowedMetadata = map[string]struct{}{
	MetaUsername:  {},
	MetaFirstName: {},
	MetaChatTitle: {},
	MetaPlatform:  {},
}

// Message is one inbound chat event. Treat it as immutable once built.
type Message struct {
	Content   string            `json:"content"`
	Timestamp time.Time         `json:"timestamp"`
	Source    Source            `json:"source"`
	ChannelID string            `json:"channel_id"`
	UserID    string            `json:"user_id"`
	MessageID string            `json:"message_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Validate checks the fields the core relies on. Transports call it before Append.
func (m Message) Validate() error {
	var missing []string
	if m.ChannelID == "" {
		missing = append(missing, "channel_id")
	}
	if m.MessageID == "" {
		missing = append(missing, "message_id")
	}
	if m.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidMessage, strings.Join(missing, ", "))
	}
	return nil
}

// Normalize returns a copy with a defaulted source and only the known metadata keys.
func (m Message) Normalize() Message {
	if m.Source == "" {
		m.Source = SourceManual
	}
	if len(m.Metadata) == 0 {
		m.Metadata = nil
		return m
	}
	meta := make(map[string]string, len(m.Metadata))
	for k, v := range m.Metadata {
		if _, ok := allowedMetadata[k]; ok {
			meta[k] = v
		}
	}
	m.Metadata = meta
	return m
}

// Author returns the best display name available for the sender.
func (m Message) Author() string {
	if name := m.Metadata[MetaUsername]; name != "" {
		return name
	}
	if name := m.Metadata[MetaFirstName]; name != "" {
		return name
	}
	if m.UserID != "" {
		return m.UserID
	}
	return "user"
}

// ActionItem is an actionable statement detected in a Message.
type ActionItem struct {
	ID              int64      `json:"id"`
	Description     string     `json:"description"`
	MentionedAt     time.Time  `json:"mentioned_at"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	Status          Status     `json:"status"`
	Urgency         Urgency    `json:"urgency"`
	ChannelID       string     `json:"channel_id"`
	SourceMessageID string     `json:"source_message_id"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

func (a ActionItem) IsResolved() bool {
	return a.Status == StatusResolved
}

// ConversationContext is a read-only snapshot of one channel.
type ConversationContext struct {
	ChannelID   string       `json:"channel_id"`
	Messages    []Message    `json:"messages"`
	ActionItems []ActionItem `json:"action_items"`
	LastUpdated time.Time    `json:"last_updated"`
}

// Unresolved returns the action items still open, in insertion order.
func (c ConversationContext) Unresolved() []ActionItem {
	res := make([]ActionItem, 0, len(c.ActionItems))
	for _, item := range c.ActionItems {
		if !item.IsResolved() {
			res = append(res, item)
		}
	}
	return res
}

type AppendResult struct {
	ActionItemCreated bool `json:"action_item_created"`
	Duplicate         bool `json:"duplicate"`
	// MessagesEvicted and ActionItemsEvicted count entries dropped by the cap, 0 or 1 per append.
	MessagesEvicted    int `json:"messages_evicted"`
	ActionItemsEvicted int `json:"action_items_evicted"`
}

type Classification struct {
	HasActionItem bool     `json:"has_action_item"`
	Urgency       Urgency  `json:"urgency"`
	Mentions      []string `json:"mentions"`
}

// FirstMention is the default assignee for a derived ActionItem.
func (c Classification) FirstMention() string {
	if len(c.Mentions) == 0 {
		return ""
	}
	return c.Mentions[0]
}

type AnswerResult struct {
	Answer      string   `json:"answer"`
	ContextUsed []string `json:"context_used"`
	Confidence  float64  `json:"confidence"`
	Fallback    bool     `json:"fallback"`
}
