package dto

import (
	"time"

	"github.com/sandevgo/buddybot/internal/core"
)

type MessageRequest struct {
	Content   string            `json:"content" binding:"required"`
	ChannelID string            `json:"channel_id" binding:"required"`
	UserID    string            `json:"user_id"`
	MessageID string            `json:"message_id,omitempty"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Mentioned bool              `json:"mentioned"`
}

type MessageResponse struct {
	MessageID         string `json:"message_id"`
	Processed         bool   `json:"processed"`
	ActionItemCreated bool   `json:"action_item_created"`
	Duplicate         bool   `json:"duplicate"`
	ShouldRespond     bool   `json:"should_respond"`
}

type QueryRequest struct {
	Question  string `json:"question" binding:"required"`
	ChannelID string `json:"channel_id"`
}

type ChannelsResponse struct {
	Channels []string `json:"channels"`
}

type ActionItemsResponse struct {
	ChannelID   string            `json:"channel_id"`
	ActionItems []core.ActionItem `json:"action_items"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
