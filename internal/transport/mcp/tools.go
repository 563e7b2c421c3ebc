package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
)

// Asker answers explicit questions against a channel.
type Asker interface {
	Ask(ctx context.Context, channelID, question string) core.AnswerResult
}

var (
	listChannelsTool = mcp.NewTool("list_channels",
		mcp.WithDescription("List the IDs of all tracked chat channels."),
	)

	getContextTool = mcp.NewTool("get_context",
		mcp.WithDescription("Get the retained messages and action items of a channel, oldest first."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel ID from list_channels")),
		mcp.WithString("lookback", mcp.Description("Only messages newer than this Go duration, e.g. 24h")),
	)

	listActionItemsTool = mcp.NewTool("list_action_items",
		mcp.WithDescription("List unresolved action items of a channel with the index resolve_action_item expects."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel ID from list_channels")),
	)

	resolveActionItemTool = mcp.NewTool("resolve_action_item",
		mcp.WithDescription("Mark an action item as resolved."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel ID from list_channels")),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Index reported by list_action_items")),
	)

	askTool = mcp.NewTool("ask",
		mcp.WithDescription("Ask a question about a channel's tasks, status or discussion."),
		mcp.WithString("channel_id", mcp.Required(), mcp.Description("Channel ID from list_channels")),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question")),
	)
)

// IndexedActionItem pairs an open item with its index over all retained items of the channel.
type IndexedActionItem struct {
	Index int `json:"index"`
	core.ActionItem
}

type Tools struct {
	store core.ContextStore
	asker Asker
}

func NewTools(store core.ContextStore, asker Asker) *Tools {
	return &Tools{store: store, asker: asker}
}

func (t *Tools) ListChannels(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.store.ListChannels())
}

func (t *Tools) GetContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID, err := req.RequireString("channel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lookback time.Duration
	if raw := req.GetString("lookback", ""); raw != "" {
		if lookback, err = time.ParseDuration(raw); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid lookback %q: %v", raw, err)), nil
		}
	}
	return jsonResult(t.store.Context(channelID, lookback))
}

func (t *Tools) ListActionItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID, err := req.RequireString("channel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cc := t.store.Context(channelID, 0)
	items := make([]IndexedActionItem, 0, len(cc.ActionItems))
	for i, item := range cc.ActionItems {
		if !item.IsResolved() {
			items = append(items, IndexedActionItem{Index: i, ActionItem: item})
		}
	}
	return jsonResult(items)
}

func (t *Tools) ResolveActionItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID, err := req.RequireString("channel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.Resolve(channelID, index); err != nil {
		if errors.Is(err, core.ErrIndexOutOfRange) || errors.Is(err, core.ErrChannelNotFound) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}

	log.FromCtx(ctx).Info().Str("channel", channelID).Int("index", index).Msg("action item resolved over mcp")
	return mcp.NewToolResultText(fmt.Sprintf("Resolved action item %d in %s.", index, channelID)), nil
}

func (t *Tools) Ask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID, err := req.RequireString("channel_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t.asker.Ask(ctx, channelID, question))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
