package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
)

// ArchiveRepo persists channel history so the bounded in-memory store survives restarts.
type ArchiveRepo struct {
	db *sql.DB
}

var _ core.ArchiveRepository = (*ArchiveRepo)(nil)

func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

// SaveMessage is idempotent per (channel, message ID).
func (r *ArchiveRepo) SaveMessage(ctx context.Context, msg core.Message) error {
	meta := ""
	if len(msg.Metadata) > 0 {
		b, err := json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		meta = string(b)
	}

	query := `INSERT OR IGNORE INTO messages (channel_id, message_id, user_id, content, source, metadata, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		msg.ChannelID, msg.MessageID, msg.UserID, msg.Content, string(msg.Source), meta, msg.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *ArchiveRepo) SaveActionItem(ctx context.Context, item core.ActionItem) error {
	var resolvedAt sql.NullTime
	if item.ResolvedAt != nil {
		resolvedAt = sql.NullTime{Time: item.ResolvedAt.UTC(), Valid: true}
	}

	query := `INSERT OR REPLACE INTO action_items
		(id, channel_id, description, mentioned_at, assigned_to, status, urgency, source_message_id, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.ChannelID, item.Description, item.MentionedAt.UTC(), item.AssignedTo,
		string(item.Status), string(item.Urgency), item.SourceMessageID, resolvedAt)
	if err != nil {
		return fmt.Errorf("failed to insert action item: %w", err)
	}
	return nil
}

func (r *ArchiveRepo) MarkResolved(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE action_items SET status = ?, resolved_at = ? WHERE id = ?`,
		string(core.StatusResolved), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve action item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		log.FromCtx(ctx).Warn().Int64("id", id).Msg("resolved action item is not archived")
	}
	return nil
}

// LoadChannels returns, per archived channel, the newest messageLimit messages and actionItemLimit
// action items in insertion order.
func (r *ArchiveRepo) LoadChannels(ctx context.Context, messageLimit, actionItemLimit int) ([]core.ConversationContext, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT channel_id FROM messages UNION SELECT channel_id FROM action_items ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	channels, err := scanStrings(rows)
	if err != nil {
		return nil, err
	}

	res := make([]core.ConversationContext, 0, len(channels))
	for _, ch := range channels {
		cc := core.ConversationContext{ChannelID: ch}

		if cc.Messages, err = r.messages(ctx, ch, messageLimit); err != nil {
			return nil, err
		}
		if cc.ActionItems, err = r.actionItems(ctx, ch, actionItemLimit); err != nil {
			return nil, err
		}
		for _, m := range cc.Messages {
			if m.Timestamp.After(cc.LastUpdated) {
				cc.LastUpdated = m.Timestamp
			}
		}
		res = append(res, cc)
	}

	log.FromCtx(ctx).Debug().Int("channels", len(res)).Msg("loaded archived channels")
	return res, nil
}

func (r *ArchiveRepo) messages(ctx context.Context, channelID string, limit int) ([]core.Message, error) {
	query := `SELECT channel_id, message_id, user_id, content, source, metadata, sent_at
		FROM messages WHERE channel_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		var source, meta string
		if err := rows.Scan(&msg.ChannelID, &msg.MessageID, &msg.UserID, &msg.Content, &source, &meta, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Source = core.Source(source)
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &msg.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// newest first from the query, oldest first for the store
	slices.Reverse(messages)
	return messages, nil
}

func (r *ArchiveRepo) actionItems(ctx context.Context, channelID string, limit int) ([]core.ActionItem, error) {
	query := `SELECT id, channel_id, description, mentioned_at, assigned_to, status, urgency, source_message_id, resolved_at
		FROM action_items WHERE channel_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action items: %w", err)
	}
	defer rows.Close()

	var items []core.ActionItem
	for rows.Next() {
		var item core.ActionItem
		var status, urgency string
		var resolvedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.ChannelID, &item.Description, &item.MentionedAt, &item.AssignedTo,
			&status, &urgency, &item.SourceMessageID, &resolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action item: %w", err)
		}
		item.Status = core.Status(status)
		item.Urgency = core.Urgency(urgency)
		if resolvedAt.Valid {
			at := resolvedAt.Time
			item.ResolvedAt = &at
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.Reverse(items)
	return items, nil
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var res []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
