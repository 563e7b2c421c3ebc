package telegram

import (
	"strconv"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
)

const (
	channelPrefix = "telegram-"
	platform      = "telegram"
)

func ChannelID(chatID int64) string {
	return channelPrefix + strconv.FormatInt(chatID, 10)
}

func ParseChannelID(channelID string) (int64, bool) {
	rest, ok := strings.CutPrefix(channelID, channelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func isGroup(chat *tele.Chat) bool {
	return chat != nil && (chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup)
}

// toInbound maps a Telegram message. The bot counts as mentioned when its handle appears in the
// text or the message replies to one of its own messages.
func toInbound(m *tele.Message, botName string, botID int64) buddy.Inbound {
	msg := core.Message{
		Content:   m.Text,
		Timestamp: m.Time(),
		Source:    core.SourceExternal,
		MessageID: strconv.Itoa(m.ID),
		Metadata:  map[string]string{core.MetaPlatform: platform},
	}
	if m.Chat != nil {
		msg.ChannelID = ChannelID(m.Chat.ID)
		if m.Chat.Title != "" {
			msg.Metadata[core.MetaChatTitle] = m.Chat.Title
		}
	}
	if m.Sender != nil {
		msg.UserID = strconv.FormatInt(m.Sender.ID, 10)
		if m.Sender.Username != "" {
			msg.Metadata[core.MetaUsername] = m.Sender.Username
		}
		if m.Sender.FirstName != "" {
			msg.Metadata[core.MetaFirstName] = m.Sender.FirstName
		}
	}

	mentioned := buddy.Mentions(m.Text, botName)
	if !mentioned && botID != 0 && m.ReplyTo != nil && m.ReplyTo.Sender != nil {
		mentioned = m.ReplyTo.Sender.ID == botID
	}

	return buddy.Inbound{
		Message:   msg,
		Mentioned: mentioned,
		BotHandle: botName,
	}
}

// activeGroups holds the group chats where /start was sent. Private chats need no activation.
type activeGroups struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

func newActiveGroups() *activeGroups {
	return &activeGroups{ids: make(map[int64]struct{})}
}

func (g *activeGroups) activate(chatID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ids[chatID] = struct{}{}
}

func (g *activeGroups) isActive(chatID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.ids[chatID]
	return ok
}
