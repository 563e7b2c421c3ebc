package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/buddy"
)

const (
	channelPrefix = "discord-"
	platform      = "discord"
)

func ChannelID(discordChannelID string) string {
	return channelPrefix + discordChannelID
}

func ParseChannelID(channelID string) (string, bool) {
	rest, ok := strings.CutPrefix(channelID, channelPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// toInbound maps a Discord message. Raw <@id> mentions of the bot are rewritten to @username
// so the question can be derived the same way as on other platforms.
func toInbound(m *discordgo.Message, me *discordgo.User) buddy.Inbound {
	content := m.Content
	mentioned := false
	handle := ""

	if me != nil {
		handle = me.Username
		for _, u := range m.Mentions {
			if u != nil && u.ID == me.ID {
				mentioned = true
			}
		}
		for _, raw := range []string{"<@" + me.ID + ">", "<@!" + me.ID + ">"} {
			content = strings.ReplaceAll(content, raw, "@"+me.Username)
		}
		if m.ReferencedMessage != nil && m.ReferencedMessage.Author != nil && m.ReferencedMessage.Author.ID == me.ID {
			mentioned = true
		}
		mentioned = mentioned || buddy.Mentions(content, handle)
	}

	msg := core.Message{
		Content:   content,
		Timestamp: m.Timestamp,
		Source:    core.SourceExternal,
		ChannelID: ChannelID(m.ChannelID),
		MessageID: m.ID,
		Metadata:  map[string]string{core.MetaPlatform: platform},
	}
	if m.Author != nil {
		msg.UserID = m.Author.ID
		msg.Metadata[core.MetaUsername] = m.Author.Username
		if m.Author.GlobalName != "" {
			msg.Metadata[core.MetaFirstName] = m.Author.GlobalName
		}
	}

	return buddy.Inbound{
		Message:   msg,
		Mentioned: mentioned,
		BotHandle: handle,
	}
}
