package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/buddybot/internal/core"
)

func TestChannelID(t *testing.T) {
	assert.Equal(t, "telegram--100123", ChannelID(-100123))

	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{in: "telegram--100123", want: -100123, wantOK: true},
		{in: "telegram-42", want: 42, wantOK: true},
		{in: "telegram-", wantOK: false},
		{in: "discord-42", wantOK: false},
		{in: "telegram-abc", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseChannelID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInbound(t *testing.T) {
	sent := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	bot := &tele.User{ID: 777, Username: "BuddianBot"}

	tests := []struct {
		name          string
		msg           *tele.Message
		wantMentioned bool
	}{
		{
			name:          "handle in text",
			msg:           &tele.Message{Text: "hey @buddianbot status?"},
			wantMentioned: true,
		},
		{
			name:          "reply to the bot",
			msg:           &tele.Message{Text: "and then?", ReplyTo: &tele.Message{Sender: bot}},
			wantMentioned: true,
		},
		{
			name:          "reply to someone else",
			msg:           &tele.Message{Text: "and then?", ReplyTo: &tele.Message{Sender: &tele.User{ID: 1}}},
			wantMentioned: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.ID = 15
			tt.msg.Unixtime = sent.Unix()
			tt.msg.Chat = &tele.Chat{ID: -100, Type: tele.ChatSuperGroup, Title: "backend"}
			tt.msg.Sender = &tele.User{ID: 5, Username: "alice", FirstName: "Alice"}

			in := toInbound(tt.msg, "BuddianBot", bot.ID)

			assert.Equal(t, tt.wantMentioned, in.Mentioned)
			assert.Equal(t, "BuddianBot", in.BotHandle)
			assert.Equal(t, core.Message{
				Content:   tt.msg.Text,
				Timestamp: time.Unix(sent.Unix(), 0),
				Source:    core.SourceExternal,
				ChannelID: "telegram--100",
				UserID:    "5",
				MessageID: "15",
				Metadata: map[string]string{
					core.MetaPlatform:  "telegram",
					core.MetaChatTitle: "backend",
					core.MetaUsername:  "alice",
					core.MetaFirstName: "Alice",
				},
			}, in.Message)
			assert.NoError(t, in.Message.Validate())
		})
	}
}

func TestActiveGroups(t *testing.T) {
	g := newActiveGroups()
	assert.False(t, g.isActive(-1))
	g.activate(-1)
	assert.True(t, g.isActive(-1))
	assert.False(t, g.isActive(-2))

	assert.True(t, isGroup(&tele.Chat{Type: tele.ChatGroup}))
	assert.True(t, isGroup(&tele.Chat{Type: tele.ChatSuperGroup}))
	assert.False(t, isGroup(&tele.Chat{Type: tele.ChatPrivate}))
	assert.False(t, isGroup(nil))
}
