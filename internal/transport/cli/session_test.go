package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/buddybot/internal/service/agent"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/internal/service/command"
	"github.com/sandevgo/buddybot/internal/service/gate"
	"github.com/sandevgo/buddybot/internal/service/memory"
)

func newSession(t *testing.T) (*Session, *memory.Store) {
	t.Helper()
	store := memory.NewStore(memory.StoreConfig{})
	b := buddy.New(buddy.Config{MinReplyLength: buddy.DefaultMinReplyLength}, store, gate.New(), agent.NewAgent(nil, nil))
	router := command.New(command.NewCommands(store, b))

	s := NewSession(b, router, "alice")
	n := 0
	s.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	s.newID = func() string {
		n++
		return string(rune('a' + n))
	}
	return s, store
}

func TestSession_Process(t *testing.T) {
	ctx := context.Background()
	s, store := newSession(t)

	_, ok := s.Process(ctx, "")
	assert.False(t, ok)

	_, ok = s.Process(ctx, "please document the release notes")
	assert.False(t, ok, "statements are only tracked")

	reply, ok := s.Process(ctx, "@buddy what tasks are open?")
	require.True(t, ok)
	assert.Contains(t, reply, "please document the release notes")

	reply, ok = s.Process(ctx, "/actions")
	require.True(t, ok)
	assert.Contains(t, reply, "please document the release notes")
	assert.NotContains(t, reply, "**")

	cc := store.Context(ChannelID, 0)
	require.Len(t, cc.Messages, 2)
	assert.Equal(t, "alice", cc.Messages[0].Author())
}
