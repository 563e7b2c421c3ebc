package archive

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memRepo struct {
	mu       sync.Mutex
	messages []core.Message
	items    map[int64]core.ActionItem
	loadErr  error
	block    chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{items: make(map[int64]core.ActionItem)}
}

func (r *memRepo) SaveMessage(_ context.Context, msg core.Message) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *memRepo) SaveActionItem(_ context.Context, item core.ActionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return nil
}

func (r *memRepo) MarkResolved(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return errors.New("unknown item")
	}
	item.Status = core.StatusResolved
	item.ResolvedAt = &at
	r.items[id] = item
	return nil
}

func (r *memRepo) LoadChannels(_ context.Context, messageLimit, _ int) ([]core.ConversationContext, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	byChannel := map[string]*core.ConversationContext{}
	var order []string
	for _, m := range r.messages {
		cc, ok := byChannel[m.ChannelID]
		if !ok {
			cc = &core.ConversationContext{ChannelID: m.ChannelID}
			byChannel[m.ChannelID] = cc
			order = append(order, m.ChannelID)
		}
		cc.Messages = append(cc.Messages, m)
	}

	res := make([]core.ConversationContext, 0, len(order))
	for _, ch := range order {
		cc := byChannel[ch]
		if len(cc.Messages) > messageLimit {
			cc.Messages = cc.Messages[len(cc.Messages)-messageLimit:]
		}
		res = append(res, *cc)
	}
	return res, nil
}

type memoryConfig struct{ cap int }

func (c memoryConfig) GetMessageCap() int       { return c.cap }
func (c memoryConfig) GetActionItemCap() int    { return c.cap }
func (c memoryConfig) GetDescriptionLimit() int { return 100 }

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func message(ch string, i int, content string) core.Message {
	return core.Message{
		Content:   content,
		Timestamp: base.Add(time.Duration(i) * time.Minute),
		ChannelID: ch,
		MessageID: fmt.Sprint(i),
	}
}

func run(t *testing.T, w *Writer) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	return func() {
		cancel()
		require.NoError(t, w.Shutdown(context.Background()))
		require.NoError(t, <-done)
	}
}

func TestWriter_PersistsStoreMutations(t *testing.T) {
	repo := newMemRepo()
	w := NewWriter(repo, 0)
	store := memory.NewStore(memory.StoreConfig{Journal: w})
	stop := run(t, w)

	store.Append(message("telegram-1", 0, "hello"))
	store.Append(message("telegram-1", 1, "need to update docs"))
	require.NoError(t, store.Resolve("telegram-1", 0))
	stop()

	require.Len(t, repo.messages, 2)
	require.Len(t, repo.items, 1)
	for _, item := range repo.items {
		assert.Equal(t, core.StatusResolved, item.Status)
		assert.NotNil(t, item.ResolvedAt)
	}
	assert.Zero(t, w.Dropped())
}

func TestWriter_DropsWhenFull(t *testing.T) {
	repo := newMemRepo()
	w := NewWriter(repo, 2)

	for i := 0; i < 5; i++ {
		msg := message("c", i, "x")
		w.Record(core.JournalEvent{Type: core.EventMessageAppended, ChannelID: "c", Message: &msg})
	}
	assert.Equal(t, int64(3), w.Dropped())

	stop := run(t, w)
	stop()
	assert.Len(t, repo.messages, 2)
}

func TestWriter_ShutdownDeadline(t *testing.T) {
	repo := newMemRepo()
	repo.block = make(chan struct{})
	w := NewWriter(repo, 0)

	msg := message("c", 0, "x")
	w.Record(core.JournalEvent{Type: core.EventMessageAppended, ChannelID: "c", Message: &msg})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShutdown()
	cancel()
	assert.ErrorIs(t, w.Shutdown(shutdownCtx), context.DeadlineExceeded)

	close(repo.block)
	require.NoError(t, <-done)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.SaveMessage(ctx, message("telegram-1", i, fmt.Sprintf("m%d", i))))
	}
	require.NoError(t, repo.SaveMessage(ctx, message("discord-2", 0, "hi")))

	w := NewWriter(repo, 0)
	store := memory.NewStore(memory.StoreConfig{MessageCap: 3, Journal: w})

	n, err := Restore(ctx, repo, store, memoryConfig{cap: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"discord-2", "telegram-1"}, store.ListChannels())

	cc := store.Context("telegram-1", 0)
	require.Len(t, cc.Messages, 3)
	assert.Equal(t, "m1", cc.Messages[0].Content)

	// restored messages are not journaled again
	assert.Empty(t, w.events)

	// and redelivered ones are recognised as duplicates
	assert.True(t, store.Append(message("telegram-1", 3, "m3")).Duplicate)
}

func TestRestore_LoadError(t *testing.T) {
	repo := newMemRepo()
	repo.loadErr = errors.New("disk I/O error")

	_, err := Restore(context.Background(), repo, memory.NewStore(memory.StoreConfig{}), memoryConfig{cap: 50})
	assert.ErrorIs(t, err, repo.loadErr)
}
