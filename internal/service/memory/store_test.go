package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/gate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingJournal struct {
	mu     sync.Mutex
	events []core.JournalEvent
}

func (j *recordingJournal) Record(ev core.JournalEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
}

func (j *recordingJournal) types() []core.JournalEventType {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]core.JournalEventType, 0, len(j.events))
	for _, ev := range j.events {
		out = append(out, ev.Type)
	}
	return out
}

func msg(channel, id, content string, ts time.Time) core.Message {
	return core.Message{
		Content:   content,
		Timestamp: ts,
		Source:    core.SourceExternal,
		ChannelID: channel,
		UserID:    "u1",
		MessageID: id,
	}
}

func newTestStore(t *testing.T, cfg StoreConfig) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: base}
	cfg.Clock = clock.Now
	return NewStore(cfg), clock
}

func TestStore_AppendDerivesActionItem(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})

	res := s.Append(msg("c1", "m1", "@alice please fix the login bug", base))
	assert.True(t, res.ActionItemCreated)

	items := s.UnresolvedActionItems("c1")
	require.Len(t, items, 1)
	assert.Equal(t, "@alice please fix the login bug", items[0].Description)
	assert.Equal(t, "alice", items[0].AssignedTo)
	assert.Equal(t, core.StatusUnresolved, items[0].Status)
	assert.Equal(t, base, items[0].MentionedAt)
	assert.Equal(t, "m1", items[0].SourceMessageID)
	assert.NotZero(t, items[0].ID)

	res = s.Append(msg("c1", "m2", "lunch was great", base.Add(time.Minute)))
	assert.False(t, res.ActionItemCreated)
	assert.Len(t, s.Context("c1", 0).Messages, 2)
}

func TestStore_DescriptionTruncated(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	long := "please " + strings.Repeat("x", 200)

	s.Append(msg("c1", "m1", long, base))

	items := s.UnresolvedActionItems("c1")
	require.Len(t, items, 1)
	assert.Equal(t, long[:100]+"...", items[0].Description)
}

func TestStore_MessageEvictionFIFO(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})

	var evicted int
	for i := 1; i <= 51; i++ {
		res := s.Append(msg("c1", fmt.Sprintf("m%d", i), fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second)))
		evicted += res.MessagesEvicted
	}

	cc := s.Context("c1", 0)
	require.Len(t, cc.Messages, 50)
	assert.Equal(t, "m2", cc.Messages[0].Content)
	assert.Equal(t, "m51", cc.Messages[49].Content)
	assert.Equal(t, 1, evicted)
}

func TestStore_ActionItemEvictionFIFO(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{ActionItemCap: 3})

	for i := 1; i <= 4; i++ {
		s.Append(msg("c1", fmt.Sprintf("m%d", i), fmt.Sprintf("todo %d", i), base))
	}

	items := s.Context("c1", 0).ActionItems
	require.Len(t, items, 3)
	assert.Equal(t, []string{"todo 2", "todo 3", "todo 4"}, []string{items[0].Description, items[1].Description, items[2].Description})
}

func TestStore_DuplicateMessageIgnored(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{MessageCap: 2})

	assert.True(t, s.Append(msg("c1", "m1", "please review", base)).ActionItemCreated)
	res := s.Append(msg("c1", "m1", "please review", base))
	assert.True(t, res.Duplicate)
	assert.False(t, res.ActionItemCreated)
	assert.Len(t, s.Context("c1", 0).Messages, 1)
	assert.Len(t, s.UnresolvedActionItems("c1"), 1)

	// once m1 leaves the window its id may be reused
	s.Append(msg("c1", "m2", "a", base))
	s.Append(msg("c1", "m3", "b", base))
	assert.False(t, s.Append(msg("c1", "m1", "c", base)).Duplicate)

	// ids are per channel
	assert.False(t, s.Append(msg("c2", "m3", "b", base)).Duplicate)
}

func TestStore_ContextLookback(t *testing.T) {
	s, clock := newTestStore(t, StoreConfig{})
	clock.Set(base.Add(48 * time.Hour))

	s.Append(msg("c1", "old", "old news", base))
	s.Append(msg("c1", "new", "fresh news", base.Add(47*time.Hour)))

	filtered := s.Context("c1", 24*time.Hour)
	require.Len(t, filtered.Messages, 1)
	assert.Equal(t, "fresh news", filtered.Messages[0].Content)

	// the filtered view never changes stored state
	assert.Len(t, s.Context("c1", 0).Messages, 2)
}

func TestStore_MissingChannel(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})

	cc := s.Context("nope", 0)
	assert.Equal(t, "nope", cc.ChannelID)
	assert.Empty(t, cc.Messages)
	assert.Empty(t, cc.ActionItems)
	assert.Empty(t, s.UnresolvedActionItems("nope"))
	assert.Empty(t, s.ListChannels(), "reads must not create channels")

	assert.ErrorIs(t, s.Resolve("nope", 0), core.ErrChannelNotFound)
}

func TestStore_Resolve(t *testing.T) {
	s, clock := newTestStore(t, StoreConfig{})
	s.Append(msg("c1", "m1", "todo one", base))
	s.Append(msg("c1", "m2", "todo two", base))

	clock.Set(base.Add(time.Hour))
	require.NoError(t, s.Resolve("c1", 0))

	unresolved := s.UnresolvedActionItems("c1")
	require.Len(t, unresolved, 1)
	assert.Equal(t, "todo two", unresolved[0].Description)

	cc := s.Context("c1", 0)
	all := cc.ActionItems
	require.NotNil(t, all[0].ResolvedAt)
	assert.Equal(t, base.Add(time.Hour), *all[0].ResolvedAt)
	assert.Equal(t, base.Add(time.Hour), cc.LastUpdated, "resolving is a mutation")

	// idempotent
	clock.Set(base.Add(2 * time.Hour))
	require.NoError(t, s.Resolve("c1", 0))
	assert.Equal(t, base.Add(time.Hour), s.Context("c1", 0).LastUpdated)

	tests := []int{-1, 2, 100}
	for _, idx := range tests {
		t.Run(fmt.Sprintf("index %d", idx), func(t *testing.T) {
			assert.ErrorIs(t, s.Resolve("c1", idx), core.ErrIndexOutOfRange)
		})
	}
	assert.Len(t, s.UnresolvedActionItems("c1"), 1)
}

func TestStore_ResolveByID(t *testing.T) {
	s, clock := newTestStore(t, StoreConfig{ActionItemCap: 2})
	s.Append(msg("c1", "m1", "todo A", base))
	s.Append(msg("c1", "m2", "todo B", base))
	target := s.UnresolvedActionItems("c1")[1]

	// evicts A, B moves to index 0
	s.Append(msg("c1", "m3", "todo C", base))

	clock.Set(base.Add(time.Hour))
	got, err := s.ResolveByID("c1", target.ID)
	require.NoError(t, err)
	assert.Equal(t, "todo B", got.Description)
	assert.True(t, got.IsResolved())
	assert.Equal(t, base.Add(time.Hour), s.Context("c1", 0).LastUpdated)

	open := s.UnresolvedActionItems("c1")
	require.Len(t, open, 1)
	assert.Equal(t, "todo C", open[0].Description)

	_, err = s.ResolveByID("c1", -1)
	assert.ErrorIs(t, err, core.ErrActionItemNotFound)
	_, err = s.ResolveByID("nope", target.ID)
	assert.ErrorIs(t, err, core.ErrChannelNotFound)
}

func TestExampleScenario(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	g := gate.New()

	steps := []struct {
		content     string
		wantItem    bool
		wantRespond bool
	}{
		{content: "need to fix login bug by friday", wantItem: true, wantRespond: true},
		{content: "hello team", wantItem: false, wantRespond: false},
		{content: "@alice can you review this?", wantItem: true, wantRespond: true},
	}

	for i, step := range steps {
		m := msg("c1", fmt.Sprint(i+1), step.content, base.Add(time.Duration(i)*time.Minute))
		res := s.Append(m)
		assert.Equal(t, step.wantItem, res.ActionItemCreated, step.content)
		assert.Equal(t, step.wantRespond, g.ShouldRespond(context.Background(), m, false), step.content)
	}

	cc := s.Context("c1", 0)
	assert.Len(t, cc.Messages, 3)
	require.Len(t, cc.ActionItems, 2)
	assert.Equal(t, "alice", cc.ActionItems[1].AssignedTo)
	assert.Len(t, s.UnresolvedActionItems("c1"), 2)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	m := msg("c1", "m1", "please check", base)
	m.Metadata = map[string]string{core.MetaUsername: "alice"}
	s.Append(m)

	first := s.Context("c1", 0)
	first.Messages[0].Content = "mutated"
	first.Messages[0].Metadata[core.MetaUsername] = "mallory"
	first.ActionItems[0].Status = core.StatusResolved

	second := s.Context("c1", 0)
	assert.Equal(t, "please check", second.Messages[0].Content)
	assert.Equal(t, "alice", second.Messages[0].Metadata[core.MetaUsername])
	assert.Len(t, s.UnresolvedActionItems("c1"), 1)
}

func TestStore_LastUpdatedMonotonic(t *testing.T) {
	s, clock := newTestStore(t, StoreConfig{})

	clock.Set(base.Add(time.Hour))
	s.Append(msg("c1", "m1", "a", base))
	clock.Set(base)
	s.Append(msg("c1", "m2", "b", base))

	assert.Equal(t, base.Add(time.Hour), s.Context("c1", 0).LastUpdated)
}

func TestStore_NormalizesMetadata(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	m := msg("c1", "m1", "hi", base)
	m.Source = ""
	m.Metadata = map[string]string{core.MetaPlatform: "telegram", "raw_update": "{...}"}

	s.Append(m)

	got := s.Context("c1", 0).Messages[0]
	assert.Equal(t, core.SourceManual, got.Source)
	assert.Equal(t, map[string]string{core.MetaPlatform: "telegram"}, got.Metadata)
}

func TestStore_RecentMessages(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	for i := 1; i <= 5; i++ {
		s.Append(msg("c1", fmt.Sprintf("m%d", i), fmt.Sprintf("m%d", i), base))
	}

	recent := s.RecentMessages("c1", 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "m3", recent[0].Content)
	assert.Equal(t, "m5", recent[2].Content)

	assert.Len(t, s.RecentMessages("c1", 10), 5)
	assert.Empty(t, s.RecentMessages("c1", 0))
	assert.Empty(t, s.RecentMessages("other", 3))
}

func TestStore_ListChannels(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})
	s.Append(msg("b", "1", "x", base))
	s.Append(msg("a", "1", "x", base))

	assert.Equal(t, []string{"a", "b"}, s.ListChannels())
}

func TestStore_Journal(t *testing.T) {
	j := &recordingJournal{}
	s, _ := newTestStore(t, StoreConfig{Journal: j})

	s.Append(msg("c1", "m1", "hello", base))
	s.Append(msg("c1", "m2", "todo: ship it", base))
	s.Append(msg("c1", "m2", "todo: ship it", base))
	require.NoError(t, s.Resolve("c1", 0))

	want := []core.JournalEventType{
		core.EventMessageAppended,
		core.EventMessageAppended,
		core.EventActionItemCreated,
		core.EventActionItemResolved,
	}
	if diff := cmp.Diff(want, j.types()); diff != "" {
		t.Errorf("journal events mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Restore(t *testing.T) {
	j := &recordingJournal{}
	s, _ := newTestStore(t, StoreConfig{MessageCap: 2, Journal: j})

	resolvedAt := base.Add(time.Minute)
	s.Restore(core.ConversationContext{
		ChannelID: "c1",
		Messages: []core.Message{
			msg("c1", "m1", "one", base),
			msg("c1", "m2", "two", base),
			msg("c1", "m3", "three", base),
		},
		ActionItems: []core.ActionItem{
			{ID: 7, Description: "todo", Status: core.StatusResolved, ResolvedAt: &resolvedAt, ChannelID: "c1"},
		},
		LastUpdated: base,
	})

	cc := s.Context("c1", 0)
	want := core.ConversationContext{
		ChannelID: "c1",
		Messages: []core.Message{
			{Content: "two", Timestamp: base, Source: core.SourceExternal, ChannelID: "c1", UserID: "u1", MessageID: "m2"},
			{Content: "three", Timestamp: base, Source: core.SourceExternal, ChannelID: "c1", UserID: "u1", MessageID: "m3"},
		},
		ActionItems: []core.ActionItem{
			{ID: 7, Description: "todo", Status: core.StatusResolved, ResolvedAt: &resolvedAt, ChannelID: "c1"},
		},
		LastUpdated: base,
	}
	if diff := cmp.Diff(want, cc); diff != "" {
		t.Errorf("restored context mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, j.types())
	assert.True(t, s.Append(msg("c1", "m3", "three", base)).Duplicate)
	assert.False(t, s.Append(msg("c1", "m1", "one", base)).Duplicate)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s, _ := newTestStore(t, StoreConfig{})

	const writers, perWriter = 8, 100
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				s.Append(msg("shared", fmt.Sprintf("w%d-%d", w, i), "please check "+fmt.Sprint(i), base))
				s.Append(msg(fmt.Sprintf("own-%d", w), fmt.Sprintf("%d", i), "note", base))
			}
			return nil
		})
		g.Go(func() error {
			for i := 0; i < perWriter; i++ {
				cc := s.Context("shared", 0)
				if len(cc.Messages) > 50 || len(cc.ActionItems) > 50 {
					return fmt.Errorf("cap exceeded: %d messages, %d items", len(cc.Messages), len(cc.ActionItems))
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	cc := s.Context("shared", 0)
	assert.Len(t, cc.Messages, 50)
	assert.Len(t, cc.ActionItems, 50)

	// ids stay unique under contention
	ids := make(map[int64]struct{})
	for _, item := range cc.ActionItems {
		_, dup := ids[item.ID]
		assert.False(t, dup)
		ids[item.ID] = struct{}{}
	}
	assert.Len(t, s.ListChannels(), writers+1)
}
