package memory

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/classifier"
	"github.com/sandevgo/buddybot/pkg/conv"
)

const (
	DefaultMessageCap       = 50
	DefaultActionItemCap    = 50
	DefaultDescriptionLimit = 100
)

// IDGenerator hands out ActionItem IDs.
type IDGenerator interface {
	Next() int64
}

type StoreConfig struct {
	MessageCap       int
	ActionItemCap    int
	DescriptionLimit int
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Journal is optional.
	Journal core.Journal
	// IDs defaults to an in-process counter.
	IDs IDGenerator
}

// NewStoreConfig builds a StoreConfig from the application bounds.
func NewStoreConfig(cfg core.MemoryConfig) StoreConfig {
	return StoreConfig{
		MessageCap:       cfg.GetMessageCap(),
		ActionItemCap:    cfg.GetActionItemCap(),
		DescriptionLimit: cfg.GetDescriptionLimit(),
	}
}

type channelState struct {
	mu          sync.RWMutex
	messages    *ring[core.Message]
	items       *ring[core.ActionItem]
	seen        map[string]int // message IDs inside the retained window
	lastUpdated time.Time
}

// Store is the in-memory ContextStore. Channels are created lazily and each one has its own lock,
// so appends to different channels never contend.
type Store struct {
	cfg        StoreConfig
	classifier *classifier.Classifier

	mu       sync.RWMutex
	channels map[string]*channelState
}

var _ core.ContextStore = (*Store)(nil)

func NewStore(cfg StoreConfig) *Store {
	if cfg.MessageCap <= 0 {
		cfg.MessageCap = DefaultMessageCap
	}
	if cfg.ActionItemCap <= 0 {
		cfg.ActionItemCap = DefaultActionItemCap
	}
	if cfg.DescriptionLimit <= 0 {
		cfg.DescriptionLimit = DefaultDescriptionLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = &counter{}
	}
	return &Store{
		cfg:        cfg,
		classifier: classifier.New(),
		channels:   make(map[string]*channelState),
	}
}

func (s *Store) newChannel() *channelState {
	return &channelState{
		messages: newRing[core.Message](s.cfg.MessageCap),
		items:    newRing[core.ActionItem](s.cfg.ActionItemCap),
		seen:     make(map[string]int),
	}
}

func (s *Store) lookup(channelID string) (*channelState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[channelID]
	return ch, ok
}

func (s *Store) getOrCreate(channelID string) *channelState {
	if ch, ok := s.lookup(channelID); ok {
		return ch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.channels[channelID]; ok {
		return ch
	}
	ch := s.newChannel()
	s.channels[channelID] = ch
	return ch
}

// Append stores msg, derives at most one ActionItem from it and enforces both caps.
// A message whose ID is still inside the retained window is ignored.
func (s *Store) Append(msg core.Message) core.AppendResult {
	msg = msg.Normalize()
	ch := s.getOrCreate(msg.ChannelID)

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if msg.MessageID != "" && ch.seen[msg.MessageID] > 0 {
		return core.AppendResult{Duplicate: true}
	}

	var res core.AppendResult

	if old, evicted := ch.messages.Push(msg); evicted {
		res.MessagesEvicted = 1
		ch.forget(old.MessageID)
	}
	if msg.MessageID != "" {
		ch.seen[msg.MessageID]++
	}

	now := s.cfg.Clock()
	s.record(core.JournalEvent{Type: core.EventMessageAppended, ChannelID: msg.ChannelID, Message: &msg, At: now})

	if cls := s.classifier.Classify(msg.Content); cls.HasActionItem {
		item := core.ActionItem{
			ID:              s.cfg.IDs.Next(),
			Description:     conv.Truncate(msg.Content, s.cfg.DescriptionLimit),
			MentionedAt:     msg.Timestamp,
			AssignedTo:      cls.FirstMention(),
			Status:          core.StatusUnresolved,
			Urgency:         cls.Urgency,
			ChannelID:       msg.ChannelID,
			SourceMessageID: msg.MessageID,
		}
		if _, evicted := ch.items.Push(item); evicted {
			res.ActionItemsEvicted = 1
		}
		res.ActionItemCreated = true
		s.record(core.JournalEvent{Type: core.EventActionItemCreated, ChannelID: msg.ChannelID, ActionItem: &item, At: now})
	}

	ch.touch(now)
	return res
}

// touch advances lastUpdated, it never moves back.
func (ch *channelState) touch(now time.Time) {
	if now.After(ch.lastUpdated) {
		ch.lastUpdated = now
	}
}

func (ch *channelState) forget(messageID string) {
	if messageID == "" {
		return
	}
	if n := ch.seen[messageID]; n > 1 {
		ch.seen[messageID] = n - 1
		return
	}
	delete(ch.seen, messageID)
}

// Context returns a snapshot of the channel. A positive lookback keeps only messages stamped
// within that window of now. Unknown channels yield an empty context.
func (s *Store) Context(channelID string, lookback time.Duration) core.ConversationContext {
	cc := core.ConversationContext{
		ChannelID:   channelID,
		Messages:    []core.Message{},
		ActionItems: []core.ActionItem{},
	}

	ch, ok := s.lookup(channelID)
	if !ok {
		return cc
	}

	var since time.Time
	if lookback > 0 {
		since = s.cfg.Clock().Add(-lookback)
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	cc.Messages = make([]core.Message, 0, ch.messages.Len())
	ch.messages.Each(func(_ int, m *core.Message) bool {
		if lookback <= 0 || !m.Timestamp.Before(since) {
			cc.Messages = append(cc.Messages, copyMessage(*m))
		}
		return true
	})

	cc.ActionItems = make([]core.ActionItem, 0, ch.items.Len())
	ch.items.Each(func(_ int, item *core.ActionItem) bool {
		cc.ActionItems = append(cc.ActionItems, copyItem(*item))
		return true
	})

	cc.LastUpdated = ch.lastUpdated
	return cc
}

// RecentMessages returns up to n of the newest messages, oldest first.
func (s *Store) RecentMessages(channelID string, n int) []core.Message {
	ch, ok := s.lookup(channelID)
	if !ok || n <= 0 {
		return []core.Message{}
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	skip := max(ch.messages.Len()-n, 0)
	res := make([]core.Message, 0, ch.messages.Len()-skip)
	ch.messages.Each(func(i int, m *core.Message) bool {
		if i >= skip {
			res = append(res, copyMessage(*m))
		}
		return true
	})
	return res
}

func (s *Store) UnresolvedActionItems(channelID string) []core.ActionItem {
	ch, ok := s.lookup(channelID)
	if !ok {
		return []core.ActionItem{}
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()

	res := make([]core.ActionItem, 0, ch.items.Len())
	ch.items.Each(func(_ int, item *core.ActionItem) bool {
		if !item.IsResolved() {
			res = append(res, copyItem(*item))
		}
		return true
	})
	return res
}

// Resolve marks the action item at index (0-based over all retained items) as resolved.
// Resolving an already resolved item is a no-op.
func (s *Store) Resolve(channelID string, index int) error {
	ch, ok := s.lookup(channelID)
	if !ok {
		return core.ErrChannelNotFound
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	if index < 0 || index >= ch.items.Len() {
		return core.ErrIndexOutOfRange
	}

	s.resolve(ch, channelID, ch.items.At(index))
	return nil
}

// ResolveByID resolves the retained action item with the given ID and returns it. The lookup and
// the update share one lock, so items evicted or shifted by concurrent appends are never confused.
func (s *Store) ResolveByID(channelID string, id int64) (core.ActionItem, error) {
	ch, ok := s.lookup(channelID)
	if !ok {
		return core.ActionItem{}, core.ErrChannelNotFound
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()

	var found *core.ActionItem
	ch.items.Each(func(_ int, item *core.ActionItem) bool {
		if item.ID == id {
			found = item
			return false
		}
		return true
	})
	if found == nil {
		return core.ActionItem{}, core.ErrActionItemNotFound
	}

	s.resolve(ch, channelID, found)
	return copyItem(*found), nil
}

// resolve must run under the channel write lock. Already resolved items are left untouched.
func (s *Store) resolve(ch *channelState, channelID string, item *core.ActionItem) {
	if item.IsResolved() {
		return
	}

	now := s.cfg.Clock()
	item.Status = core.StatusResolved
	item.ResolvedAt = &now
	ch.touch(now)

	resolved := copyItem(*item)
	s.record(core.JournalEvent{Type: core.EventActionItemResolved, ChannelID: channelID, ActionItem: &resolved, At: now})
}

// ListChannels returns the known channel IDs sorted.
func (s *Store) ListChannels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.channels))
}

// Restore seeds a channel from a persisted snapshot. The caps still apply and nothing is journaled.
// An existing channel with the same ID is replaced.
func (s *Store) Restore(cc core.ConversationContext) {
	if cc.ChannelID == "" {
		return
	}

	ch := s.newChannel()
	for _, m := range cc.Messages {
		m = m.Normalize()
		if old, evicted := ch.messages.Push(m); evicted {
			ch.forget(old.MessageID)
		}
		if m.MessageID != "" {
			ch.seen[m.MessageID]++
		}
	}
	for _, item := range cc.ActionItems {
		ch.items.Push(copyItem(item))
	}
	ch.lastUpdated = cc.LastUpdated

	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[cc.ChannelID] = ch
}

func (s *Store) record(ev core.JournalEvent) {
	if s.cfg.Journal != nil {
		s.cfg.Journal.Record(ev)
	}
}

func copyMessage(m core.Message) core.Message {
	m.Metadata = maps.Clone(m.Metadata)
	return m
}

func copyItem(item core.ActionItem) core.ActionItem {
	if item.ResolvedAt != nil {
		at := *item.ResolvedAt
		item.ResolvedAt = &at
	}
	return item
}

type counter struct {
	n atomic.Int64
}

func (c *counter) Next() int64 {
	return c.n.Add(1)
}
