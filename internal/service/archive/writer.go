package archive

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

// DefaultBuffer is the number of journal events held before new ones are dropped.
const DefaultBuffer = 1024

// Writer persists store mutations from its own goroutine. Record never blocks the store.
type Writer struct {
	repo    core.ArchiveRepository
	events  chan core.JournalEvent
	dropped atomic.Int64

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

var (
	_ core.Journal = (*Writer)(nil)
	_ srv.Service  = (*Writer)(nil)
)

func NewWriter(repo core.ArchiveRepository, buffer int) *Writer {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Writer{
		repo:   repo,
		events: make(chan core.JournalEvent, buffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Record queues ev, dropping it when the buffer is full.
func (w *Writer) Record(ev core.JournalEvent) {
	select {
	case w.events <- ev:
	default:
		w.dropped.Add(1)
	}
}

// Dropped reports how many events were lost to a full buffer.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Start writes events until Shutdown, then drains what is still buffered.
func (w *Writer) Start(ctx context.Context) error {
	defer close(w.done)

	ctx = log.WithComponent(ctx, "archive")
	// writes outlive the start context so the final drain still reaches the database
	writeCtx := context.WithoutCancel(ctx)
	log.FromCtx(ctx).Info().Msg("archive writer started")

	var reported int64
	for {
		select {
		case ev := <-w.events:
			w.write(writeCtx, ev)
			if n := w.dropped.Load(); n > reported {
				log.FromCtx(ctx).Warn().Int64("dropped", n-reported).Msg("archive buffer full, events dropped")
				reported = n
			}
		case <-w.stop:
			w.drain(writeCtx)
			return nil
		}
	}
}

func (w *Writer) drain(ctx context.Context) {
	n := 0
	for {
		select {
		case ev := <-w.events:
			w.write(ctx, ev)
			n++
		default:
			log.FromCtx(ctx).Debug().Int("events", n).Msg("archive drained")
			return
		}
	}
}

// Shutdown stops the writer and waits for the drain. It must only be called after Start.
func (w *Writer) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("archive drain interrupted: %w", ctx.Err())
	}
}

func (w *Writer) write(ctx context.Context, ev core.JournalEvent) {
	var err error
	switch ev.Type {
	case core.EventMessageAppended:
		if ev.Message != nil {
			err = w.repo.SaveMessage(ctx, *ev.Message)
		}
	case core.EventActionItemCreated:
		if ev.ActionItem != nil {
			err = w.repo.SaveActionItem(ctx, *ev.ActionItem)
		}
	case core.EventActionItemResolved:
		if ev.ActionItem != nil {
			err = w.repo.MarkResolved(ctx, ev.ActionItem.ID, ev.At)
		}
	}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).
			Str("channel", ev.ChannelID).
			Str("event", string(ev.Type)).
			Msg("failed to archive event")
	}
}
