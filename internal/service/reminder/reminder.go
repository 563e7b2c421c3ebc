package reminder

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/service/command"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

const digestItems = 10

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Service posts a digest of unresolved action items to every channel a notifier owns.
type Service struct {
	schedule  cron.Schedule
	store     core.ContextStore
	notifiers []core.Notifier
	cron      *cron.Cron
}

var _ srv.Service = (*Service)(nil)

func New(schedule string, store core.ContextStore, notifiers ...core.Notifier) (*Service, error) {
	sched, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}
	return &Service{
		schedule:  sched,
		store:     store,
		notifiers: notifiers,
		cron:      cron.New(cron.WithParser(parser)),
	}, nil
}

// Start runs the scheduler until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "reminder")
	s.cron.Schedule(s.schedule, cron.FuncJob(func() {
		s.Digest(ctx)
	}))
	s.cron.Start()
	log.FromCtx(ctx).Info().Int("notifiers", len(s.notifiers)).Msg("reminder scheduler started")

	<-ctx.Done()
	return nil
}

// Shutdown stops the scheduler and waits for a running digest.
func (s *Service) Shutdown(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Digest notifies every owned channel with open items and returns how many were notified.
func (s *Service) Digest(ctx context.Context) int {
	logger := log.FromCtx(ctx)

	sent := 0
	for _, channelID := range s.store.ListChannels() {
		n := s.owner(channelID)
		if n == nil {
			continue
		}
		items := s.store.UnresolvedActionItems(channelID)
		if len(items) == 0 {
			continue
		}

		if err := n.Notify(ctx, channelID, Format(items)); err != nil {
			logger.Warn().Err(err).Str("channel", channelID).Msg("failed to send reminder")
			continue
		}
		sent++
	}

	logger.Debug().Int("channels", sent).Msg("reminder digest sent")
	return sent
}

func (s *Service) owner(channelID string) core.Notifier {
	for _, n := range s.notifiers {
		if n.Owns(channelID) {
			return n
		}
	}
	return nil
}

// Format renders the digest as Markdown.
func Format(items []core.ActionItem) string {
	return fmt.Sprintf("⏰ **Reminder: %d open action items**\n\n", len(items)) +
		command.FormatActionItems(items, digestItems) +
		"Use /resolve <number> once something is done."
}
