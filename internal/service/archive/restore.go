package archive

import (
	"context"
	"fmt"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
)

// Restorer seeds a channel without journaling it again.
type Restorer interface {
	Restore(cc core.ConversationContext)
}

// Restore loads the newest archived window of every channel into store.
func Restore(ctx context.Context, repo core.ArchiveRepository, store Restorer, cfg core.MemoryConfig) (int, error) {
	channels, err := repo.LoadChannels(ctx, cfg.GetMessageCap(), cfg.GetActionItemCap())
	if err != nil {
		return 0, fmt.Errorf("failed to load archive: %w", err)
	}

	for _, cc := range channels {
		store.Restore(cc)
	}

	log.FromCtx(ctx).Info().Int("channels", len(channels)).Msg("restored conversation context from archive")
	return len(channels), nil
}
