package llm

import (
	"context"
	"time"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/retry"
)

// Retrying retries transient completion failures. It relies on the caller's deadline,
// so the answerer's timeout bounds all attempts together.
type Retrying struct {
	next    core.TextGenerator
	retrier *retry.Retrier
}

func NewRetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:    2,
		BackoffFactor: 2,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      4 * time.Second,
		Jitter:        100 * time.Millisecond,
	}
}

func NewRetrying(next core.TextGenerator, cfg *retry.Config) *Retrying {
	return &Retrying{
		next:    next,
		retrier: retry.NewRetrier(cfg),
	}
}

func (r *Retrying) Complete(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	var text string
	attempt := 0
	err := r.retrier.Do(ctx, func() error {
		attempt++
		var err error
		text, err = r.next.Complete(ctx, prompt, maxOutputTokens)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return retry.Permanent(err)
		}
		log.FromCtx(ctx).Debug().Err(err).Int("attempt", attempt).Msg("completion failed, retrying")
		return err
	})
	return text, err
}
