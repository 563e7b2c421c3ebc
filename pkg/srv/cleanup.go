package srv

import (
	"context"
	"fmt"

	"github.com/sandevgo/buddybot/pkg/log"
)

// cleanup releases a resource on shutdown. It has nothing to run.
type cleanup struct {
	name string
	fn   func() error
}

// NewCleanup wraps fn as a Service that only acts on shutdown, e.g. closing the database
// after every service that writes to it has stopped.
func NewCleanup(name string, fn func() error) Service {
	return &cleanup{name: name, fn: fn}
}

func (c *cleanup) Start(context.Context) error {
	return nil
}

func (c *cleanup) Shutdown(ctx context.Context) error {
	if c.fn == nil {
		return nil
	}
	if err := c.fn(); err != nil {
		return fmt.Errorf("cleanup %s: %w", c.name, err)
	}
	log.FromCtx(ctx).Debug().Str("resource", c.name).Msg("released")
	return nil
}
