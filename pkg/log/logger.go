package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

// diodeSize is the ring size of the non-blocking writer.
const diodeSize = 1000

// NewContextWithLogger installs the global console logger and returns a context carrying it.
// The returned func flushes and closes the underlying diode writer.
func NewContextWithLogger(ctx context.Context, debug bool) (context.Context, func()) {
	return NewContextWithWriter(ctx, os.Stdout, debug)
}

// NewContextWithWriter is NewContextWithLogger with a custom sink.
func NewContextWithWriter(ctx context.Context, out io.Writer, debug bool) (context.Context, func()) {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return ""
	}

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	wr := diode.NewWriter(out, diodeSize, 5*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	output := zerolog.ConsoleWriter{
		Out:        wr,
		TimeFormat: time.DateTime,
		PartsOrder: []string{
			zerolog.LevelFieldName,
			zerolog.TimestampFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		},
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(2).
		Logger()

	log.Logger = logger

	return log.With().Logger().WithContext(ctx), func() {
		_ = wr.Close()
	}
}

// WithComponent returns a context whose logger tags every entry with component.
func WithComponent(ctx context.Context, component string) context.Context {
	l := FromCtx(ctx).With().Str("component", component).Logger()
	return l.WithContext(ctx)
}

// FromCtx returns the logger bound to ctx, or a disabled logger when there is none.
func FromCtx(ctx context.Context) *zerolog.Logger {
	return log.Ctx(ctx)
}
