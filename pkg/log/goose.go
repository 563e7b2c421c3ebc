package log

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger routes migration output into the context logger under the "migrations" component.
type GooseLogger struct {
	logger zerolog.Logger
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: FromCtx(ctx).With().Str("component", "migrations").Logger(),
	}
}

// Fatalf is logged at error level. A failed migration surfaces as the error of goose.Up.
func (g *GooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error().Msgf(trimFormat(format), v...)
}

func (g *GooseLogger) Printf(format string, v ...any) {
	g.logger.Debug().Msgf(trimFormat(format), v...)
}

// goose terminates its formats with a newline, the console writer adds its own.
func trimFormat(format string) string {
	return strings.TrimRight(format, "\n")
}
