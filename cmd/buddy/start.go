package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

const shutdownTimeout = 10 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the BuddyBot services",
	Long:  `Initializes and starts all configured transports (Telegram, Discord, CLI, HTTP, MCP) and background workers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("version", core.BuddyVersion).Msg("starting buddybot")

		services := NewServices(ctx, stop)

		srv.StartServices(ctx, services)

		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		srv.ShutdownServices(ctx, shutdownCtx, services)
		logger.Info().Msg("buddybot has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
