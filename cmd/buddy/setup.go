package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/core"
	"github.com/sandevgo/buddybot/internal/providers/llm"
	"github.com/sandevgo/buddybot/internal/service/agent"
	"github.com/sandevgo/buddybot/internal/service/archive"
	"github.com/sandevgo/buddybot/internal/service/buddy"
	"github.com/sandevgo/buddybot/internal/service/command"
	"github.com/sandevgo/buddybot/internal/service/gate"
	"github.com/sandevgo/buddybot/internal/service/memory"
	"github.com/sandevgo/buddybot/internal/service/reminder"
	"github.com/sandevgo/buddybot/internal/storage/sqlite"
	"github.com/sandevgo/buddybot/internal/transport/cli"
	"github.com/sandevgo/buddybot/internal/transport/discord"
	httpserver "github.com/sandevgo/buddybot/internal/transport/http"
	mcpserver "github.com/sandevgo/buddybot/internal/transport/mcp"
	"github.com/sandevgo/buddybot/internal/transport/telegram"
	"github.com/sandevgo/buddybot/pkg/id"
	"github.com/sandevgo/buddybot/pkg/log"
	"github.com/sandevgo/buddybot/pkg/srv"
)

// NewServices builds every service in start order. Shutdown runs in reverse,
// so the archive writer drains after the transports stop and before the database closes.
func NewServices(ctx context.Context, stop context.CancelFunc) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	if err := initEnv(ctx, config.GetEnvFilePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)

	// 2. Context store, optionally journaled to sqlite
	storeCfg := memory.NewStoreConfig(appCfg)

	ids, err := id.NewGenerator(appCfg.SnowflakeNode)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize id generator")
	}
	storeCfg.IDs = ids

	var repo *sqlite.ArchiveRepo
	if appCfg.EnableArchive {
		db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize storage")
		}
		services = append(services, srv.NewCleanup("database", db.Close))

		repo = sqlite.NewArchiveRepo(db)
		writer := archive.NewWriter(repo, archive.DefaultBuffer)
		storeCfg.Journal = writer
		services = append(services, writer)
	}

	store := memory.NewStore(storeCfg)

	if repo != nil {
		if _, err := archive.Restore(ctx, repo, store, appCfg); err != nil {
			logger.Fatal().Err(err).Msg("failed to restore channels from archive")
		}
	}

	// 3. Answerer
	gen, err := llm.NewGenerator(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}
	answerer := agent.NewAgent(llmCfg, gen)

	// 4. Pipeline and chat commands
	pipeline := buddy.New(buddy.Config{
		Lookback:       appCfg.QueryLookback,
		MinReplyLength: appCfg.MinReplyLength,
	}, store, gate.New(), answerer)
	router := command.New(command.NewCommands(store, pipeline))

	// 5. Transports
	transports, notifiers, err := initTransports(ctx, appCfg, pipeline, router, store, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	// 6. Reminders
	if appCfg.ReminderSchedule != "" {
		if len(notifiers) == 0 {
			logger.Warn().Msg("reminder schedule set but no chat transport can deliver it")
		} else {
			rem, err := reminder.New(appCfg.ReminderSchedule, store, notifiers...)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to initialize reminders")
			}
			services = append(services, rem)
		}
	}

	return services
}

func initTransports(
	ctx context.Context,
	cfg *config.AppConfig,
	pipeline *buddy.Buddy,
	router core.CmdRouter,
	store core.ContextStore,
	stop context.CancelFunc,
) ([]srv.Service, []core.Notifier, error) {
	var (
		services  []srv.Service
		notifiers []core.Notifier
	)

	if cfg.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), pipeline, router)
		if err != nil {
			return nil, nil, err
		}
		services = append(services, bot)
		notifiers = append(notifiers, bot)
	}

	if cfg.EnableDiscord {
		bot, err := discord.NewBot(ctx, config.NewDiscordConfig(ctx), pipeline, router)
		if err != nil {
			return nil, nil, err
		}
		services = append(services, bot)
		notifiers = append(notifiers, bot)
	}

	if cfg.EnableHTTP {
		services = append(services, httpserver.NewServer(ctx, cfg.HTTPAddr, pipeline, store, debug || config.IsDebug()))
	}

	if cfg.EnableMCP {
		services = append(services, mcpserver.NewServer(cfg.MCPAddr, store, pipeline))
	}

	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(pipeline, router, cfg)
		if err != nil {
			return nil, nil, err
		}
		services = append(services, &stopOnReturn{Service: rl, stop: stop})
	}

	return services, notifiers, nil
}

// stopOnReturn ends the process when the wrapped service returns on its own, e.g. on "exit" in the CLI.
type stopOnReturn struct {
	srv.Service
	stop context.CancelFunc
}

func (s *stopOnReturn) Start(ctx context.Context) error {
	defer s.stop()
	return s.Service.Start(ctx)
}

func initEnv(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
