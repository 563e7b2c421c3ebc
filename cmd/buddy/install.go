package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sandevgo/buddybot/internal/config"
	"github.com/sandevgo/buddybot/internal/service/installer"
	"github.com/sandevgo/buddybot/pkg/log"
)

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Configure BuddyBot interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting installation process")

		// the wizard includes the save step
		if _, err := installer.RunWizard(); err != nil {
			return err
		}

		envPath := config.GetEnvFilePath()
		if _, err := godotenv.Read(envPath); err != nil {
			logger.Warn().Err(err).Str("path", envPath).Msg("written .env file cannot be parsed")
			return err
		}

		logger.Info().Str("path", envPath).Msg("configuration saved")
		logger.Info().Msg("Installation complete! You can now run 'buddy start'.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
