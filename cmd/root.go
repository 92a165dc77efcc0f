package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/log"
)

func Start() {
	logger := log.Console(os.Stderr, false).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_STOREFRONT).
		Str(constants.KEY_TAG, "main Start").
		Logger()

	logger.Debug().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Debug().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{
		Use:           constants.APP_STOREFRONT,
		Short:         "Multi-shop storefront backend and shopping cart client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands := []*cobra.Command{
		{
			Use:   "api",
			Short: "Run the storefront http api",
			Run: func(cmd *cobra.Command, args []string) {
				runApiService(cmd.Context())
			},
		},
		{
			Use:   "notification",
			Short: "Run the order event listener",
			Run: func(cmd *cobra.Command, args []string) {
				runNotificationService(cmd.Context())
			},
		},
		cartCmd.NewCartCommand(),
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}
