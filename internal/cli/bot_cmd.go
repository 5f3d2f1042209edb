package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/example/flashdeck/internal/bot"
)

// BotCmd returns the bot command
func BotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot until interrupted.

Requires TELEGRAM_BOT_TOKEN. ADMIN_USER_IDS lists the users allowed to
import spreadsheets by sending them to the bot.`,
		Args: cobra.NoArgs,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) (err error) {
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, rt.close()) }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.New(rt.cfg, rt.log)
	if err != nil {
		return err
	}

	rt.log.Info("Bot started, press Ctrl+C to stop")
	err = b.Start(ctx)
	if errors.Is(err, context.Canceled) {
		rt.log.Info("Received signal, shutting down")
		err = nil
	}
	if stopErr := b.Stop(); stopErr != nil {
		rt.log.Warn("Error during shutdown", zap.Error(stopErr))
	}
	return err
}
