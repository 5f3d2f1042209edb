package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/flashdeck/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flashdeck",
		Short: "Flashcard study and listening for vocabulary, flags and geography",
		Long: `flashdeck turns spreadsheets of items into decks you can study as
scrolling cards with hidden answers, or listen to read aloud.

Decks are served in the terminal or through a Telegram bot.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.BotCmd())
	rootCmd.AddCommand(cli.StudyCmd())
	rootCmd.AddCommand(cli.ListenCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.DatasetsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
