package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           "oposbot",
		Short:         "Flashcard review and exam leaderboard Telegram bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the .env file")

	rootCmd.AddCommand(
		newBotCommand(&envFile),
		newImportCommand(&envFile),
		newExportCommand(&envFile),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
