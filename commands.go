package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/oposbot/internal/bot"
	"github.com/example/oposbot/internal/config"
	"github.com/example/oposbot/internal/database"
	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/internal/excel"
	"github.com/example/oposbot/internal/leaderboard"
	"github.com/example/oposbot/internal/scheduler"
	"github.com/example/oposbot/internal/study"
)

// connect loads the configuration and opens the database
func connect(envFile string) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := database.Connect(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return cfg, nil
}

func newBotCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := connect(*envFile)
			if err != nil {
				return err
			}
			defer database.Close()

			return runBot(cfg)
		},
	}
}

func runBot(cfg *config.Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userRepo := database.NewUserRepository(database.DB)
	attemptRepo := database.NewAttemptRepository(database.DB)
	studyService := study.NewService(database.NewFlashcardRepository(database.DB))
	board := leaderboard.NewBoard(attemptRepo, cfg.MinQuestions, cfg.LeaderboardRefresh)

	b, err := bot.NewBot(cfg.TelegramToken, userRepo, attemptRepo, studyService, board, &bot.BotConfig{
		LeaderboardSize:         cfg.LeaderboardSize,
		DefaultNotificationHour: bot.DefaultConfig().DefaultNotificationHour,
		AdminUserIDs:            cfg.AdminUserIDs,
	})
	if err != nil {
		return fmt.Errorf("failed to create bot: %v", err)
	}

	jobs := scheduler.New(b, userRepo, studyService, board, scheduler.Config{
		NotificationStartHour: cfg.NotificationStartHour,
		NotificationEndHour:   cfg.NotificationEndHour,
		ReviewBatchSize:       cfg.ReviewBatchSize,
		LeaderboardRefresh:    cfg.LeaderboardRefresh,
	})
	if err := jobs.Start(ctx); err != nil {
		return err
	}
	defer jobs.Stop()

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		close(done)
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	go func() {
		if err := b.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Bot error: %v", err)
		}
	}()

	<-done
	log.Println("Bot stopped successfully")
	return nil
}

func newImportCommand(envFile *string) *cobra.Command {
	importConfig := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import-results <file>",
		Short: "Import exam results from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := connect(*envFile); err != nil {
				return err
			}
			defer database.Close()

			importConfig.FilePath = args[0]
			attempts := database.NewAttemptRepository(database.DB)
			module := exam.NewModule(attempts)

			result, err := excel.ImportAttempts(cmd.Context(), module, importConfig)
			if err != nil {
				return err
			}

			for _, msg := range result.Errors {
				log.Printf("Skipped: %s", msg)
			}
			log.Printf("Imported %d of %d results (%d skipped)", result.Imported, result.TotalProcessed, result.Skipped)

			total, err := attempts.Count(cmd.Context())
			if err != nil {
				return err
			}
			log.Printf("%d results stored", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&importConfig.SheetName, "sheet", importConfig.SheetName, "sheet to read from .xlsx files")
	cmd.Flags().IntVar(&importConfig.StartRow, "start-row", importConfig.StartRow, "first data row (1-based)")
	return cmd
}

func newExportCommand(envFile *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "export-leaderboard <file>",
		Short: "Write the leaderboard to an .xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := connect(*envFile)
			if err != nil {
				return err
			}
			defer database.Close()

			board := leaderboard.NewBoard(database.NewAttemptRepository(database.DB), cfg.MinQuestions, 0)
			snapshot, err := board.Current(cmd.Context())
			if err != nil {
				return err
			}

			entries := snapshot.Entries
			if !all {
				entries = leaderboard.Top(entries, cfg.LeaderboardSize)
			}
			if err := excel.ExportLeaderboard(args[0], entries); err != nil {
				return err
			}
			log.Printf("Exported %d leaderboard entries to %s", len(entries), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "export every qualified user instead of the top entries")
	return cmd
}
