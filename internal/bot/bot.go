package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/oposbot/internal/leaderboard"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

// UserStore persists bot accounts
type UserStore interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	LinkIdentity(ctx context.Context, telegramID int64, identity string) error
	UpdateNotifications(ctx context.Context, telegramID int64, enabled bool, hour int) error
}

// AttemptLister returns the test history of one identity
type AttemptLister interface {
	ListByUser(ctx context.Context, identity string) ([]models.Attempt, error)
}

// Leaderboard serves the current ranking snapshot
type Leaderboard interface {
	Current(ctx context.Context) (*leaderboard.Snapshot, error)
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram bot application
type Bot struct {
	api         *tgbotapi.BotAPI
	users       UserStore
	attempts    AttemptLister
	study       *study.Service
	leaderboard Leaderboard
	config      *BotConfig
}

// NewBot authorizes against the Telegram API and wires the services
func NewBot(token string, users UserStore, attempts AttemptLister, studyService *study.Service, board Leaderboard, config *BotConfig) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	if config == nil {
		config = DefaultConfig()
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:         api,
		users:       users,
		attempts:    attempts,
		study:       studyService,
		leaderboard: board,
		config:      config,
	}, nil
}

// Start receives updates by long polling until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops receiving updates
func (b *Bot) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.api.StopReceivingUpdates()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Bot stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to stop bot: %v", ctx.Err())
	}
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(telegramID int64, count int) error {
	// Private chats share the user's ID
	msg := tgbotapi.NewMessage(telegramID, formatReminder(count))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "▶️ Start review", CallbackData: callbackReview}},
	})

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder to user %d: %v", telegramID, err)
		return err
	}
	log.Printf("Successfully sent reminder to user %d for %d cards", telegramID, count)
	return nil
}

func (b *Bot) isAdmin(user *models.User) bool {
	return user.IsAdmin || b.config.AdminUserIDs[user.TelegramID]
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %v", err)
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendText(update.Message.Chat.ID, "I don't understand. Use /help to see the available commands.")
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		log.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}
