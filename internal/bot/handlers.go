package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/oposbot/internal/database"
	"github.com/example/oposbot/internal/exam"
	"github.com/example/oposbot/internal/excel"
	"github.com/example/oposbot/internal/leaderboard"
	"github.com/example/oposbot/internal/spaced_repetition"
	"github.com/example/oposbot/internal/study"
	"github.com/example/oposbot/pkg/models"
)

const helpText = "📖 Commands\n\n" +
	"/review - Review the flashcards that are due\n" +
	"/cards - Show your flashcard summary\n" +
	"/decks - List your decks\n" +
	"/deletedeck <number> - Delete a deck from /decks\n" +
	"/add - Create a deck: one \"question | answer\" per line, optional title on the first line\n" +
	"/link <email> - Link the email used for your exam results\n" +
	"/leaderboard [column] [asc|desc] - Show the ranking\n" +
	"/rank - Show your standing\n" +
	"/notify on|off - Enable or disable reminders\n" +
	"/time <hour> - Set the reminder hour (0-23, UTC)\n\n" +
	"Grades: 1 forgot, 2 unsure, 3 adequate, 4 confident, 5 perfect.\n" +
	"Leaderboard columns: wilson, questions, correct, incorrect, average, category."

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}

	user, err := b.ensureUser(ctx, message.From)
	if err != nil {
		return err
	}

	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		err = b.handleStart(chatID, user)
	case "help":
		err = b.sendText(chatID, helpText)
	case "link":
		err = b.handleLink(ctx, chatID, user, args)
	case "add":
		err = b.handleAddDeck(ctx, chatID, user, args)
	case "review":
		err = b.sendNextCard(ctx, chatID, user)
	case "cards":
		err = b.handleCards(ctx, chatID, user)
	case "decks":
		err = b.handleDecks(ctx, chatID, user)
	case "deletedeck":
		err = b.handleDeleteDeck(ctx, chatID, user, args)
	case "leaderboard":
		err = b.handleLeaderboard(ctx, chatID, args)
	case "rank":
		err = b.handleRank(ctx, chatID, user)
	case "notify":
		err = b.handleNotifyCommand(ctx, chatID, user, args)
	case "time":
		err = b.handleTimeCommand(ctx, chatID, user, args)
	case "export":
		err = b.handleExport(ctx, chatID, user)
	default:
		err = b.sendText(chatID, "Unknown command. Use /help to see the available commands.")
	}
	return err
}

// ensureUser loads the account of a Telegram user, creating it on first contact
func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*models.User, error) {
	user, err := b.users.GetByTelegramID(ctx, from.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}

	user = &models.User{
		TelegramID:          from.ID,
		Username:            from.UserName,
		FirstName:           from.FirstName,
		IsAdmin:             b.config.AdminUserIDs[from.ID],
		NotificationEnabled: true,
		NotificationHour:    b.config.DefaultNotificationHour,
	}
	if err := b.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	log.Printf("Registered user %d (%s)", user.TelegramID, user.Username)
	return user, nil
}

func (b *Bot) handleStart(chatID int64, user *models.User) error {
	text := fmt.Sprintf("👋 Welcome, %s!\n\n", user.FirstName) +
		"I schedule your flashcards on a strict forgetting curve and keep the exam leaderboard.\n\n" +
		"1. Create a deck with /add\n" +
		"2. Review what is due with /review\n" +
		"3. Link your exam email with /link to appear on the /leaderboard"

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "▶️ Start review", CallbackData: callbackReview}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, user *models.User, args string) error {
	identity, ok := parseLinkArgs(args)
	if !ok {
		return b.sendText(chatID, "Please provide the email you take the tests with: /link <email>")
	}

	if err := b.users.LinkIdentity(ctx, user.TelegramID, identity); err != nil {
		return fmt.Errorf("failed to link identity: %v", err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Linked to %s", identity))
}

func (b *Bot) handleAddDeck(ctx context.Context, chatID int64, user *models.User, args string) error {
	title, body := splitDeckArgs(args)
	contents := study.ParseCards(body)
	if len(contents) == 0 {
		return b.sendText(chatID, "Send /add followed by one card per line:\nquestion | answer")
	}

	deck, _, err := b.study.CreateDeck(ctx, user.CardOwner(), title, contents)
	if err != nil {
		return fmt.Errorf("failed to create deck: %v", err)
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Deck \"%s\" created with %s.", deck.Title, plural(deck.CardCount, "card", "cards")))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "▶️ Start review", CallbackData: callbackReview}},
	})
	return b.sendMessage(msg)
}

// sendNextCard shows the front of the most overdue card
func (b *Bot) sendNextCard(ctx context.Context, chatID int64, user *models.User) error {
	cards, err := b.study.NextCards(ctx, user.CardOwner(), 1)
	if err != nil {
		return fmt.Errorf("failed to get due cards: %v", err)
	}
	if len(cards) == 0 {
		return b.handleCards(ctx, chatID, user)
	}

	card := cards[0]
	msg := tgbotapi.NewMessage(chatID, formatCardFront(card))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "👀 Show answer", CallbackData: showCallback(card.ID)}},
	})
	return b.sendMessage(msg)
}

func (b *Bot) handleCards(ctx context.Context, chatID int64, user *models.User) error {
	summary, err := b.study.Summary(ctx, user.CardOwner())
	if err != nil {
		return fmt.Errorf("failed to get card summary: %v", err)
	}

	msg := tgbotapi.NewMessage(chatID, formatSummary(summary, time.Now()))
	if summary.Due > 0 {
		msg.ReplyMarkup = createKeyboard([][]MenuButton{
			{{Text: "▶️ Start review", CallbackData: callbackReview}},
		})
	}
	return b.sendMessage(msg)
}

func (b *Bot) handleDecks(ctx context.Context, chatID int64, user *models.User) error {
	decks, err := b.study.Decks(ctx, user.CardOwner())
	if err != nil {
		return fmt.Errorf("failed to get decks: %v", err)
	}

	now := time.Now()
	due := make([]int, len(decks))
	for i, deck := range decks {
		cards, err := b.study.DeckCards(ctx, user.CardOwner(), deck.ID)
		if err != nil {
			return fmt.Errorf("failed to get deck cards: %v", err)
		}
		for _, card := range cards {
			if !spaced_repetition.IsDue(card, now) {
				// Due cards come first
				break
			}
			due[i]++
		}
	}
	return b.sendText(chatID, formatDecks(decks, due))
}

func (b *Bot) handleDeleteDeck(ctx context.Context, chatID int64, user *models.User, args string) error {
	decks, err := b.study.Decks(ctx, user.CardOwner())
	if err != nil {
		return fmt.Errorf("failed to get decks: %v", err)
	}

	n, err := strconv.Atoi(args)
	if err != nil || n < 1 || n > len(decks) {
		return b.sendText(chatID, "Please give the deck number shown by /decks: /deletedeck <number>")
	}

	deck := decks[n-1]
	if err := b.study.DeleteDeck(ctx, user.CardOwner(), deck.ID); err != nil {
		return fmt.Errorf("failed to delete deck: %v", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🗑 Deck \"%s\" deleted.", deck.Title))
}

func (b *Bot) handleLeaderboard(ctx context.Context, chatID int64, args string) error {
	column, direction, err := parseLeaderboardArgs(args)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("%v. Usage: /leaderboard [column] [asc|desc]", err))
	}

	snapshot, err := b.leaderboard.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get leaderboard: %v", err)
	}

	entries := leaderboard.SortEntries(snapshot.Entries, column, direction)
	entries = leaderboard.Top(entries, b.config.LeaderboardSize)
	return b.sendText(chatID, formatLeaderboard(entries, snapshot.MinQuestions))
}

func (b *Bot) handleRank(ctx context.Context, chatID int64, user *models.User) error {
	identity := exam.NormalizeIdentity(user.Identity)
	if identity == "" {
		return b.sendText(chatID, "Link your exam email first: /link <email>")
	}

	snapshot, err := b.leaderboard.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get leaderboard: %v", err)
	}
	text := formatStanding(snapshot.Standing(identity), snapshot.MinQuestions)

	attempts, err := b.attempts.ListByUser(ctx, identity)
	if err != nil {
		log.Printf("Failed to get attempts for %s: %v", identity, err)
	} else {
		text += formatStats(exam.UserStats(attempts))
	}
	return b.sendText(chatID, text)
}

func (b *Bot) handleNotifyCommand(ctx context.Context, chatID int64, user *models.User, args string) error {
	var enabled bool
	switch strings.ToLower(args) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return b.sendText(chatID, "Please specify on or off: /notify <on|off>")
	}

	if err := b.users.UpdateNotifications(ctx, user.TelegramID, enabled, user.NotificationHour); err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Reminders %s", boolToEnabledString(enabled)))
}

func (b *Bot) handleTimeCommand(ctx context.Context, chatID int64, user *models.User, args string) error {
	hour, err := strconv.Atoi(args)
	if err != nil || hour < 0 || hour > 23 {
		return b.sendText(chatID, "Please specify an hour between 0 and 23: /time <hour>")
	}

	if err := b.users.UpdateNotifications(ctx, user.TelegramID, user.NotificationEnabled, hour); err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return b.sendText(chatID, fmt.Sprintf("✅ Reminder time set to %d:00 UTC", hour))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, user *models.User) error {
	if !b.isAdmin(user) {
		return b.sendText(chatID, "This command is only available for administrators.")
	}

	snapshot, err := b.leaderboard.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to get leaderboard: %v", err)
	}

	var buf bytes.Buffer
	if err := excel.WriteLeaderboard(&buf, snapshot.Entries); err != nil {
		return err
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("leaderboard-%s.xlsx", snapshot.ComputedAt.Format("2006-01-02")),
		Bytes: buf.Bytes(),
	})
	return b.sendMessage(doc)
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.From == nil {
		return fmt.Errorf("invalid callback data: required fields are missing")
	}

	// Always answer the callback query to remove the loading state
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Warning: Failed to answer callback: %v", err)
	}

	user, err := b.ensureUser(ctx, callback.From)
	if err != nil {
		return err
	}
	chatID := callback.Message.Chat.ID

	switch {
	case callback.Data == callbackReview:
		return b.sendNextCard(ctx, chatID, user)
	case strings.HasPrefix(callback.Data, callbackShowPrefix):
		return b.handleShowAnswer(ctx, chatID, user, strings.TrimPrefix(callback.Data, callbackShowPrefix))
	case strings.HasPrefix(callback.Data, callbackGradePrefix):
		cardID, grade, err := parseGradeCallback(callback.Data)
		if err != nil {
			return err
		}
		return b.handleGrade(ctx, chatID, user, cardID, grade)
	default:
		return b.sendText(chatID, "⚠️ Unknown action")
	}
}

func (b *Bot) handleShowAnswer(ctx context.Context, chatID int64, user *models.User, cardID string) error {
	card, err := b.study.Card(ctx, user.CardOwner(), cardID)
	if err != nil {
		return b.cardError(chatID, err)
	}

	msg := tgbotapi.NewMessage(chatID, formatCardBack(*card))
	msg.ReplyMarkup = createKeyboard(gradeButtons(card.ID))
	return b.sendMessage(msg)
}

func (b *Bot) handleGrade(ctx context.Context, chatID int64, user *models.User, cardID string, grade spaced_repetition.Grade) error {
	outcome, err := b.study.SubmitReview(ctx, user.CardOwner(), cardID, grade)
	if err != nil {
		return b.cardError(chatID, err)
	}

	if err := b.sendText(chatID, formatReviewOutcome(outcome)); err != nil {
		return err
	}
	return b.sendNextCard(ctx, chatID, user)
}

// cardError answers review failures the user can act on and reports the rest
func (b *Bot) cardError(chatID int64, err error) error {
	var gradeErr *spaced_repetition.InvalidGradeError
	var stateErr *spaced_repetition.InvalidStateError
	switch {
	case errors.As(err, &gradeErr):
		return b.sendText(chatID, "⚠️ Grades go from 1 to 5.")
	case errors.As(err, &stateErr):
		log.Printf("Corrupt review state: %v", err)
		return b.sendText(chatID, "⚠️ This card has an invalid review history.")
	case errors.Is(err, database.ErrNotFound), errors.Is(err, study.ErrCardNotOwned):
		return b.sendText(chatID, "⚠️ This card no longer exists.")
	default:
		if sendErr := b.sendText(chatID, "❌ Something went wrong. Please try again later."); sendErr != nil {
			log.Printf("Failed to send error message: %v", sendErr)
		}
		return err
	}
}
