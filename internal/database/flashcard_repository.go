package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/oposbot/pkg/models"
)

const flashcardColumns = `id, user_id, deck_id, front, back, last_grade, consecutive_successes,
	last_reviewed_at, next_review_at, created_at`

// FlashcardRepository handles database operations for decks and flashcards
type FlashcardRepository struct {
	db *sqlx.DB
}

// NewFlashcardRepository creates a new repository instance
func NewFlashcardRepository(db *sqlx.DB) *FlashcardRepository {
	return &FlashcardRepository{db: db}
}

// CreateDeck inserts a deck with its cards in one transaction.
// New cards are due immediately.
func (r *FlashcardRepository) CreateDeck(ctx context.Context, userID, title string, contents []models.CardContent, now time.Time) (*models.Deck, []models.Flashcard, error) {
	if len(contents) == 0 {
		return nil, nil, errors.New("a deck needs at least one card")
	}

	createdAt := now.UTC()
	deck := &models.Deck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		CardCount: len(contents),
		CreatedAt: createdAt,
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO decks (id, user_id, title, card_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), deck.ID, deck.UserID, deck.Title, deck.CardCount, deck.CreatedAt)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create deck")
	}

	insertCard := tx.Rebind(`
		INSERT INTO flashcards (` + flashcardColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	cards := make([]models.Flashcard, 0, len(contents))
	for _, content := range contents {
		nextReview := createdAt
		card := models.Flashcard{
			ID:           uuid.NewString(),
			UserID:       userID,
			DeckID:       deck.ID,
			Front:        content.Front,
			Back:         content.Back,
			NextReviewAt: &nextReview,
			CreatedAt:    createdAt,
		}
		_, err := tx.ExecContext(ctx, insertCard,
			card.ID, card.UserID, card.DeckID, card.Front, card.Back,
			card.LastGrade, card.ConsecutiveSuccesses,
			card.LastReviewedAt, card.NextReviewAt, card.CreatedAt,
		)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to create flashcard")
		}
		cards = append(cards, card)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, errors.Wrap(err, "failed to commit deck")
	}
	return deck, cards, nil
}

// GetByID returns a flashcard by ID
func (r *FlashcardRepository) GetByID(ctx context.Context, id string) (*models.Flashcard, error) {
	var card models.Flashcard
	err := r.db.GetContext(ctx, &card, r.db.Rebind(`SELECT `+flashcardColumns+` FROM flashcards WHERE id = ?`), id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get flashcard")
	}
	return &card, nil
}

// ListByUser returns all flashcards of a user
func (r *FlashcardRepository) ListByUser(ctx context.Context, userID string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := r.db.SelectContext(ctx, &cards, r.db.Rebind(`
		SELECT `+flashcardColumns+`
		FROM flashcards
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`), userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list flashcards")
	}
	return cards, nil
}

// ListByDeck returns all flashcards of a deck
func (r *FlashcardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error) {
	var cards []models.Flashcard
	err := r.db.SelectContext(ctx, &cards, r.db.Rebind(`
		SELECT `+flashcardColumns+`
		FROM flashcards
		WHERE deck_id = ?
		ORDER BY created_at ASC, id ASC
	`), deckID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list deck flashcards")
	}
	return cards, nil
}

// ListDecks returns the decks of a user, newest first
func (r *FlashcardRepository) ListDecks(ctx context.Context, userID string) ([]models.Deck, error) {
	var decks []models.Deck
	err := r.db.SelectContext(ctx, &decks, r.db.Rebind(`
		SELECT id, user_id, title, card_count, created_at
		FROM decks
		WHERE user_id = ?
		ORDER BY created_at DESC
	`), userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list decks")
	}
	return decks, nil
}

// UpdateReview stores the review state of a card
func (r *FlashcardRepository) UpdateReview(ctx context.Context, card *models.Flashcard) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE flashcards SET
			last_grade = ?,
			consecutive_successes = ?,
			last_reviewed_at = ?,
			next_review_at = ?
		WHERE id = ? AND user_id = ?
	`),
		card.LastGrade,
		card.ConsecutiveSuccesses,
		card.LastReviewedAt,
		card.NextReviewAt,
		card.ID,
		card.UserID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update flashcard")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDeck removes a deck and all of its cards
func (r *FlashcardRepository) DeleteDeck(ctx context.Context, userID, deckID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM flashcards WHERE deck_id = ? AND user_id = ?`), deckID, userID); err != nil {
		return errors.Wrap(err, "failed to delete flashcards")
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM decks WHERE id = ? AND user_id = ?`), deckID, userID)
	if err != nil {
		return errors.Wrap(err, "failed to delete deck")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return ErrNotFound
	}

	return errors.Wrap(tx.Commit(), "failed to commit deck deletion")
}
