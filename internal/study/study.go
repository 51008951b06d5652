package study

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/oposbot/internal/spaced_repetition"
	"github.com/example/oposbot/pkg/models"
)

// CardStore reads and writes flashcards
type CardStore interface {
	GetByID(ctx context.Context, id string) (*models.Flashcard, error)
	ListByUser(ctx context.Context, userID string) ([]models.Flashcard, error)
	UpdateReview(ctx context.Context, card *models.Flashcard) error
	CreateDeck(ctx context.Context, userID, title string, contents []models.CardContent, now time.Time) (*models.Deck, []models.Flashcard, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.Flashcard, error)
	ListDecks(ctx context.Context, userID string) ([]models.Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID string) error
}

// ErrCardNotOwned is returned when a user reviews somebody else's card
var ErrCardNotOwned = errors.New("flashcard does not belong to user")

// Service runs flashcard review sessions
type Service struct {
	cards CardStore
	curve *spaced_repetition.StrictCurve
	now   func() time.Time
}

// NewService creates a study service with the default strict curve
func NewService(cards CardStore) *Service {
	return &Service{
		cards: cards,
		curve: spaced_repetition.NewStrictCurve(),
		now:   time.Now,
	}
}

// ReviewOutcome is the result of grading a card
type ReviewOutcome struct {
	Card     models.Flashcard
	Interval spaced_repetition.Interval
}

// SubmitReview grades a card and stores its new schedule.
// Invalid grades are rejected before anything is read or written.
func (s *Service) SubmitReview(ctx context.Context, userID, cardID string, grade spaced_repetition.Grade) (*ReviewOutcome, error) {
	if !grade.Valid() {
		return nil, &spaced_repetition.InvalidGradeError{Grade: int(grade)}
	}

	card, err := s.Card(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	interval, err := s.curve.Review(card, grade, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.cards.UpdateReview(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to save review: %w", err)
	}

	log.Printf("[Flashcard %s] grade %d, streak %d, next review in %d min",
		card.ID, grade, card.ConsecutiveSuccesses, interval.DelayMinutes)

	return &ReviewOutcome{Card: *card, Interval: interval}, nil
}

// Card loads a flashcard owned by the user
func (s *Service) Card(ctx context.Context, userID, cardID string) (*models.Flashcard, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrCardNotOwned
	}
	return card, nil
}

// NextCards returns up to limit due cards for the user
func (s *Service) NextCards(ctx context.Context, userID string, limit int) ([]models.Flashcard, error) {
	cards, err := s.cards.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return spaced_repetition.DueCards(cards, s.now(), limit), nil
}

// Summary counts the cards of a user by review state
type Summary struct {
	Total    int
	Due      int
	Mastered int
	New      int
	NextDue  *time.Time // Earliest upcoming review when nothing is due
}

// Summary returns review counts for the user
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	cards, err := s.cards.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	now := s.now()
	summary := Summary{Total: len(cards)}
	for i := range cards {
		card := &cards[i]
		switch {
		case spaced_repetition.IsDue(*card, now):
			summary.Due++
		case summary.NextDue == nil || card.NextReviewAt.Before(*summary.NextDue):
			next := *card.NextReviewAt
			summary.NextDue = &next
		}
		if s.curve.IsMastered(card) {
			summary.Mastered++
		}
		if card.LastGrade == 0 {
			summary.New++
		}
	}
	if summary.Due > 0 {
		summary.NextDue = nil
	}
	return summary, nil
}

// CreateDeck stores a new deck; blank cards are dropped
func (s *Service) CreateDeck(ctx context.Context, userID, title string, contents []models.CardContent) (*models.Deck, []models.Flashcard, error) {
	var clean []models.CardContent
	for _, c := range contents {
		front, back := strings.TrimSpace(c.Front), strings.TrimSpace(c.Back)
		if front == "" || back == "" {
			continue
		}
		clean = append(clean, models.CardContent{Front: front, Back: back})
	}
	if len(clean) == 0 {
		return nil, nil, fmt.Errorf("no valid cards to save")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = "Flashcards - " + s.now().Format("2006-01-02")
	}
	return s.cards.CreateDeck(ctx, userID, title, clean, s.now())
}

// Decks returns the decks of the user, newest first
func (s *Service) Decks(ctx context.Context, userID string) ([]models.Deck, error) {
	return s.cards.ListDecks(ctx, userID)
}

// DeckCards returns the user's cards of one deck, due cards first
func (s *Service) DeckCards(ctx context.Context, userID, deckID string) ([]models.Flashcard, error) {
	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}

	owned := cards[:0]
	for _, c := range cards {
		if c.UserID == userID {
			owned = append(owned, c)
		}
	}
	return spaced_repetition.OrderForStudy(owned, s.now()), nil
}

// DeleteDeck removes a deck with its cards
func (s *Service) DeleteDeck(ctx context.Context, userID, deckID string) error {
	if err := s.cards.DeleteDeck(ctx, userID, deckID); err != nil {
		return err
	}
	log.Printf("[Deck %s] deleted by %s", deckID, userID)
	return nil
}

// ParseCards reads "front | back" lines
func ParseCards(text string) []models.CardContent {
	var cards []models.CardContent
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, "|", 2)
		if len(parts) != 2 {
			continue
		}
		cards = append(cards, models.CardContent{
			Front: strings.TrimSpace(parts[0]),
			Back:  strings.TrimSpace(parts[1]),
		})
	}
	return cards
}
