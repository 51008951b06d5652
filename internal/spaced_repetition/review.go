package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/oposbot/pkg/models"
)

// Review records a grade on the card and sets its next review date.
// The card is left untouched when the grade or its state is invalid.
func (c *StrictCurve) Review(card *models.Flashcard, grade Grade, now time.Time) (Interval, error) {
	interval, err := c.Schedule(grade, card.ConsecutiveSuccesses)
	if err != nil {
		return Interval{}, err
	}

	reviewedAt := now.UTC()
	nextReview := reviewedAt.Add(interval.Delay())

	card.LastGrade = int(grade)
	card.ConsecutiveSuccesses = interval.ConsecutiveSuccesses
	card.LastReviewedAt = &reviewedAt
	card.NextReviewAt = &nextReview

	return interval, nil
}

// Review applies the default strict curve to a card
func Review(card *models.Flashcard, grade Grade, now time.Time) (Interval, error) {
	return defaultCurve.Review(card, grade, now)
}

// IsMastered reports whether the card has reached the longest interval tier
func (c *StrictCurve) IsMastered(card *models.Flashcard) bool {
	return card.ConsecutiveSuccesses >= len(c.StreakIntervals)
}

// IsMastered uses the default strict curve
func IsMastered(card *models.Flashcard) bool {
	return defaultCurve.IsMastered(card)
}

// IsDue reports whether a card should be reviewed at the given moment
func IsDue(card models.Flashcard, now time.Time) bool {
	return card.NextReviewAt == nil || !card.NextReviewAt.After(now)
}

// DueCards returns up to limit due cards, most overdue first.
// Cards that were never scheduled come before everything else.
func DueCards(cards []models.Flashcard, now time.Time, limit int) []models.Flashcard {
	var due []models.Flashcard
	for _, card := range cards {
		if IsDue(card, now) {
			due = append(due, card)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return nextReviewBefore(due[i], due[j])
	})

	if limit > 0 && len(due) > limit {
		return due[:limit]
	}
	return due
}

// OrderForStudy puts due cards first and the rest afterwards,
// each group ordered by next review date.
func OrderForStudy(cards []models.Flashcard, now time.Time) []models.Flashcard {
	ordered := make([]models.Flashcard, len(cards))
	copy(ordered, cards)

	sort.SliceStable(ordered, func(i, j int) bool {
		dueI, dueJ := IsDue(ordered[i], now), IsDue(ordered[j], now)
		if dueI != dueJ {
			return dueI
		}
		return nextReviewBefore(ordered[i], ordered[j])
	})

	return ordered
}

func nextReviewBefore(a, b models.Flashcard) bool {
	if a.NextReviewAt == nil {
		return b.NextReviewAt != nil
	}
	if b.NextReviewAt == nil {
		return false
	}
	return a.NextReviewAt.Before(*b.NextReviewAt)
}
