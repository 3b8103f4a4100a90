package models

import (
	"time"

	"github.com/google/uuid"
)

type FlashcardDeck struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Topic     string    `json:"topic"`
	Language  string    `json:"language"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

type FlashcardCard struct {
	ID             uuid.UUID  `json:"id"`
	DeckID         uuid.UUID  `json:"deck_id"`
	Position       int        `json:"position"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Category       string     `json:"category"`
	IntervalDays   int        `json:"interval_days"`
	EaseFactor     float64    `json:"ease_factor"`
	Repetitions    int        `json:"repetitions"`
	NextReviewAt   time.Time  `json:"next_review_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
}

type DeckWithCards struct {
	Deck  *FlashcardDeck  `json:"deck"`
	Cards []FlashcardCard `json:"cards"`
	Stats *DeckStats      `json:"stats"`
}

type CardRatingRequest struct {
	Rating int `json:"rating"` // 0=Again, 1=Hard, 2=Good, 3=Easy
}

type DeckStats struct {
	TotalCards  int     `json:"total_cards"`
	Mastered    int     `json:"mastered"`
	Learning    int     `json:"learning"`
	New         int     `json:"new"`
	DueToday    int     `json:"due_today"`
	MasteryRate float64 `json:"mastery_rate"`
}
