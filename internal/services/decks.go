package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/models"
)

type deckRepository interface {
	SaveDeck(ctx context.Context, d *models.FlashcardDeck, cards []models.FlashcardCard) error
}

// DeckService stores generated flashcard sets as reviewable decks.
type DeckService struct {
	repo deckRepository
}

func NewDeckService(repo deckRepository) *DeckService {
	return &DeckService{repo: repo}
}

// SaveGenerated stores a flashcard result for userID. It refuses to write
// once ctx is done so an abandoned request leaves nothing behind.
func (s *DeckService) SaveGenerated(ctx context.Context, userID uuid.UUID, res *generation.Result) (uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, err
	}
	flashcards, ok := res.Content.Value.([]generation.Flashcard)
	if !ok {
		return uuid.Nil, fmt.Errorf("result of type %s is not a flashcard set", res.Type)
	}

	cards := make([]models.FlashcardCard, len(flashcards))
	for i, f := range flashcards {
		cards[i] = models.FlashcardCard{Front: f.Front, Back: f.Back, Category: f.Category}
	}
	topic := res.Params.String("tema")
	deck := &models.FlashcardDeck{
		UserID:   userID,
		Title:    "Flashcards - " + topic,
		Topic:    topic,
		Language: res.Params.String("idioma"),
	}
	if err := s.repo.SaveDeck(ctx, deck, cards); err != nil {
		return uuid.Nil, err
	}
	return deck.ID, nil
}
