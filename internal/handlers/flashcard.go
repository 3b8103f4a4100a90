package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vetstudy-backend/internal/middleware"
	"vetstudy-backend/internal/models"
)

type flashcardStore interface {
	GetDeckByID(ctx context.Context, id uuid.UUID) (*models.FlashcardDeck, error)
	ListDecksByUser(ctx context.Context, userID uuid.UUID) ([]*models.FlashcardDeck, error)
	DeleteDeck(ctx context.Context, id uuid.UUID) error
	GetCardsByDeck(ctx context.Context, deckID uuid.UUID) ([]models.FlashcardCard, error)
	GetDeckStats(ctx context.Context, deckID uuid.UUID) (*models.DeckStats, error)
	CardOwner(ctx context.Context, cardID uuid.UUID) (uuid.UUID, error)
	RateCard(ctx context.Context, cardID uuid.UUID, rating int) (*models.FlashcardCard, error)
}

// FlashcardHandler serves decks saved from flashcard generations.
type FlashcardHandler struct {
	flashRepo flashcardStore
}

func NewFlashcardHandler(flashRepo flashcardStore) *FlashcardHandler {
	return &FlashcardHandler{flashRepo: flashRepo}
}

func (h *FlashcardHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	decks, err := h.flashRepo.ListDecksByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar os baralhos.", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"decks": decks})
}

func (h *FlashcardHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	cards, err := h.flashRepo.GetCardsByDeck(r.Context(), deck.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar os cartões.", r))
		return
	}
	stats, err := h.flashRepo.GetDeckStats(r.Context(), deck.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar as estatísticas.", r))
		return
	}

	writeJSON(w, http.StatusOK, models.DeckWithCards{Deck: deck, Cards: cards, Stats: stats})
}

func (h *FlashcardHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	deck, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	if err := h.flashRepo.DeleteDeck(r.Context(), deck.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao excluir o baralho.", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Baralho excluído com sucesso!"})
}

func (h *FlashcardHandler) RateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "ID de cartão inválido.", r))
		return
	}

	var req models.CardRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Corpo da requisição inválido.", r))
		return
	}

	if req.Rating < 0 || req.Rating > 3 {
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Dados inválidos.",
			map[string]string{"rating": "A avaliação deve estar entre 0 e 3."}, r))
		return
	}

	owner, err := h.flashRepo.CardOwner(r.Context(), cardID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Cartão não encontrado.", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao avaliar o cartão.", r))
		return
	}
	if owner != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Acesso negado.", r))
		return
	}

	card, err := h.flashRepo.RateCard(r.Context(), cardID, req.Rating)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao avaliar o cartão.", r))
		return
	}

	writeJSON(w, http.StatusOK, card)
}

func (h *FlashcardHandler) ownedDeck(w http.ResponseWriter, r *http.Request) (*models.FlashcardDeck, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "ID de baralho inválido.", r))
		return nil, false
	}

	deck, err := h.flashRepo.GetDeckByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Baralho não encontrado.", r))
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar o baralho.", r))
		return nil, false
	}

	if deck.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Acesso negado.", r))
		return nil, false
	}
	return deck, true
}
