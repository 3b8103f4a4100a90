package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/middleware"
)

const maxBodyBytes = 1 << 20

type generator interface {
	Generate(ctx context.Context, ct generation.ContentType, raw map[string]interface{}) (*generation.Result, error)
}

type deckSaver interface {
	SaveGenerated(ctx context.Context, userID uuid.UUID, res *generation.Result) (uuid.UUID, error)
}

type GenerationHandler struct {
	pipeline generator
	decks    deckSaver
	log      *logger.Logger
}

func NewGenerationHandler(pipeline generator, decks deckSaver, log *logger.Logger) *GenerationHandler {
	return &GenerationHandler{pipeline: pipeline, decks: decks, log: log}
}

// Generate returns the handler for one content type.
func (h *GenerationHandler) Generate(ct generation.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := decodeParams(r)
		if err != nil {
			status, env := generation.ErrorBody(err)
			writeJSON(w, status, env)
			return
		}

		res, err := h.pipeline.Generate(r.Context(), ct, raw)
		if err != nil {
			if r.Context().Err() != nil {
				h.log.Info("generation abandoned by client", "type", string(ct))
				return
			}
			status, env := generation.ErrorBody(err)
			h.log.Warn("generation failed", "type", string(ct), "kind", env.Kind, "error", err.Error())
			writeJSON(w, status, env)
			return
		}

		body := generation.SuccessBody(res)
		if ct == generation.TypeFlashcardSet {
			if deckID, ok := h.saveDeck(r.Context(), res); ok {
				body["deck_id"] = deckID
			}
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// saveDeck persists generated flashcards for an authenticated caller. A
// storage failure is logged and does not fail the generation.
func (h *GenerationHandler) saveDeck(ctx context.Context, res *generation.Result) (uuid.UUID, bool) {
	userID := middleware.GetUserID(ctx)
	if h.decks == nil || userID == uuid.Nil || ctx.Err() != nil {
		return uuid.Nil, false
	}

	deckID, err := h.decks.SaveGenerated(ctx, userID, res)
	if err != nil {
		h.log.Error("failed to save flashcard deck", "user_id", userID.String(), "error", err.Error())
		return uuid.Nil, false
	}
	return deckID, true
}

// decodeParams reads a JSON object body, keeping numbers as json.Number. An
// empty body is an empty parameter set.
func decodeParams(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, bodyError("Não foi possível ler o corpo da requisição.")
	}
	raw := map[string]interface{}{}
	if len(bytes.TrimSpace(body)) == 0 {
		return raw, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, bodyError("O corpo da requisição deve ser um objeto JSON.")
		}
		return nil, bodyError("O corpo da requisição não é um JSON válido.")
	}
	return raw, nil
}

func bodyError(msg string) error {
	return &generation.ValidationError{Fields: map[string][]string{"body": {msg}}}
}
