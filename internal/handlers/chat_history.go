package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"vetstudy-backend/internal/middleware"
	"vetstudy-backend/internal/models"
)

const maxChatTitle = 255

type chatHistoryStore interface {
	Create(ctx context.Context, h *models.ChatHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatHistory, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatHistory, error)
	Replace(ctx context.Context, h *models.ChatHistory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ChatHistoryHandler struct {
	histories chatHistoryStore
}

func NewChatHistoryHandler(histories chatHistoryStore) *ChatHistoryHandler {
	return &ChatHistoryHandler{histories: histories}
}

func (h *ChatHistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ChatHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Corpo da requisição inválido.", r))
		return
	}

	fields := validateChatHistory(req)
	if req.Messages == nil {
		fields["messages"] = "O campo messages é obrigatório."
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Dados inválidos.", fields, r))
		return
	}

	history := &models.ChatHistory{
		UserID:   middleware.GetUserID(r.Context()),
		Messages: req.Messages,
	}
	if req.Title != nil {
		history.Title = strings.TrimSpace(*req.Title)
	}
	if err := h.histories.Create(r.Context(), history); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao salvar o histórico.", r))
		return
	}

	writeJSON(w, http.StatusCreated, history)
}

// List returns the histories of the user in the path, newest first. Callers
// may only list their own.
func (h *ChatHistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "ID de usuário inválido.", r))
		return
	}
	if userID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Acesso negado.", r))
		return
	}

	histories, err := h.histories.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar os históricos.", r))
		return
	}

	writeJSON(w, http.StatusOK, histories)
}

func (h *ChatHistoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	history, ok := h.owned(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *ChatHistoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	history, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req models.ChatHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Corpo da requisição inválido.", r))
		return
	}
	if fields := validateChatHistory(req); len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorRespWithFields("VALIDATION_ERROR", "Dados inválidos.", fields, r))
		return
	}

	if req.Title != nil {
		history.Title = strings.TrimSpace(*req.Title)
	}
	if req.Messages != nil {
		history.Messages = req.Messages
	}
	if err := h.histories.Replace(r.Context(), history); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao atualizar o histórico.", r))
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *ChatHistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	history, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.histories.Delete(r.Context(), history.ID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao excluir o histórico.", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Histórico deletado com sucesso!"})
}

func (h *ChatHistoryHandler) owned(w http.ResponseWriter, r *http.Request) (*models.ChatHistory, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "ID de histórico inválido.", r))
		return nil, false
	}

	history, err := h.histories.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Histórico não encontrado.", r))
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Falha ao carregar o histórico.", r))
		return nil, false
	}

	if history.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Acesso negado.", r))
		return nil, false
	}
	return history, true
}

func validateChatHistory(req models.ChatHistoryRequest) map[string]string {
	fields := map[string]string{}
	if req.Title != nil && utf8.RuneCountInString(strings.TrimSpace(*req.Title)) > maxChatTitle {
		fields["title"] = "O título não pode ter mais de 255 caracteres."
	}
	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" && m.Role != "system" {
			fields["messages"] = "Cada mensagem deve ter role user, assistant ou system."
			break
		}
	}
	return fields
}
