package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"vetstudy-backend/internal/models"
)

type ChatHistoryRepo struct {
	pool *pgxpool.Pool
}

func NewChatHistoryRepo(pool *pgxpool.Pool) *ChatHistoryRepo {
	return &ChatHistoryRepo{pool: pool}
}

func (r *ChatHistoryRepo) Create(ctx context.Context, h *models.ChatHistory) error {
	h.ID = uuid.New()
	if h.Messages == nil {
		h.Messages = []models.ChatMessage{}
	}
	messages, err := json.Marshal(h.Messages)
	if err != nil {
		return fmt.Errorf("encode chat messages: %w", err)
	}

	query := `INSERT INTO chat_histories (id, user_id, title, messages)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, h.ID, h.UserID, h.Title, messages).Scan(&h.CreatedAt, &h.UpdatedAt)
}

func (r *ChatHistoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatHistory, error) {
	h := &models.ChatHistory{}
	var messages []byte
	query := `SELECT id, user_id, title, messages, created_at, updated_at
		FROM chat_histories WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&h.ID, &h.UserID, &h.Title, &messages, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(messages, &h.Messages); err != nil {
		return nil, fmt.Errorf("decode chat messages: %w", err)
	}
	return h, nil
}

func (r *ChatHistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatHistory, error) {
	query := `SELECT id, user_id, title, messages, created_at, updated_at
		FROM chat_histories WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	histories := []*models.ChatHistory{}
	for rows.Next() {
		h := &models.ChatHistory{}
		var messages []byte
		if err := rows.Scan(&h.ID, &h.UserID, &h.Title, &messages, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(messages, &h.Messages); err != nil {
			return nil, fmt.Errorf("decode chat messages: %w", err)
		}
		histories = append(histories, h)
	}
	return histories, rows.Err()
}

// Replace overwrites title and messages.
func (r *ChatHistoryRepo) Replace(ctx context.Context, h *models.ChatHistory) error {
	if h.Messages == nil {
		h.Messages = []models.ChatMessage{}
	}
	messages, err := json.Marshal(h.Messages)
	if err != nil {
		return fmt.Errorf("encode chat messages: %w", err)
	}

	query := `UPDATE chat_histories SET title = $1, messages = $2, updated_at = NOW()
		WHERE id = $3 RETURNING updated_at`

	return r.pool.QueryRow(ctx, query, h.Title, messages, h.ID).Scan(&h.UpdatedAt)
}

func (r *ChatHistoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chat_histories WHERE id = $1", id)
	return err
}
