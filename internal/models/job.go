package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenerationJob is an asynchronous generation request. It lives in Redis
// only; Result holds the final envelope exactly as the synchronous endpoint
// would have answered, with HTTPStatus alongside it.
type GenerationJob struct {
	ID          uuid.UUID              `json:"id"`
	UserID      *uuid.UUID             `json:"user_id,omitempty"`
	Type        string                 `json:"type"`
	Params      map[string]interface{} `json:"params"`
	Status      string                 `json:"status"` // "pending" | "processing" | "completed" | "failed"
	HTTPStatus  int                    `json:"http_status,omitempty"`
	Result      json.RawMessage        `json:"result,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID    uuid.UUID `json:"job_id"`
	Step     int       `json:"step"`
	StepName string    `json:"step_name"`
}

type CompletedEvent struct {
	JobID   uuid.UUID `json:"job_id"`
	Type    string    `json:"type"`
	Total   int       `json:"total"`
	Dropped int       `json:"dropped"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
