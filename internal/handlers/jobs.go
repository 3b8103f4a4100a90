package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/middleware"
	"vetstudy-backend/internal/models"
	"vetstudy-backend/internal/worker"
)

type jobQueue interface {
	Enqueue(ctx context.Context, job *models.GenerationJob) error
	Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
}

type JobHandler struct {
	jobs jobQueue
	log  *logger.Logger
}

func NewJobHandler(jobs jobQueue, log *logger.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, log: log}
}

// Create validates the parameters up front and queues the generation.
func (h *JobHandler) Create(ct generation.ContentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := decodeParams(r)
		if err == nil {
			_, err = generation.NewRequest(ct, raw)
		}
		if err != nil {
			status, env := generation.ErrorBody(err)
			writeJSON(w, status, env)
			return
		}

		job := &models.GenerationJob{
			ID:        uuid.New(),
			Type:      string(ct),
			Params:    raw,
			Status:    models.JobPending,
			CreatedAt: time.Now(),
		}
		if userID := middleware.GetUserID(r.Context()); userID != uuid.Nil {
			job.UserID = &userID
		}

		if err := h.jobs.Enqueue(r.Context(), job); err != nil {
			h.log.Error("failed to enqueue generation job", "type", string(ct), "error", err.Error())
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Não foi possível agendar a geração.", r))
			return
		}

		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"job_id": job.ID,
			"status": job.Status,
		})
	}
}

// Show returns a job. Jobs owned by a user are hidden from everyone else.
func (h *JobHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("INVALID_ID", "Identificador inválido.", r))
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err == nil && job.UserID != nil && *job.UserID != middleware.GetUserID(r.Context()) {
		err = worker.ErrJobNotFound
	}
	if errors.Is(err, worker.ErrJobNotFound) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Geração não encontrada.", r))
		return
	}
	if err != nil {
		h.log.Error("failed to load generation job", "job_id", id.String(), "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Ocorreu um erro inesperado.", r))
		return
	}

	writeJSON(w, http.StatusOK, job)
}
