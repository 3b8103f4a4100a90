package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/models"
)

const popTimeout = 5 * time.Second

type jobStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
	Save(ctx context.Context, job *models.GenerationJob) error
	Publish(ctx context.Context, id uuid.UUID, msg models.WSMessage) error
	Pop(ctx context.Context, timeout time.Duration) (uuid.UUID, error)
	Requeue(ctx context.Context, id uuid.UUID) error
	Lock(ctx context.Context, id uuid.UUID) (bool, error)
	Unlock(ctx context.Context, id uuid.UUID) error
}

type runner interface {
	Run(ctx context.Context, req generation.Request) (*generation.Result, error)
}

type deckSaver interface {
	SaveGenerated(ctx context.Context, userID uuid.UUID, res *generation.Result) (uuid.UUID, error)
}

// Pool drains the generation queue with a fixed number of workers.
type Pool struct {
	store       jobStore
	pipeline    runner
	decks       deckSaver
	log         *logger.Logger
	workerCount int
}

func NewPool(store jobStore, pipeline runner, decks deckSaver, workerCount int, log *logger.Logger) *Pool {
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{
		store:       store,
		pipeline:    pipeline,
		decks:       decks,
		log:         log,
		workerCount: workerCount,
	}
}

// Run blocks until ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context) error {
	if p.workerCount <= 0 {
		p.log.Info("generation workers disabled")
		return nil
	}

	var wg conc.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		id := i
		wg.Go(func() { p.worker(ctx, id) })
	}
	p.log.Info("started generation workers", "count", p.workerCount)
	wg.Wait()
	return nil
}

func (p *Pool) worker(ctx context.Context, id int) {
	log := p.log.With("worker", id)
	for {
		if ctx.Err() != nil {
			log.Debug("worker shutting down")
			return
		}

		jobID, err := p.store.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn("failed to pop generation job", "error", err.Error())
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if jobID == uuid.Nil {
			continue
		}
		p.process(ctx, jobID)
	}
}

// process runs one job end to end. A job interrupted by shutdown goes back
// to pending and onto the queue.
func (p *Pool) process(ctx context.Context, jobID uuid.UUID) {
	bg := context.WithoutCancel(ctx)

	locked, err := p.store.Lock(bg, jobID)
	if err != nil {
		// The job is already off the queue; put it back for another try.
		p.log.Warn("failed to lock generation job", "job_id", jobID.String(), "error", err.Error())
		if err := p.store.Requeue(bg, jobID); err != nil {
			p.log.Error("failed to requeue generation job", "job_id", jobID.String(), "error", err.Error())
		}
		return
	}
	if !locked {
		return
	}
	defer p.store.Unlock(bg, jobID)

	job, err := p.store.Get(bg, jobID)
	if err != nil {
		p.log.Warn("dropping generation job", "job_id", jobID.String(), "error", err.Error())
		return
	}
	if job.Status != models.JobPending {
		return
	}

	job.Status = models.JobProcessing
	if err := p.store.Save(bg, job); err != nil {
		p.log.Error("failed to mark job processing", "job_id", jobID.String(), "error", err.Error())
		return
	}
	p.publish(bg, job.ID, "status_update", models.StatusUpdate{JobID: job.ID, Step: 1, StepName: "Gerando conteúdo"})

	res, runErr := p.run(ctx, job)
	if runErr != nil && ctx.Err() != nil {
		job.Status = models.JobPending
		if err := p.store.Save(bg, job); err == nil {
			p.store.Requeue(bg, job.ID)
		}
		p.log.Info("generation job requeued on shutdown", "job_id", job.ID.String())
		return
	}

	if runErr != nil {
		p.fail(bg, job, runErr)
		return
	}
	p.complete(bg, job, res)
}

func (p *Pool) run(ctx context.Context, job *models.GenerationJob) (res *generation.Result, err error) {
	ct, ok := generation.ParseContentType(job.Type)
	if !ok {
		return nil, fmt.Errorf("unknown content type %q", job.Type)
	}
	req, err := generation.NewRequest(ct, job.Params)
	if err != nil {
		return nil, err
	}

	var pc panics.Catcher
	pc.Try(func() { res, err = p.pipeline.Run(ctx, req) })
	if r := pc.Recovered(); r != nil {
		return nil, r.AsError()
	}
	return res, err
}

func (p *Pool) complete(ctx context.Context, job *models.GenerationJob, res *generation.Result) {
	body := generation.SuccessBody(res)
	if res.Type == generation.TypeFlashcardSet && job.UserID != nil && p.decks != nil {
		deckID, err := p.decks.SaveGenerated(ctx, *job.UserID, res)
		if err != nil {
			p.log.Error("failed to save flashcard deck", "job_id", job.ID.String(), "error", err.Error())
		} else {
			body["deck_id"] = deckID
		}
	}

	p.finish(ctx, job, models.JobCompleted, http.StatusOK, body)
	p.publish(ctx, job.ID, "completed", models.CompletedEvent{
		JobID:   job.ID,
		Type:    job.Type,
		Total:   res.Content.Total,
		Dropped: res.Content.Dropped,
	})
	p.log.Info("generation job completed", "job_id", job.ID.String(), "type", job.Type, "total", res.Content.Total)
}

func (p *Pool) fail(ctx context.Context, job *models.GenerationJob, runErr error) {
	status, env := generation.ErrorBody(runErr)
	p.finish(ctx, job, models.JobFailed, status, env)
	p.publish(ctx, job.ID, "error", models.ErrorEvent{
		JobID:        job.ID,
		ErrorCode:    env.Kind,
		ErrorMessage: env.Error,
	})
	p.log.Warn("generation job failed", "job_id", job.ID.String(), "kind", env.Kind, "error", runErr.Error())
}

func (p *Pool) finish(ctx context.Context, job *models.GenerationJob, status string, httpStatus int, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		p.log.Error("failed to encode job result", "job_id", job.ID.String(), "error", err.Error())
		status, httpStatus = models.JobFailed, http.StatusInternalServerError
		data, _ = json.Marshal(generation.ErrorEnvelope{Error: "Erro interno do servidor", Kind: "internal_error"})
	}
	now := time.Now()
	job.Status = status
	job.HTTPStatus = httpStatus
	job.Result = data
	job.CompletedAt = &now
	if err := p.store.Save(ctx, job); err != nil {
		p.log.Error("failed to save job result", "job_id", job.ID.String(), "error", err.Error())
	}
}

func (p *Pool) publish(ctx context.Context, id uuid.UUID, typ string, payload interface{}) {
	if err := p.store.Publish(ctx, id, models.WSMessage{Type: typ, Payload: payload}); err != nil {
		p.log.Warn("failed to publish job update", "job_id", id.String(), "type", typ, "error", err.Error())
	}
}
