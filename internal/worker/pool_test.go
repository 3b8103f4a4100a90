package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"vetstudy-backend/internal/generation"
	"vetstudy-backend/internal/llm"
	"vetstudy-backend/internal/models"
)

type memStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]models.GenerationJob
	locks     map[uuid.UUID]bool
	published []models.WSMessage
	requeued  []uuid.UUID
	lockErr   error
}

func newMemStore(jobs ...models.GenerationJob) *memStore {
	s := &memStore{jobs: map[uuid.UUID]models.GenerationJob{}, locks: map[uuid.UUID]bool{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *memStore) Get(_ context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return &j, nil
}

func (s *memStore) Save(_ context.Context, job *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *memStore) Publish(_ context.Context, _ uuid.UUID, msg models.WSMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, msg)
	return nil
}

func (s *memStore) Pop(ctx context.Context, _ time.Duration) (uuid.UUID, error) {
	<-ctx.Done()
	return uuid.Nil, ctx.Err()
}

func (s *memStore) Requeue(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requeued = append(s.requeued, id)
	return nil
}

func (s *memStore) Lock(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockErr != nil {
		return false, s.lockErr
	}
	if s.locks[id] {
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

func (s *memStore) Unlock(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

type stubRunner struct {
	err   error
	panic bool
	calls int
}

func (r *stubRunner) Run(ctx context.Context, req generation.Request) (*generation.Result, error) {
	r.calls++
	if r.panic {
		panic("boom")
	}
	if r.err != nil {
		return nil, r.err
	}
	return &generation.Result{
		Request: req,
		Content: &generation.Content{
			Type:  req.Type,
			Value: []generation.Flashcard{{Front: "Frente", Back: "Verso", Category: "Geral"}},
			Total: 1,
		},
	}, nil
}

type stubDecks struct {
	id    uuid.UUID
	saved int
}

func (d *stubDecks) SaveGenerated(context.Context, uuid.UUID, *generation.Result) (uuid.UUID, error) {
	d.saved++
	return d.id, nil
}

func pendingJob(userID *uuid.UUID) models.GenerationJob {
	return models.GenerationJob{
		ID:     uuid.New(),
		UserID: userID,
		Type:   string(generation.TypeFlashcardSet),
		Params: map[string]interface{}{"tema": "Cardiologia", "quantidade": 1.0},
		Status: models.JobPending,
	}
}

func TestProcess_CompletesAndSavesDeck(t *testing.T) {
	userID := uuid.New()
	job := pendingJob(&userID)
	store := newMemStore(job)
	decks := &stubDecks{id: uuid.New()}
	p := NewPool(store, &stubRunner{}, decks, 1, nil)

	p.process(context.Background(), job.ID)

	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != models.JobCompleted || got.HTTPStatus != http.StatusOK {
		t.Fatalf("status = %s/%d, want completed/200", got.Status, got.HTTPStatus)
	}
	if got.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	var body map[string]interface{}
	if err := json.Unmarshal(got.Result, &body); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if body["success"] != true || body["deck_id"] != decks.id.String() {
		t.Errorf("unexpected body: %v", body)
	}
	if decks.saved != 1 {
		t.Errorf("decks saved = %d, want 1", decks.saved)
	}

	if len(store.published) != 2 || store.published[0].Type != "status_update" || store.published[1].Type != "completed" {
		t.Errorf("unexpected events: %+v", store.published)
	}
	if store.locks[job.ID] {
		t.Error("lock was not released")
	}
}

func TestProcess_AnonymousJobSkipsDeck(t *testing.T) {
	job := pendingJob(nil)
	store := newMemStore(job)
	decks := &stubDecks{id: uuid.New()}
	p := NewPool(store, &stubRunner{}, decks, 1, nil)

	p.process(context.Background(), job.ID)

	if decks.saved != 0 {
		t.Errorf("decks saved = %d, want 0", decks.saved)
	}
}

func TestProcess_Failures(t *testing.T) {
	tests := []struct {
		name       string
		runner     *stubRunner
		wantStatus int
		wantKind   string
	}{
		{"provider error", &stubRunner{err: &llm.ProviderError{Status: 503, Body: "indisponível"}}, http.StatusInternalServerError, "provider_error"},
		{"empty content", &stubRunner{err: &generation.NoValidContentError{Dropped: 3}}, http.StatusInternalServerError, "no_valid_content"},
		{"panic", &stubRunner{panic: true}, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := pendingJob(nil)
			store := newMemStore(job)
			p := NewPool(store, tt.runner, nil, 1, nil)

			p.process(context.Background(), job.ID)

			got, _ := store.Get(context.Background(), job.ID)
			if got.Status != models.JobFailed || got.HTTPStatus != tt.wantStatus {
				t.Fatalf("status = %s/%d, want failed/%d", got.Status, got.HTTPStatus, tt.wantStatus)
			}
			var env generation.ErrorEnvelope
			if err := json.Unmarshal(got.Result, &env); err != nil {
				t.Fatalf("result is not JSON: %v", err)
			}
			if env.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", env.Kind, tt.wantKind)
			}
			last := store.published[len(store.published)-1]
			if last.Type != "error" {
				t.Errorf("last event = %q, want error", last.Type)
			}
		})
	}
}

func TestProcess_InvalidStoredParams(t *testing.T) {
	job := pendingJob(nil)
	job.Params = map[string]interface{}{}
	store := newMemStore(job)
	runner := &stubRunner{}
	p := NewPool(store, runner, nil, 1, nil)

	p.process(context.Background(), job.ID)

	got, _ := store.Get(context.Background(), job.ID)
	if got.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("http status = %d, want 422", got.HTTPStatus)
	}
	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
}

func TestProcess_SkipsLockedAndFinishedJobs(t *testing.T) {
	locked := pendingJob(nil)
	done := pendingJob(nil)
	done.Status = models.JobCompleted
	store := newMemStore(locked, done)
	store.locks[locked.ID] = true
	runner := &stubRunner{}
	p := NewPool(store, runner, nil, 1, nil)

	p.process(context.Background(), locked.ID)
	p.process(context.Background(), done.ID)

	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
}

func TestProcess_RequeuesWhenLockFails(t *testing.T) {
	job := pendingJob(nil)
	store := newMemStore(job)
	store.lockErr = errors.New("redis: connection refused")
	runner := &stubRunner{}
	p := NewPool(store, runner, nil, 1, nil)

	p.process(context.Background(), job.ID)

	if runner.calls != 0 {
		t.Errorf("runner called %d times, want 0", runner.calls)
	}
	if len(store.requeued) != 1 || store.requeued[0] != job.ID {
		t.Errorf("requeued = %v", store.requeued)
	}
	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != models.JobPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestProcess_RequeuesOnShutdown(t *testing.T) {
	job := pendingJob(nil)
	store := newMemStore(job)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPool(store, &stubRunner{err: context.Canceled}, nil, 1, nil)

	p.process(ctx, job.ID)

	got, _ := store.Get(context.Background(), job.ID)
	if got.Status != models.JobPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
	if len(store.requeued) != 1 || store.requeued[0] != job.ID {
		t.Errorf("requeued = %v", store.requeued)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPool(newMemStore(), &stubRunner{}, nil, 3, nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}
