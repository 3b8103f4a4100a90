package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/models"
	"vetstudy-backend/internal/worker"
)

type stubJobs map[uuid.UUID]*models.GenerationJob

func (s stubJobs) Get(_ context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	if j, ok := s[id]; ok {
		return j, nil
	}
	return nil, worker.ErrJobNotFound
}

// sequenceJobs returns its snapshots in order and then repeats the last one.
type sequenceJobs struct {
	mu        sync.Mutex
	snapshots []*models.GenerationJob
	calls     int
	subs      *stubSubscriber

	subscribedBeforeReread bool
}

func (s *sequenceJobs) Get(_ context.Context, _ uuid.UUID) (*models.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls > 0 && s.subs.isSubscribed() {
		s.subscribedBeforeReread = true
	}
	i := s.calls
	if i >= len(s.snapshots) {
		i = len(s.snapshots) - 1
	}
	s.calls++
	return s.snapshots[i], nil
}

type stubSubscriber struct {
	mu         sync.Mutex
	subscribed bool
	events     chan []byte
}

func (s *stubSubscriber) Subscribe(_ context.Context, _ uuid.UUID) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribed = true
	return s.events, nil
}

func (s *stubSubscriber) isSubscribed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribed
}

func newTestServer(jobs stubJobs) *httptest.Server {
	return newHubServer(NewHub(nil, jobs, logger.Nop()))
}

func newHubServer(hub *Hub) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/ws/{id}", hub.HandleJobStream)
	return httptest.NewServer(r)
}

func dial(t *testing.T, srv *httptest.Server, id uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + id.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHandleJobStream_FinishedJobSendsFinalEvent(t *testing.T) {
	id := uuid.New()
	result, _ := json.Marshal(map[string]interface{}{"success": true, "total": 4, "dropped": 1})
	srv := newTestServer(stubJobs{id: {ID: id, Type: "quiz", Status: models.JobCompleted, Result: result}})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + id.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type    string                `json:"type"`
		Payload models.CompletedEvent `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "completed" || msg.Payload.Total != 4 || msg.Payload.Dropped != 1 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestHandleJobStream_Errors(t *testing.T) {
	srv := newTestServer(stubJobs{})
	defer srv.Close()

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad id", "/ws/not-a-uuid", 400},
		{"unknown job", "/ws/" + uuid.New().String(), 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "ws" + strings.TrimPrefix(srv.URL, "http") + tt.path
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err == nil {
				t.Fatal("expected dial to fail")
			}
			if resp == nil || resp.StatusCode != tt.want {
				t.Fatalf("status = %v, want %d", resp, tt.want)
			}
		})
	}
}

func TestHandleJobStream_JobFinishedBeforeSubscription(t *testing.T) {
	id := uuid.New()
	result, _ := json.Marshal(map[string]interface{}{"success": true, "total": 3, "dropped": 0})
	subs := &stubSubscriber{events: make(chan []byte)}
	jobs := &sequenceJobs{
		subs: subs,
		snapshots: []*models.GenerationJob{
			{ID: id, Type: "flashcard_set", Status: models.JobProcessing},
			{ID: id, Type: "flashcard_set", Status: models.JobCompleted, Result: result},
		},
	}
	hub := NewHub(nil, jobs, logger.Nop())
	hub.subs = subs
	srv := newHubServer(hub)
	defer srv.Close()

	conn := dial(t, srv, id)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg struct {
		Type    string                `json:"type"`
		Payload models.CompletedEvent `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "completed" || msg.Payload.Total != 3 {
		t.Errorf("unexpected message: %+v", msg)
	}

	jobs.mu.Lock()
	defer jobs.mu.Unlock()
	if !jobs.subscribedBeforeReread {
		t.Error("job state was re-read before the subscription was live")
	}
}

func TestHandleJobStream_ForwardsEventsUntilTerminal(t *testing.T) {
	id := uuid.New()
	subs := &stubSubscriber{events: make(chan []byte)}
	jobs := &sequenceJobs{
		subs:      subs,
		snapshots: []*models.GenerationJob{{ID: id, Type: "quiz", Status: models.JobPending}},
	}
	hub := NewHub(nil, jobs, logger.Nop())
	hub.subs = subs
	srv := newHubServer(hub)
	defer srv.Close()

	conn := dial(t, srv, id)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	subs.events <- []byte(`{"type":"status_update","payload":{"step":1}}`)
	subs.events <- []byte(`{"type":"completed","payload":{"total":5}}`)

	var types []string
	for i := 0; i < 2; i++ {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		types = append(types, msg.Type)
	}
	if types[0] != "status_update" || types[1] != "completed" {
		t.Errorf("unexpected event order: %v", types)
	}

	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected a normal close after the terminal event, got %v", err)
	}
}

func TestFinalEvent(t *testing.T) {
	failed, _ := json.Marshal(map[string]string{"error": "A IA não retornou nenhum item válido.", "kind": "no_valid_content"})
	msg, done := finalEvent(&models.GenerationJob{ID: uuid.New(), Status: models.JobFailed, Result: failed})
	if !done || msg.Type != "error" {
		t.Fatalf("finalEvent = %+v, %v", msg, done)
	}
	if ev := msg.Payload.(models.ErrorEvent); ev.ErrorCode != "no_valid_content" {
		t.Errorf("error code = %q", ev.ErrorCode)
	}

	if _, done := finalEvent(&models.GenerationJob{Status: models.JobProcessing}); done {
		t.Error("processing job reported as finished")
	}
}
