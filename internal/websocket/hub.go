package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"vetstudy-backend/internal/logger"
	"vetstudy-backend/internal/models"
	"vetstudy-backend/internal/worker"
)

const (
	writeWait     = 10 * time.Second
	subscribeWait = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type jobReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)
}

// subscriber returns a job's event stream once the subscription is live.
// The stream ends when ctx is cancelled.
type subscriber interface {
	Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan []byte, error)
}

type redisSubscriber struct {
	client *redis.Client
}

func (s redisSubscriber) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan []byte, error) {
	pubsub := s.client.Subscribe(ctx, worker.JobKey(jobID))

	confirmCtx, cancel := context.WithTimeout(ctx, subscribeWait)
	defer cancel()
	if _, err := pubsub.Receive(confirmCtx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Hub fans generation job events out to websocket clients. Each job with at
// least one watcher holds a single Redis subscription.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	cancelFuncs map[uuid.UUID]context.CancelFunc
	subs        subscriber
	jobs        jobReader
	log         *logger.Logger
}

func NewHub(redisClient *redis.Client, jobs jobReader, log *logger.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		subs:        redisSubscriber{client: redisClient},
		jobs:        jobs,
		log:         log,
	}
}

// HandleJobStream upgrades GET /api/ws/generation-jobs/{id}. A job that has
// already finished gets its final event right away.
func (h *Hub) HandleJobStream(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}
	job, err := h.jobs.Get(r.Context(), jobID)
	if errors.Is(err, worker.ErrJobNotFound) {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	if msg, done := finalEvent(job); done {
		h.write(conn, msg)
		conn.Close()
		return
	}

	if err := h.registerConnection(jobID, conn); err != nil {
		h.log.Warn("job subscription failed", "job_id", jobID.String(), "error", err.Error())
		conn.Close()
		return
	}

	go func() {
		defer h.unregisterConnection(jobID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// The job may have finished between the first read and the subscription.
	job, err = h.jobs.Get(r.Context(), jobID)
	if err != nil {
		h.log.Warn("failed to re-read generation job", "job_id", jobID.String(), "error", err.Error())
		return
	}
	if msg, done := finalEvent(job); done {
		h.finish(conn, msg)
	}
}

// finalEvent rebuilds the terminal event of a finished job.
func finalEvent(job *models.GenerationJob) (models.WSMessage, bool) {
	body := gjson.ParseBytes(job.Result)
	switch job.Status {
	case models.JobCompleted:
		return models.WSMessage{Type: "completed", Payload: models.CompletedEvent{
			JobID:   job.ID,
			Type:    job.Type,
			Total:   int(body.Get("total").Int()),
			Dropped: int(body.Get("dropped").Int()),
		}}, true
	case models.JobFailed:
		return models.WSMessage{Type: "error", Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    body.Get("kind").String(),
			ErrorMessage: body.Get("error").String(),
		}}, true
	}
	return models.WSMessage{}, false
}

// registerConnection adds a watcher. The first watcher of a job opens its
// subscription and returns only once it is live.
func (h *Hub) registerConnection(jobID uuid.UUID, conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.connections[jobID]) == 0 {
		ctx, cancel := context.WithCancel(context.Background())
		events, err := h.subs.Subscribe(ctx, jobID)
		if err != nil {
			cancel()
			return err
		}
		h.cancelFuncs[jobID] = cancel
		go h.listen(ctx, jobID, events)
	}
	h.connections[jobID] = append(h.connections[jobID], conn)

	h.log.Debug("websocket connected", "job_id", jobID.String(), "watchers", len(h.connections[jobID]))
	return nil
}

func (h *Hub) unregisterConnection(jobID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[jobID]
	for i, c := range conns {
		if c == conn {
			h.connections[jobID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[jobID]) == 0 {
		delete(h.connections, jobID)
		if cancel, ok := h.cancelFuncs[jobID]; ok {
			cancel()
			delete(h.cancelFuncs, jobID)
		}
	}
}

func (h *Hub) listen(ctx context.Context, jobID uuid.UUID, events <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-events:
			if !ok {
				return
			}
			h.broadcast(jobID, data)
			if isTerminal(data) {
				h.closeAll(jobID)
				return
			}
		}
	}
}

func isTerminal(data []byte) bool {
	switch gjson.GetBytes(data, "type").String() {
	case "completed", "error":
		return true
	}
	return false
}

func (h *Hub) broadcast(jobID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[jobID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// closeAll sends a close frame to every watcher; their read loops then
// unregister them.
func (h *Hub) closeAll(jobID uuid.UUID) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished")
	for _, conn := range h.connections[jobID] {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	}
}

// finish sends msg and a close frame to one watcher. The exclusive lock keeps
// it from interleaving with a broadcast to the same connection.
func (h *Hub) finish(conn *websocket.Conn, msg models.WSMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.write(conn, msg)
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished")
	conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
}

func (h *Hub) write(conn *websocket.Conn, msg models.WSMessage) {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug("websocket write failed", "error", err.Error())
	}
}
