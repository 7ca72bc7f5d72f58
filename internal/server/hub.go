package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Event is one stage-transition notification for a run.
type Event struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	Step  int    `json:"step,omitempty"`
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	EventStageStarted   = "stage_started"
	EventStageCompleted = "stage_completed"
	EventRunCompleted   = "run_completed"
	EventRunFailed      = "run_failed"
)

// Hub fans stage events out to websocket subscribers per run.
type Hub struct {
	log *zap.Logger

	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{log: log, subs: make(map[string]map[chan Event]struct{})}
}

func (h *Hub) subscribe(runID string) chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[runID] == nil {
		h.subs[runID] = make(map[chan Event]struct{})
	}
	h.subs[runID][ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(runID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[runID]; ok {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, runID)
		}
	}
}

// Broadcast never blocks the pipeline: a subscriber that cannot keep up
// drops events.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[ev.RunID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// runObserver adapts the hub to the pipeline's Observer interface for one
// run.
type runObserver struct {
	hub   *Hub
	runID string
}

func (r runObserver) StageStarted(step int, name string) {
	r.hub.Broadcast(Event{Type: EventStageStarted, RunID: r.runID, Step: step, Stage: name})
}

func (r runObserver) StageCompleted(step int, name string) {
	r.hub.Broadcast(Event{Type: EventStageCompleted, RunID: r.runID, Step: step, Stage: name})
}

// HandleWS streams a run's events over a websocket until the client leaves
// or the run reaches a terminal event.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		http.Error(w, "run_id is required", http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := h.subscribe(runID)
	defer h.unsubscribe(runID, ch)

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Reader only services control frames and detects the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev := <-ch:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug("ws write failed", zap.String("run_id", runID), zap.Error(err))
				return
			}
			if ev.Type == EventRunCompleted || ev.Type == EventRunFailed {
				return
			}
		}
	}
}
