package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHub_BroadcastReachesSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop())
	ch := h.subscribe("run-1")
	defer h.unsubscribe("run-1", ch)

	h.Broadcast(Event{Type: EventStageStarted, RunID: "run-1", Step: 1, Stage: "decomposition"})
	h.Broadcast(Event{Type: EventStageStarted, RunID: "run-2", Step: 1, Stage: "decomposition"})

	select {
	case ev := <-ch:
		require.Equal(t, "run-1", ev.RunID)
		require.Equal(t, EventStageStarted, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	select {
	case ev := <-ch:
		t.Fatalf("received event for another run: %+v", ev)
	default:
	}
}

func TestHub_WebsocketStreamEndsOnTerminalEvent(t *testing.T) {
	s := testServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?run_id=run-9"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	require.Eventually(t, func() bool {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		return len(s.hub.subs["run-9"]) == 1
	}, time.Second, 5*time.Millisecond)

	s.hub.Broadcast(Event{Type: EventStageCompleted, RunID: "run-9", Step: 4, Stage: "application"})
	s.hub.Broadcast(Event{Type: EventRunCompleted, RunID: "run-9"})

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, EventStageCompleted, ev.Type)

	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, EventRunCompleted, ev.Type)

	// Server closes after the terminal event.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.Error(t, conn.ReadJSON(&ev))
}
