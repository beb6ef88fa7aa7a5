package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/termgate/termgate/internal/gateway"
)

func startEventsServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/api/v1/terminal/sessions/{sessionId}/events", TerminalEvents)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func TestTerminalEventsStreamsBroadcast(t *testing.T) {
	setupTerminalTest(t)
	ts := startEventsServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) +
		"/api/v1/terminal/sessions/sess-1/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	// Give the handler a moment to subscribe before publishing.
	time.Sleep(100 * time.Millisecond)
	Gate.Broker().Publish("sess-1", gateway.Event{Output: "hello"})

	msgType, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != websocket.MessageText {
		t.Errorf("expected text message, got %v", msgType)
	}

	var ev gateway.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Output != "hello" {
		t.Errorf("expected output hello, got %q", ev.Output)
	}
}

func TestTerminalEventsErrorPayload(t *testing.T) {
	setupTerminalTest(t)
	ts := startEventsServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http://", "ws://", 1) +
		"/api/v1/terminal/sessions/sess-2/events"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	time.Sleep(100 * time.Millisecond)
	Gate.Broker().Publish("sess-2", gateway.Event{Error: "Input failed: connection refused"})

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	// The error field is present only on error events.
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["error"] != "Input failed: connection refused" {
		t.Errorf("unexpected error payload %v", raw["error"])
	}
}
