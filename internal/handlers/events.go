package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
)

// TerminalEvents streams a session's broadcast topic over a WebSocket.
// Subscribers receive the same {output} / {error} events the synchronous
// sendInput reply carries, so passive observers of a session stay in sync
// with the active caller. Access is gated by operator authentication; the
// session identifier itself is unguessable and carries no further
// authorization.
// GET /api/v1/terminal/sessions/{sessionId}/events
func TerminalEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Session ID required")
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("Failed to accept events websocket: %v", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead pumps control frames and cancels the context when the
	// client goes away.
	ctx := conn.CloseRead(r.Context())

	events, cancel := Gate.Broker().Subscribe(sessionID)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				return
			}
		}
	}
}
