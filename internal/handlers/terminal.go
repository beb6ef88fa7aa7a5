package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/termgate/termgate/internal/audit"
	"github.com/termgate/termgate/internal/gateway"
	"github.com/termgate/termgate/internal/logutil"
	"github.com/termgate/termgate/internal/middleware"
)

// Gate and Auditor are set from main.go during init.
var (
	Gate    *gateway.Gateway
	Auditor *audit.Auditor
)

func actorName(r *http.Request) string {
	if user := middleware.GetUser(r); user != nil {
		return user.Username
	}
	return ""
}

// ConnectTerminal registers a terminal session for a server.
// POST /api/v1/terminal/connect {server_id}
func ConnectTerminal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ServerID uint `json:"server_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ServerID == 0 {
		failure(w, http.StatusBadRequest, "server_id is required")
		return
	}

	res, err := Gate.Connect(body.ServerID)
	if err != nil {
		if errors.Is(err, gateway.ErrServerNotFound) {
			failure(w, http.StatusNotFound, "Server not found")
			return
		}
		failure(w, http.StatusInternalServerError, "Connection failed: "+err.Error())
		return
	}

	Auditor.Record(audit.Entry{
		SessionID: res.SessionID,
		ServerID:  body.ServerID,
		EventType: audit.EventSessionConnected,
		Actor:     actorName(r),
		SourceIP:  r.RemoteAddr,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"session_id":     res.SessionID,
		"message":        "Connected successfully",
		"initial_output": res.InitialOutput,
	})
}

// SendTerminalInput executes one command on the session's server.
// POST /api/v1/terminal/input {session_id, input}
func SendTerminalInput(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
		Input     string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SessionID == "" || body.Input == "" {
		failure(w, http.StatusBadRequest, "session_id and input are required")
		return
	}

	sess, ok := Gate.Resolve(body.SessionID)
	output, err := Gate.SendInput(r.Context(), body.SessionID, body.Input)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrSessionNotFound):
			failure(w, http.StatusNotFound, "Session expired or not found")
		case errors.Is(err, gateway.ErrServerNotFound):
			failure(w, http.StatusNotFound, "Server not found")
		default:
			if ok {
				Auditor.Record(audit.Entry{
					SessionID: body.SessionID,
					ServerID:  sess.ServerID,
					EventType: audit.EventCommandFailed,
					Actor:     actorName(r),
					SourceIP:  r.RemoteAddr,
					Details:   err.Error(),
				})
			}
			failure(w, http.StatusInternalServerError, "Input failed: "+err.Error())
		}
		return
	}

	Auditor.Record(audit.Entry{
		SessionID: body.SessionID,
		ServerID:  sess.ServerID,
		EventType: audit.EventCommandExecuted,
		Actor:     actorName(r),
		SourceIP:  r.RemoteAddr,
		Details:   logutil.SanitizeForLog(body.Input),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"output":  output,
	})
}

// DisconnectTerminal removes a terminal session. Idempotent: disconnecting
// an unknown session still reports success.
// POST /api/v1/terminal/disconnect {session_id}
func DisconnectTerminal(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SessionID == "" {
		failure(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if sess, ok := Gate.Resolve(body.SessionID); ok {
		Auditor.Record(audit.Entry{
			SessionID: body.SessionID,
			ServerID:  sess.ServerID,
			EventType: audit.EventSessionDisconnected,
			Actor:     actorName(r),
			SourceIP:  r.RemoteAddr,
		})
	}
	Gate.Disconnect(body.SessionID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Disconnected successfully",
	})
}
