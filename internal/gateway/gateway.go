// Package gateway turns browser keystrokes into authenticated command
// executions on remote servers.
//
// A "session" here is bookkeeping only: Connect stores a mapping from an
// unguessable identifier to a target server, and every SendInput opens a
// fresh authenticated transport, runs one command, and closes it. No shell
// process or transport survives between calls, so working directory,
// exported variables, and background jobs do not carry over. The session
// provides identity and authorization continuity, not process continuity.
// Anyone replacing this with a persistent shell must add a per-session
// execution lock; the stateless model needs none because concurrent calls
// share no remote state.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/termgate/termgate/internal/database"
	"github.com/termgate/termgate/internal/sshconn"
	"github.com/termgate/termgate/internal/sshexec"
)

// InitialPrompt is the canned prompt returned by Connect. It is a client
// rendering convention, not output from the remote host.
const InitialPrompt = "$ "

var (
	// ErrSessionNotFound covers both unknown and expired sessions; the two
	// are deliberately indistinguishable to callers.
	ErrSessionNotFound = errors.New("session expired or not found")

	// ErrServerNotFound reports a connect (or input) against a server
	// record that does not exist.
	ErrServerNotFound = errors.New("server not found")
)

// CredentialStore is the external record store the gateway reads servers
// and keys from.
type CredentialStore interface {
	GetServer(id uint) (*database.Server, error)
	GetKey(id uint) (*database.SSHKey, error)
}

// Gateway implements the terminal session operations.
type Gateway struct {
	store    CredentialStore
	registry Registry
	broker   *Broker
	factory  *sshconn.Factory
	ttl      time.Duration
}

// New creates a Gateway. A zero ttl falls back to SessionTTL.
func New(store CredentialStore, registry Registry, broker *Broker, factory *sshconn.Factory, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &Gateway{
		store:    store,
		registry: registry,
		broker:   broker,
		factory:  factory,
		ttl:      ttl,
	}
}

// ConnectResult is the successful outcome of Connect.
type ConnectResult struct {
	SessionID     string
	InitialOutput string
}

// Connect validates the server and registers a fresh session for it. No
// remote transport is opened here; connecting is purely bookkeeping.
func (g *Gateway) Connect(serverID uint) (ConnectResult, error) {
	if _, err := g.store.GetServer(serverID); err != nil {
		return ConnectResult{}, ErrServerNotFound
	}

	sessionID := uuid.NewString()
	g.registry.Put(sessionID, Session{
		ServerID:  serverID,
		CreatedAt: time.Now(),
	}, g.ttl)

	return ConnectResult{
		SessionID:     sessionID,
		InitialOutput: InitialPrompt,
	}, nil
}

// SendInput resolves the session, authenticates a brand-new transport to
// its server, executes the trimmed input as a single command, and closes
// the transport. The captured output is returned to the caller and also
// published on the session's broadcast topic; failures are returned and
// published as error events. The synchronous return value is the primary
// channel; broadcast delivery is best-effort and never blocks it.
func (g *Gateway) SendInput(ctx context.Context, sessionID, input string) (string, error) {
	sess, ok := g.registry.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}

	server, err := g.store.GetServer(sess.ServerID)
	if err != nil {
		return "", ErrServerNotFound
	}

	command := strings.TrimSpace(input)

	client, err := g.factory.Open(ctx, server)
	if err != nil {
		g.broker.Publish(sessionID, Event{Error: "Input failed: " + err.Error()})
		return "", err
	}
	defer client.Close()

	output, err := sshexec.Run(client, command)
	if err != nil {
		g.broker.Publish(sessionID, Event{Error: "Input failed: " + err.Error()})
		return "", err
	}

	if output != "" {
		g.broker.Publish(sessionID, Event{Output: output})
	}
	return output, nil
}

// Disconnect removes the session mapping. It is idempotent: disconnecting
// an unknown or already-expired session succeeds.
func (g *Gateway) Disconnect(sessionID string) {
	g.registry.Delete(sessionID)
}

// Resolve returns the session for an identifier, when it exists and has
// not expired.
func (g *Gateway) Resolve(sessionID string) (Session, bool) {
	return g.registry.Get(sessionID)
}

// Broker exposes the fan-out broker for topic subscription endpoints.
func (g *Gateway) Broker() *Broker {
	return g.broker
}
