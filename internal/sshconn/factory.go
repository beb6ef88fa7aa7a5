// Package sshconn builds authenticated SSH transports to managed servers.
//
// A Factory opens one transport per call and normalizes every
// authentication failure into a typed error, so no raw ssh library error
// crosses into the gateway's response contract. Transports are not pooled:
// the caller owns the returned client and closes it after one use.
package sshconn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/termgate/termgate/internal/database"
	"golang.org/x/crypto/ssh"
)

const (
	// DefaultConnectTimeout bounds dialing and the SSH handshake.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultIdleTimeout bounds each post-connect read and write, so a hung
	// remote cannot block a gateway call indefinitely.
	DefaultIdleTimeout = 10 * time.Second
)

// KeyLookup resolves a stored key referenced by a server record.
type KeyLookup interface {
	GetKey(id uint) (*database.SSHKey, error)
}

// Factory opens authenticated SSH transports from server records.
type Factory struct {
	Keys           KeyLookup
	ConnectTimeout time.Duration
	IdleTimeout    time.Duration
}

// NewFactory creates a Factory with the default timeouts.
func NewFactory(keys KeyLookup) *Factory {
	return &Factory{
		Keys:           keys,
		ConnectTimeout: DefaultConnectTimeout,
		IdleTimeout:    DefaultIdleTimeout,
	}
}

// Open dials host:port and authenticates according to the server's auth
// mode. On success the returned client is ready for command execution; the
// caller must close it.
func (f *Factory) Open(ctx context.Context, server *database.Server) (*ssh.Client, error) {
	authMethod, err := f.authMethod(server)
	if err != nil {
		return nil, err
	}

	port := server.Port
	if port <= 0 {
		port = 22
	}
	addr := net.JoinHostPort(server.IPAddress, strconv.Itoa(port))

	cfg := &ssh.ClientConfig{
		User:            server.Username,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         f.ConnectTimeout,
	}

	dialer := net.Dialer{Timeout: f.ConnectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	conn := netConn
	if f.IdleTimeout > 0 {
		conn = &idleConn{Conn: netConn, timeout: f.IdleTimeout}
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		netConn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
		}
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

func (f *Factory) authMethod(server *database.Server) (ssh.AuthMethod, error) {
	switch server.AuthType {
	case database.AuthTypePassword:
		if server.Password == "" {
			return nil, &MissingCredentialError{Reason: "server password is not configured"}
		}
		return ssh.Password(server.Password), nil

	case database.AuthTypePrivateKey:
		if server.SSHKeyID == nil {
			return nil, &MissingCredentialError{Reason: "server SSH key is not configured"}
		}
		key, err := f.Keys.GetKey(*server.SSHKeyID)
		if err != nil {
			return nil, &MissingCredentialError{Reason: "SSH key not found"}
		}
		signer, err := parseStoredPrivateKey(key.PrivateKey)
		if err != nil {
			return nil, err
		}
		return ssh.PublicKeys(signer), nil

	default:
		return nil, &MissingCredentialError{Reason: fmt.Sprintf("unknown auth type %q", server.AuthType)}
	}
}

// parseStoredPrivateKey parses private key material from the credential
// store. Stored keys are single-line-safe text: literal `\n` escapes are
// unescaped to real newlines before parsing.
func parseStoredPrivateKey(material string) (ssh.Signer, error) {
	pemData := strings.ReplaceAll(material, `\n`, "\n")
	signer, err := ssh.ParsePrivateKey([]byte(pemData))
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if errors.As(err, &missing) {
			return nil, ErrPassphraseRequired
		}
		return nil, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
	}
	return signer, nil
}

// idleConn applies a rolling deadline to every read and write on the
// underlying connection.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
