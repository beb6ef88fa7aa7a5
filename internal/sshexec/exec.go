// Package sshexec runs single commands over an established SSH transport.
package sshexec

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Run executes one command on the client and returns its combined stdout
// and stderr, re-validated as UTF-8 (invalid sequences are dropped).
//
// A non-zero remote exit status is not an error: the command ran, and its
// diagnostic text is already part of the combined output. Only transport
// failures (session setup, connection loss, missing exit status) are
// reported as errors.
func Run(client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer session.Close()

	out, err := session.CombinedOutput(command)
	output := strings.ToValidUTF8(string(out), "")
	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return output, nil
		}
		return output, fmt.Errorf("remote execution: %w", err)
	}
	return output, nil
}
