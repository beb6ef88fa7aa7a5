package sshconn

import (
	"errors"
	"fmt"
)

// Sentinel errors for the authentication failure taxonomy. Callers use
// errors.Is to classify; the wrapped messages carry the remote detail.
var (
	ErrAuthenticationFailed = errors.New("ssh authentication failed")
	ErrPassphraseRequired   = errors.New("ssh key is encrypted with a passphrase; passphrase-protected keys are not supported")
	ErrUnrecognizedFormat   = errors.New("ssh key format is not recognized, expected OpenSSH format")
)

// MissingCredentialError reports a server record whose configured auth mode
// has no usable credential behind it.
type MissingCredentialError struct {
	Reason string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s", e.Reason)
}
