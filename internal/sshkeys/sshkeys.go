package sshkeys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// DefaultRSABits is used when an RSA key is requested without a size.
const DefaultRSABits = 2048

// Algorithm is the closed set of supported key algorithms. The concrete
// types are RSA, Ed25519, and ECDSA; anything else fails ParseAlgorithm
// with an InvalidAlgorithmError.
type Algorithm interface {
	keyType() string
}

// RSA selects an RSA key of the given size (2048 or 4096).
type RSA struct {
	Bits int
}

// Ed25519 selects an Ed25519 key. The size is fixed by the algorithm.
type Ed25519 struct{}

// ECDSA selects an ECDSA key on the NIST P-256 curve (secp256r1).
type ECDSA struct{}

func (RSA) keyType() string     { return "ssh-rsa" }
func (Ed25519) keyType() string { return "ssh-ed25519" }
func (ECDSA) keyType() string   { return "ecdsa-sha2-nistp256" }

// InvalidAlgorithmError reports an algorithm name outside the supported set.
type InvalidAlgorithmError struct {
	Name string
}

func (e *InvalidAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported algorithm: %s", e.Name)
}

// ParseAlgorithm maps an algorithm name and optional key size onto the
// Algorithm union. keySize is meaningful only for "rsa" (one of 2048 or
// 4096, defaulting to 2048 when zero); other algorithms ignore it.
func ParseAlgorithm(name string, keySize int) (Algorithm, error) {
	switch strings.ToLower(name) {
	case "rsa":
		bits := keySize
		if bits == 0 {
			bits = DefaultRSABits
		}
		if bits != 2048 && bits != 4096 {
			return nil, fmt.Errorf("rsa key size must be 2048 or 4096, got %d", keySize)
		}
		return RSA{Bits: bits}, nil
	case "ed25519":
		return Ed25519{}, nil
	case "ecdsa":
		return ECDSA{}, nil
	default:
		return nil, &InvalidAlgorithmError{Name: name}
	}
}

// KeyPair holds a generated key pair. PublicKey is a single OpenSSH
// authorized_keys line, PrivateKey an OpenSSH PEM block (encrypted when a
// passphrase was supplied), and Fingerprint the derived SHA256 fingerprint
// of the public key.
type KeyPair struct {
	PublicKey   string
	PrivateKey  string
	Fingerprint string
}

// Generate creates a key pair for the given algorithm. A non-empty
// passphrase encrypts the private key serialization; the public key is
// always unencrypted. The fingerprint is derived from the public key and
// is never caller-supplied.
func Generate(alg Algorithm, passphrase string) (KeyPair, error) {
	var (
		key crypto.PrivateKey
		pub crypto.PublicKey
	)

	switch a := alg.(type) {
	case RSA:
		k, err := rsa.GenerateKey(rand.Reader, a.Bits)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generate rsa key: %w", err)
		}
		key, pub = k, k.Public()
	case Ed25519:
		p, k, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generate ed25519 key: %w", err)
		}
		key, pub = k, p
	case ECDSA:
		k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return KeyPair{}, fmt.Errorf("generate ecdsa key: %w", err)
		}
		key, pub = k, k.Public()
	default:
		return KeyPair{}, &InvalidAlgorithmError{Name: fmt.Sprintf("%T", alg)}
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return KeyPair{}, fmt.Errorf("create ssh public key: %w", err)
	}
	publicKey := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))

	var block *pem.Block
	if passphrase != "" {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(key, "", []byte(passphrase))
	} else {
		block, err = ssh.MarshalPrivateKey(key, "")
	}
	if err != nil {
		return KeyPair{}, fmt.Errorf("marshal private key: %w", err)
	}

	fingerprint, err := Fingerprint(publicKey)
	if err != nil {
		return KeyPair{}, err
	}

	return KeyPair{
		PublicKey:   publicKey,
		PrivateKey:  string(pem.EncodeToMemory(block)),
		Fingerprint: fingerprint,
	}, nil
}

// Fingerprint computes the SHA256 fingerprint of an OpenSSH public-key
// line: the base64 key blob is decoded, hashed with SHA-256, and the digest
// re-encoded as unpadded base64 with a "SHA256:" prefix. The result matches
// ssh-keygen -lf and ssh.FingerprintSHA256.
func Fingerprint(publicKey string) (string, error) {
	fields := strings.SplitN(strings.TrimSpace(publicKey), " ", 3)
	if len(fields) < 2 {
		return "", fmt.Errorf("fingerprint: malformed public key")
	}
	blob, err := base64.StdEncoding.DecodeString(fields[1])
	if err != nil {
		return "", fmt.Errorf("fingerprint: decode key blob: %w", err)
	}
	sum := sha256.Sum256(blob)
	return "SHA256:" + strings.TrimRight(base64.StdEncoding.EncodeToString(sum[:]), "="), nil
}
