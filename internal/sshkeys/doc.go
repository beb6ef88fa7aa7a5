// Package sshkeys generates SSH key pairs for the credential store.
//
// Three algorithms are supported, modeled as a closed union so an
// unsupported name is rejected in exactly one place:
//
//   - RSA with a 2048- or 4096-bit modulus (2048 when unspecified)
//   - Ed25519 (fixed size)
//   - ECDSA on NIST P-256
//
// Serialization is OpenSSH throughout: the public key is a single
// authorized_keys line, the private key an OpenSSH PEM block that is
// encrypted when a passphrase is supplied. The SHA256 fingerprint is
// derived from the public key at generation time and matches the output of
// standard SSH tooling, so stored keys stay verifiable outside the panel.
package sshkeys
