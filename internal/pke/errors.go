// Package pke implements the wallet-style public-key encryption container
// ("MMPKE01"): X25519 ECDH key exchange, HKDF-SHA256 key derivation,
// AES-256-GCM authenticated encryption, Argon2id passphrase key
// derivation, and BLAKE3/Base58Check addressing.
package pke

import "errors"

var (
	ErrInvalidMagic         = errors.New("invalid magic bytes - not an encrypted file")
	ErrUnsupportedVersion   = errors.New("unsupported format version")
	ErrHeaderParse          = errors.New("header parsing failed")
	ErrKeyDerivation        = errors.New("key derivation failed")
	ErrEncryption           = errors.New("encryption failed")
	ErrDecryption           = errors.New("decryption failed")
	ErrNoMatchingRecipient  = errors.New("no matching recipient found")
	ErrInvalidKeyfile       = errors.New("invalid keyfile")
	ErrPassphraseTooShort   = errors.New("passphrase too short")
	ErrInvalidAddress       = errors.New("invalid address")
)
