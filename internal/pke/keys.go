package pke

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// PrivateKey is a 32-byte X25519 scalar.
type PrivateKey [32]byte

// PublicKey is a 32-byte X25519 point.
type PublicKey [32]byte

// Keypair is an X25519 private/public pair, wallet-style: the public key
// derives a shareable Address, the private key stays on disk (encrypted).
type Keypair struct {
	Private PrivateKey
	Public  PublicKey
}

// GenerateKeypair creates a new random X25519 keypair.
func GenerateKeypair() (*Keypair, error) {
	var priv PrivateKey
	if _, err := rand.Read(priv[:]); err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	var kp Keypair
	kp.Private = priv
	copy(kp.Public[:], pub)
	return &kp, nil
}

// PublicFromPrivate derives the public key for an existing private key.
func PublicFromPrivate(priv PrivateKey) (PublicKey, error) {
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return PublicKey{}, fmt.Errorf("derive public key: %w", err)
	}
	var out PublicKey
	copy(out[:], pub)
	return out, nil
}
