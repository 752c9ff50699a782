package pke

import (
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// hkdfInfoKEK is the domain-separation context for the key-encryption-key
// derivation — must match across every implementation that speaks the
// MMPKE01 format.
var hkdfInfoKEK = []byte("matric-memory-pke-kek-v1")

// ecdh performs X25519 Diffie-Hellman, returning the 32-byte raw shared
// secret. Symmetric: ecdh(a.Private, b.Public) == ecdh(b.Private, a.Public).
func ecdh(ourPrivate PrivateKey, theirPublic PublicKey) ([32]byte, error) {
	shared, err := curve25519.X25519(ourPrivate[:], theirPublic[:])
	if err != nil {
		return [32]byte{}, fmt.Errorf("x25519 key exchange: %w", err)
	}
	var out [32]byte
	copy(out[:], shared)
	return out, nil
}

// deriveEncryptionKey expands a shared secret into a 32-byte key via
// HKDF-SHA256, with salt and info providing domain separation.
func deriveEncryptionKey(sharedSecret [32]byte, salt, info []byte) ([32]byte, error) {
	reader := hkdf.New(newSHA256, sharedSecret[:], salt, info)
	var key [32]byte
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return [32]byte{}, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}

// deriveKEK derives the key-encryption-key used to wrap a per-recipient
// DEK, from the sender's side: ephemeralPrivate + recipientPublic, salted
// by the ephemeral public key so it's reconstructible from the header.
func deriveKEK(ephemeralPrivate PrivateKey, recipientPublic, ephemeralPublic PublicKey) ([32]byte, error) {
	shared, err := ecdh(ephemeralPrivate, recipientPublic)
	if err != nil {
		return [32]byte{}, err
	}
	return deriveEncryptionKey(shared, ephemeralPublic[:], hkdfInfoKEK)
}

// deriveKEKForDecrypt derives the same KEK from the recipient's side:
// recipientPrivate + ephemeralPublic (read from the ciphertext header).
func deriveKEKForDecrypt(recipientPrivate PrivateKey, ephemeralPublic PublicKey) ([32]byte, error) {
	shared, err := ecdh(recipientPrivate, ephemeralPublic)
	if err != nil {
		return [32]byte{}, err
	}
	return deriveEncryptionKey(shared, ephemeralPublic[:], hkdfInfoKEK)
}
