package pke

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"hash"
)

func newSHA256() hash.Hash { return sha256.New() }

// generateRandom fills and returns n cryptographically random bytes.
func generateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return b, nil
}

func generateSalt() ([32]byte, error) {
	b, err := generateRandom(32)
	var out [32]byte
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func generateNonce() ([12]byte, error) {
	b, err := generateRandom(12)
	var out [12]byte
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// aesGCMEncrypt encrypts plaintext with AES-256-GCM, returning ciphertext
// with the 16-byte authentication tag appended (stdlib cipher.AEAD.Seal's
// own convention). AES-GCM is used directly from crypto/aes+crypto/cipher
// rather than a third-party AEAD package: the stdlib implementation is
// complete and constant-time, and no example in the dependency corpus
// reaches for an external AEAD library.
func aesGCMEncrypt(key [32]byte, nonce [12]byte, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return gcm.Seal(nil, nonce[:], plaintext, nil), nil
}

// aesGCMDecrypt decrypts ciphertext (plaintext + 16-byte tag) with
// AES-256-GCM.
func aesGCMDecrypt(key [32]byte, nonce [12]byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key: %v", ErrDecryption, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	plaintext, err := gcm.Open(nil, nonce[:], ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", ErrDecryption)
	}
	return plaintext, nil
}
