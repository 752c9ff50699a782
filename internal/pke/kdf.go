package pke

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

// MinPassphraseLength is the minimum accepted passphrase length.
const MinPassphraseLength = 12

// KDFParams are the Argon2id tuning parameters, persisted alongside each
// passphrase-encrypted private key so decryption can reproduce them.
type KDFParams struct {
	MemoryKiB   uint32 `json:"memory_kib"`
	Iterations  uint32 `json:"iterations"`
	Parallelism uint8  `json:"parallelism"`
}

// DefaultKDFParams balances interactive-use latency against brute-force
// resistance (64 MiB, 3 iterations, 4 lanes).
func DefaultKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 65536, Iterations: 3, Parallelism: 4}
}

// LowMemoryKDFParams suits resource-constrained environments.
func LowMemoryKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 32768, Iterations: 4, Parallelism: 4}
}

// HighSecurityKDFParams suits long-term archival keys.
func HighSecurityKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 131072, Iterations: 4, Parallelism: 4}
}

// ValidatePassphrase enforces the minimum passphrase length.
func ValidatePassphrase(passphrase string) error {
	if len(passphrase) < MinPassphraseLength {
		return fmt.Errorf("%w: minimum %d characters required", ErrPassphraseTooShort, MinPassphraseLength)
	}
	return nil
}

// DeriveKey derives a 32-byte key from passphrase via Argon2id.
func DeriveKey(passphrase string, salt [32]byte, params KDFParams) ([32]byte, error) {
	if err := ValidatePassphrase(passphrase); err != nil {
		return [32]byte{}, err
	}
	key := argon2.IDKey([]byte(passphrase), salt[:], params.Iterations, params.MemoryKiB, params.Parallelism, 32)
	var out [32]byte
	copy(out[:], key)
	return out, nil
}

// LoadKeyfile reads a 32-byte symmetric key from path, accepting either a
// raw 32-byte file or a whitespace-tolerant base64-encoded one.
func LoadKeyfile(path string) ([32]byte, error) {
	var out [32]byte
	contents, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}

	if len(contents) == 32 {
		copy(out[:], contents)
		return out, nil
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, string(contents))

	decoded, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	if len(decoded) != 32 {
		return out, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidKeyfile, len(decoded))
	}
	copy(out[:], decoded)
	return out, nil
}

// GenerateKeyfile writes a fresh random 32-byte key to path, base64-encoded.
func GenerateKeyfile(path string) error {
	key, err := generateRandom(32)
	if err != nil {
		return err
	}
	encoded := base64.StdEncoding.EncodeToString(key)
	return os.WriteFile(path, []byte(encoded), 0o600)
}
