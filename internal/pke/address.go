package pke

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"lukechampine.com/blake3"
)

// AddressPrefix is prepended to every wallet-style address.
const AddressPrefix = "mm:"

// Address is a shareable, offline-verifiable identifier derived from a
// PublicKey: BLAKE3(pubkey) truncated to 20 bytes, Base58Check
// encoded with a 4-byte SHA-256d checksum, prefixed "mm:".
type Address string

// ToAddress derives the wallet-style address for a public key.
func ToAddress(pub PublicKey) Address {
	digest := blake3.Sum256(pub[:])
	payload := digest[:20]
	checksum := checksumOf(payload)

	full := make([]byte, 0, len(payload)+len(checksum))
	full = append(full, payload...)
	full = append(full, checksum...)

	return Address(AddressPrefix + base58.Encode(full))
}

// checksumOf computes the 4-byte double-SHA-256 checksum used by
// Base58Check, matching the Bitcoin-style convention the original
// implementation follows.
func checksumOf(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}

// ParseAddress decodes and validates an "mm:"-prefixed address string.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, AddressPrefix) {
		return "", fmt.Errorf("%w: missing %q prefix", ErrInvalidAddress, AddressPrefix)
	}
	decoded, err := base58.Decode(strings.TrimPrefix(s, AddressPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(decoded) != 24 {
		return "", fmt.Errorf("%w: expected 24 decoded bytes, got %d", ErrInvalidAddress, len(decoded))
	}
	addr := Address(s)
	if !addr.VerifyChecksum() {
		return "", fmt.Errorf("%w: checksum mismatch", ErrInvalidAddress)
	}
	return addr, nil
}

// VerifyChecksum re-derives and compares the embedded checksum, allowing
// offline validation of an address string without network access.
func (a Address) VerifyChecksum() bool {
	s := string(a)
	if !strings.HasPrefix(s, AddressPrefix) {
		return false
	}
	decoded, err := base58.Decode(strings.TrimPrefix(s, AddressPrefix))
	if err != nil || len(decoded) != 24 {
		return false
	}
	payload, checksum := decoded[:20], decoded[20:]
	return string(checksumOf(payload)) == string(checksum)
}
