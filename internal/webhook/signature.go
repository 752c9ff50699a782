// Package webhook delivers job lifecycle events to subscriber URLs over
// HTTP, signing each body with a per-subscription HMAC-SHA256 secret.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the header name carrying the computed signature.
const SignatureHeader = "X-Signature"

// Sign computes the lowercase hex HMAC-SHA256 of body under secret,
// formatted as the signature header expects: "sha256=<hex>".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over body under secret and compares it to
// header in constant time, so a subscriber-side implementation written
// against this package behaves the way the delivery contract documents.
func Verify(secret string, body []byte, header string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}
