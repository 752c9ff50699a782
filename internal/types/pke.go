package types

import "time"

// PKEPublicKeyRecord is the shared address registry row in
// public.pke_public_keys.
type PKEPublicKeyRecord struct {
	Address   string // "mm:" + base58check(blake3(pubkey)[:20])
	PublicKey []byte // 32-byte X25519 public key
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
