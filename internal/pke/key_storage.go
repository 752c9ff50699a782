package pke

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"
)

// MagicPKEKey is the 8-byte magic prefix of a passphrase-encrypted private
// key file ("MMPKEKEY" format).
var MagicPKEKey = [8]byte{'M', 'M', 'P', 'K', 'E', 'K', 'E', 'Y'}

// pkeKeyHeader is the JSON header preceding the encrypted key bytes.
type pkeKeyHeader struct {
	Version   int       `json:"version"`
	KDF       string    `json:"kdf"`
	KDFParams KDFParams `json:"kdf_params"`
	Salt      string    `json:"salt"`  // base64
	Nonce     string    `json:"nonce"` // base64
	CreatedAt time.Time `json:"created_at"`
}

// EncryptPrivateKey wraps a 32-byte private key under a passphrase, using
// Argon2id key derivation and AES-256-GCM, in the MMPKEKEY container
// format: magic(8) | header_len(u32 LE) | header(JSON) | ciphertext(48).
func EncryptPrivateKey(key PrivateKey, passphrase string) ([]byte, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}
	nonce, err := generateNonce()
	if err != nil {
		return nil, err
	}

	params := DefaultKDFParams()
	derived, err := DeriveKey(passphrase, salt, params)
	if err != nil {
		return nil, err
	}

	ciphertext, err := aesGCMEncrypt(derived, nonce, key[:])
	if err != nil {
		return nil, err
	}

	header := pkeKeyHeader{
		Version:   1,
		KDF:       "argon2id",
		KDFParams: params,
		Salt:      base64.StdEncoding.EncodeToString(salt[:]),
		Nonce:     base64.StdEncoding.EncodeToString(nonce[:]),
		CreatedAt: time.Now().UTC(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("%w: header serialization: %v", ErrEncryption, err)
	}

	out := make([]byte, 0, 8+4+len(headerJSON)+len(ciphertext))
	out = append(out, MagicPKEKey[:]...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(headerJSON)))
	out = append(out, lenBuf...)
	out = append(out, headerJSON...)
	out = append(out, ciphertext...)
	return out, nil
}

// DecryptPrivateKey unwraps an MMPKEKEY-format file with the given
// passphrase, returning the raw 32-byte private key.
func DecryptPrivateKey(encrypted []byte, passphrase string) (PrivateKey, error) {
	var zero PrivateKey
	if len(encrypted) < 60 {
		return zero, fmt.Errorf("%w: file too short", ErrDecryption)
	}
	if string(encrypted[0:8]) != string(MagicPKEKey[:]) {
		return zero, ErrInvalidMagic
	}

	headerLen := int(binary.LittleEndian.Uint32(encrypted[8:12]))
	if len(encrypted) < 12+headerLen+48 {
		return zero, fmt.Errorf("%w: file truncated", ErrDecryption)
	}

	var header pkeKeyHeader
	if err := json.Unmarshal(encrypted[12:12+headerLen], &header); err != nil {
		return zero, fmt.Errorf("%w: invalid header: %v", ErrDecryption, err)
	}

	saltBytes, err := base64.StdEncoding.DecodeString(header.Salt)
	if err != nil || len(saltBytes) != 32 {
		return zero, fmt.Errorf("%w: invalid salt", ErrDecryption)
	}
	nonceBytes, err := base64.StdEncoding.DecodeString(header.Nonce)
	if err != nil || len(nonceBytes) != 12 {
		return zero, fmt.Errorf("%w: invalid nonce", ErrDecryption)
	}

	var salt [32]byte
	copy(salt[:], saltBytes)
	var nonce [12]byte
	copy(nonce[:], nonceBytes)

	derived, err := DeriveKey(passphrase, salt, header.KDFParams)
	if err != nil {
		return zero, err
	}

	plaintext, err := aesGCMDecrypt(derived, nonce, encrypted[12+headerLen:])
	if err != nil {
		return zero, err
	}
	if len(plaintext) != 32 {
		return zero, fmt.Errorf("%w: invalid key length %d", ErrDecryption, len(plaintext))
	}

	var key PrivateKey
	copy(key[:], plaintext)
	return key, nil
}

// IsPKEKeyFile reports whether data begins with the MMPKEKEY magic.
func IsPKEKeyFile(data []byte) bool {
	return len(data) >= 8 && string(data[0:8]) == string(MagicPKEKey[:])
}
