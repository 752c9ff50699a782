package pke

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// publicKeyFile is the on-disk JSON shape of a shared public key file: a
// human-readable label alongside the raw key material and its derived
// address, so a recipient file is self-describing without decryption.
type publicKeyFile struct {
	Label     string    `json:"label,omitempty"`
	PublicKey string    `json:"public_key"` // base64
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePrivateKey writes priv to path, encrypted under passphrase in the
// MMPKEKEY container format.
func SavePrivateKey(priv PrivateKey, path, passphrase string) error {
	encrypted, err := EncryptPrivateKey(priv, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, encrypted, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	return nil
}

// LoadPrivateKey reads and decrypts an MMPKEKEY file at path, verifying the
// magic bytes before attempting decryption.
func LoadPrivateKey(path, passphrase string) (PrivateKey, error) {
	var zero PrivateKey
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	if !IsPKEKeyFile(data) {
		return zero, fmt.Errorf("%w: not an MMPKEKEY file", ErrInvalidMagic)
	}
	return DecryptPrivateKey(data, passphrase)
}

// GenerateKeypairFile creates a fresh keypair, writes the private half to
// path encrypted under passphrase, and returns only the public half — the
// caller is expected to distribute the public key and keep the file.
func GenerateKeypairFile(path, passphrase string) (*PublicKey, error) {
	kp, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}
	if err := SavePrivateKey(kp.Private, path, passphrase); err != nil {
		return nil, err
	}
	pub := kp.Public
	return &pub, nil
}

// SavePublicKey writes pub to path as plaintext JSON, optionally annotated
// with a human-readable label, alongside its derived address.
func SavePublicKey(pub PublicKey, path string, label *string) error {
	file := publicKeyFile{
		PublicKey: base64.StdEncoding.EncodeToString(pub[:]),
		Address:   string(ToAddress(pub)),
		CreatedAt: time.Now().UTC(),
	}
	if label != nil {
		file.Label = *label
	}
	encoded, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	return nil
}

// LoadPublicKey reads a public key file written by SavePublicKey.
func LoadPublicKey(path string) (PublicKey, error) {
	var zero PublicKey
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	var file publicKeyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidKeyfile, err)
	}
	decoded, err := base64.StdEncoding.DecodeString(file.PublicKey)
	if err != nil || len(decoded) != 32 {
		return zero, fmt.Errorf("%w: invalid public key bytes", ErrInvalidKeyfile)
	}
	var pub PublicKey
	copy(pub[:], decoded)
	return pub, nil
}
