package pke

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"
)

// MagicPKE is the 8-byte magic prefix of an MMPKE01 multi-recipient
// ciphertext container.
var MagicPKE = [8]byte{'M', 'M', 'P', 'K', 'E', '0', '1'}

// recipientBlock is one recipient's wrapped DEK, stored in the header so
// recipients can be identified without attempting decryption.
type recipientBlock struct {
	Address     string `json:"recipient_address"`
	WrappedDEK  string `json:"wrapped_dek"` // base64
	Nonce       string `json:"nonce"`       // base64
}

// Header is the JSON structure preceding the ciphertext in an MMPKE01
// container.
type Header struct {
	Version          int               `json:"version"`
	EphemeralPublic  string            `json:"ephemeral_public"` // base64
	Recipients       []recipientBlock  `json:"recipients"`
	OriginalFilename *string           `json:"original_filename,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Encrypt produces an MMPKE01 container encrypting plaintext for one or
// more recipients. Each recipient gets an independently
// wrapped copy of a single fresh DEK, so adding a recipient never requires
// re-encrypting the payload.
func Encrypt(plaintext []byte, recipients []PublicKey, filename *string) ([]byte, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrEncryption)
	}

	ephemeral, err := GenerateKeypair()
	if err != nil {
		return nil, err
	}

	dekBytes, err := generateRandom(32)
	if err != nil {
		return nil, err
	}
	var dek [32]byte
	copy(dek[:], dekBytes)

	blocks := make([]recipientBlock, 0, len(recipients))
	for _, recipientPub := range recipients {
		kek, err := deriveKEK(ephemeral.Private, recipientPub, ephemeral.Public)
		if err != nil {
			return nil, err
		}
		wrapNonce, err := generateNonce()
		if err != nil {
			return nil, err
		}
		wrapped, err := aesGCMEncrypt(kek, wrapNonce, dek[:])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, recipientBlock{
			Address:    string(ToAddress(recipientPub)),
			WrappedDEK: base64.StdEncoding.EncodeToString(wrapped),
			Nonce:      base64.StdEncoding.EncodeToString(wrapNonce[:]),
		})
	}

	payloadNonce, err := generateNonce()
	if err != nil {
		return nil, err
	}
	ciphertext, err := aesGCMEncrypt(dek, payloadNonce, plaintext)
	if err != nil {
		return nil, err
	}
	// Payload nonce travels with the ciphertext as its first 12 bytes so
	// decrypt can recover it without a second header field.
	ciphertext = append(payloadNonce[:], ciphertext...)

	header := Header{
		Version:          1,
		EphemeralPublic:  base64.StdEncoding.EncodeToString(ephemeral.Public[:]),
		Recipients:       blocks,
		OriginalFilename: filename,
		CreatedAt:        time.Now().UTC(),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("%w: header serialization: %v", ErrEncryption, err)
	}

	out := make([]byte, 0, 8+4+len(headerJSON)+len(ciphertext))
	out = append(out, MagicPKE[:]...)
	lenBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBuf, uint32(len(headerJSON)))
	out = append(out, lenBuf...)
	out = append(out, headerJSON...)
	out = append(out, ciphertext...)
	return out, nil
}

// IsPKEFormat reports whether data begins with the MMPKE01 magic.
func IsPKEFormat(data []byte) bool {
	return len(data) >= 8 && string(data[0:8]) == string(MagicPKE[:])
}

// GetRecipients parses just the header of an MMPKE01 container, returning
// the recipient addresses without attempting decryption.
func GetRecipients(data []byte) ([]Address, error) {
	header, _, err := parseContainer(data)
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(header.Recipients))
	for _, r := range header.Recipients {
		out = append(out, Address(r.Address))
	}
	return out, nil
}

// CanDecrypt reports whether privateKey's address appears among the
// container's recipients, without performing the (more expensive) actual
// decryption.
func CanDecrypt(data []byte, priv PrivateKey) (bool, error) {
	pub, err := PublicFromPrivate(priv)
	if err != nil {
		return false, err
	}
	addr := ToAddress(pub)
	recipients, err := GetRecipients(data)
	if err != nil {
		return false, err
	}
	for _, r := range recipients {
		if r == addr {
			return true, nil
		}
	}
	return false, nil
}

// Decrypt unwraps an MMPKE01 container with the recipient's private key,
// returning the plaintext and the parsed header.
func Decrypt(data []byte, priv PrivateKey) ([]byte, *Header, error) {
	header, body, err := parseContainer(data)
	if err != nil {
		return nil, nil, err
	}

	pub, err := PublicFromPrivate(priv)
	if err != nil {
		return nil, nil, err
	}
	myAddress := string(ToAddress(pub))

	ephemeralPubBytes, err := base64.StdEncoding.DecodeString(header.EphemeralPublic)
	if err != nil || len(ephemeralPubBytes) != 32 {
		return nil, nil, fmt.Errorf("%w: invalid ephemeral public key", ErrDecryption)
	}
	var ephemeralPub PublicKey
	copy(ephemeralPub[:], ephemeralPubBytes)

	var block *recipientBlock
	for i := range header.Recipients {
		if header.Recipients[i].Address == myAddress {
			block = &header.Recipients[i]
			break
		}
	}
	if block == nil {
		return nil, nil, ErrNoMatchingRecipient
	}

	kek, err := deriveKEKForDecrypt(priv, ephemeralPub)
	if err != nil {
		return nil, nil, err
	}

	wrappedDEK, err := base64.StdEncoding.DecodeString(block.WrappedDEK)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid wrapped DEK", ErrDecryption)
	}
	wrapNonceBytes, err := base64.StdEncoding.DecodeString(block.Nonce)
	if err != nil || len(wrapNonceBytes) != 12 {
		return nil, nil, fmt.Errorf("%w: invalid wrap nonce", ErrDecryption)
	}
	var wrapNonce [12]byte
	copy(wrapNonce[:], wrapNonceBytes)

	dekBytes, err := aesGCMDecrypt(kek, wrapNonce, wrappedDEK)
	if err != nil {
		return nil, nil, err
	}
	if len(dekBytes) != 32 {
		return nil, nil, fmt.Errorf("%w: invalid DEK length", ErrDecryption)
	}
	var dek [32]byte
	copy(dek[:], dekBytes)

	if len(body) < 12 {
		return nil, nil, fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}
	var payloadNonce [12]byte
	copy(payloadNonce[:], body[:12])

	plaintext, err := aesGCMDecrypt(dek, payloadNonce, body[12:])
	if err != nil {
		return nil, nil, err
	}
	return plaintext, header, nil
}

// parseContainer splits an MMPKE01 blob into its parsed header and
// remaining ciphertext body.
func parseContainer(data []byte) (*Header, []byte, error) {
	if len(data) < 12 {
		return nil, nil, fmt.Errorf("%w: file too short", ErrDecryption)
	}
	if string(data[0:8]) != string(MagicPKE[:]) {
		return nil, nil, ErrInvalidMagic
	}
	headerLen := int(binary.LittleEndian.Uint32(data[8:12]))
	if len(data) < 12+headerLen {
		return nil, nil, fmt.Errorf("%w: file truncated", ErrDecryption)
	}

	var header Header
	if err := json.Unmarshal(data[12:12+headerLen], &header); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid header: %v", ErrHeaderParse, err)
	}
	return &header, data[12+headerLen:], nil
}
