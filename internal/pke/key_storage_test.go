package pke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptPrivateKeyRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	encrypted, err := EncryptPrivateKey(kp.Private, "a-secure-passphrase")
	require.NoError(t, err)

	decrypted, err := DecryptPrivateKey(encrypted, "a-secure-passphrase")
	require.NoError(t, err)
	assert.Equal(t, kp.Private, decrypted)
}

func TestDecryptPrivateKeyWrongPassphraseFails(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	encrypted, err := EncryptPrivateKey(kp.Private, "a-secure-passphrase")
	require.NoError(t, err)

	_, err = DecryptPrivateKey(encrypted, "a-different-passphrase")
	assert.Error(t, err)
}

func TestIsPKEKeyFileChecksMagic(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	encrypted, err := EncryptPrivateKey(kp.Private, "a-secure-passphrase")
	require.NoError(t, err)

	assert.True(t, IsPKEKeyFile(encrypted))
	assert.False(t, IsPKEKeyFile([]byte("not a key file at all")))
}

func TestDecryptPrivateKeyRejectsInvalidMagic(t *testing.T) {
	_, err := DecryptPrivateKey([]byte("NOTAKEY!deadbeefdeadbeefdeadbeefdeadbeefdeadbeef"), "a-secure-passphrase")
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecryptPrivateKeyRejectsTooShort(t *testing.T) {
	_, err := DecryptPrivateKey([]byte("short"), "a-secure-passphrase")
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestDecryptPrivateKeyRejectsTamperedCiphertext(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	encrypted, err := EncryptPrivateKey(kp.Private, "a-secure-passphrase")
	require.NoError(t, err)

	tampered := append([]byte(nil), encrypted...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = DecryptPrivateKey(tampered, "a-secure-passphrase")
	assert.Error(t, err)
}

func TestEncryptPrivateKeyDifferentKeysDifferentOutput(t *testing.T) {
	kp1, err := GenerateKeypair()
	require.NoError(t, err)
	kp2, err := GenerateKeypair()
	require.NoError(t, err)

	e1, err := EncryptPrivateKey(kp1.Private, "a-secure-passphrase")
	require.NoError(t, err)
	e2, err := EncryptPrivateKey(kp2.Private, "a-secure-passphrase")
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2)
}
