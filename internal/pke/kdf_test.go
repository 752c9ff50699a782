package pke

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassphraseRejectsShort(t *testing.T) {
	err := ValidatePassphrase("short")
	assert.ErrorIs(t, err, ErrPassphraseTooShort)
}

func TestValidatePassphraseAcceptsLongEnough(t *testing.T) {
	err := ValidatePassphrase("long-enough-passphrase")
	assert.NoError(t, err)
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)
	params := LowMemoryKDFParams()

	k1, err := DeriveKey("correct-horse-battery", salt, params)
	require.NoError(t, err)
	k2, err := DeriveKey("correct-horse-battery", salt, params)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
}

func TestDeriveKeyDiffersPerSalt(t *testing.T) {
	s1, err := generateSalt()
	require.NoError(t, err)
	s2, err := generateSalt()
	require.NoError(t, err)
	params := LowMemoryKDFParams()

	k1, err := DeriveKey("correct-horse-battery", s1, params)
	require.NoError(t, err)
	k2, err := DeriveKey("correct-horse-battery", s2, params)
	require.NoError(t, err)

	assert.NotEqual(t, k1, k2)
}

func TestDeriveKeyRejectsShortPassphrase(t *testing.T) {
	salt, err := generateSalt()
	require.NoError(t, err)

	_, err = DeriveKey("short", salt, DefaultKDFParams())
	assert.ErrorIs(t, err, ErrPassphraseTooShort)
}

func TestGenerateAndLoadKeyfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symmetric.key")
	require.NoError(t, GenerateKeyfile(path))

	key, err := LoadKeyfile(path)
	require.NoError(t, err)
	assert.NotEqual(t, [32]byte{}, key)
}

func TestLoadKeyfileAcceptsRawBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.key")
	var raw [32]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, raw[:], 0o600))

	loaded, err := LoadKeyfile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, loaded)
}

func TestLoadKeyfileRejectsWrongLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.key")
	require.NoError(t, os.WriteFile(path, []byte("too short"), 0o600))

	_, err := LoadKeyfile(path)
	assert.ErrorIs(t, err, ErrInvalidKeyfile)
}
