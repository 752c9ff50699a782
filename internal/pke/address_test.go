package pke

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressRoundTrip(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	addr := ToAddress(kp.Public)
	assert.True(t, len(addr) > len(AddressPrefix))
	assert.Contains(t, string(addr), AddressPrefix)

	parsed, err := ParseAddress(string(addr))
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.True(t, parsed.VerifyChecksum())
}

func TestToAddressDeterministic(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)

	a1 := ToAddress(kp.Public)
	a2 := ToAddress(kp.Public)
	assert.Equal(t, a1, a2)
}

func TestToAddressDiffersPerKey(t *testing.T) {
	kp1, err := GenerateKeypair()
	require.NoError(t, err)
	kp2, err := GenerateKeypair()
	require.NoError(t, err)

	assert.NotEqual(t, ToAddress(kp1.Public), ToAddress(kp2.Public))
}

func TestParseAddressRejectsMissingPrefix(t *testing.T) {
	_, err := ParseAddress("notanaddress")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestParseAddressRejectsCorruptedChecksum(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	addr := string(ToAddress(kp.Public))

	corrupted := addr[:len(addr)-1] + "x"
	if corrupted == addr {
		corrupted = addr[:len(addr)-1] + "y"
	}

	_, err = ParseAddress(corrupted)
	assert.Error(t, err)
}

func TestVerifyChecksumRejectsEmptyAddress(t *testing.T) {
	var addr Address
	assert.False(t, addr.VerifyChecksum())
}
