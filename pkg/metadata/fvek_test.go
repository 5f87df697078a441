package metadata

import (
	"testing"

	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFVEKEntry(t *testing.T) {
	var nonce [12]byte
	var mac [16]byte
	ciphertext := make([]byte, 32)
	e := encodeAESCCMEntry(nonce, mac, ciphertext)
	entries, err := ReadEntries(e)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	fvek, err := ParseFVEKEntry(entries[0])
	require.NoError(t, err)
	assert.Equal(t, ciphertext, fvek.WrappedKey.Ciphertext)
}

func TestParseFVEKEntryRejectsWrongValueType(t *testing.T) {
	e := Entry{ValueType: types.ValueTypeKey, Payload: make([]byte, 32)}
	_, err := ParseFVEKEntry(e)
	assert.Error(t, err)
}

func TestUnwrappedVMKFindsKeyEntry(t *testing.T) {
	keyBytes := make([]byte, 32)
	for i := range keyBytes {
		keyBytes[i] = byte(i)
	}
	plaintext := encodeEntry(0, uint16(types.ValueTypeKey), keyBytes)

	got, err := UnwrappedVMK(plaintext)
	require.NoError(t, err)
	assert.Equal(t, keyBytes, got)
}

func TestUnwrappedFVEK128CBC(t *testing.T) {
	keyBytes := make([]byte, 16)
	plaintext := encodeEntry(0, uint16(types.ValueTypeKey), keyBytes)

	m, err := UnwrappedFVEK(plaintext, types.EncryptionMethodAES128CBC)
	require.NoError(t, err)
	assert.Equal(t, types.EncryptionMethodAES128CBC, m.InferredMethod)
	assert.Len(t, m.Key, 16)
	assert.Nil(t, m.TweakKey)
}

func TestUnwrappedFVEK128CBCDiffuserSplitsKeys(t *testing.T) {
	keyBytes := make([]byte, 32)
	for i := range keyBytes {
		keyBytes[i] = byte(i)
	}
	plaintext := encodeEntry(0, uint16(types.ValueTypeKey), keyBytes)

	m, err := UnwrappedFVEK(plaintext, types.EncryptionMethodAES128CBCDiffuser)
	require.NoError(t, err)
	assert.Equal(t, types.EncryptionMethodAES128CBCDiffuser, m.InferredMethod)
	assert.Equal(t, keyBytes[:16], m.Key)
	assert.Equal(t, keyBytes[16:], m.TweakKey)
}

func TestUnwrappedFVEK256XTSUsesFullConcatenation(t *testing.T) {
	keyBytes := make([]byte, 64)
	for i := range keyBytes {
		keyBytes[i] = byte(i)
	}
	plaintext := encodeEntry(0, uint16(types.ValueTypeKey), keyBytes)

	m, err := UnwrappedFVEK(plaintext, types.EncryptionMethodAES256XTS)
	require.NoError(t, err)
	assert.Equal(t, types.EncryptionMethodAES256XTS, m.InferredMethod)
	assert.Equal(t, keyBytes, m.Key)
	assert.Nil(t, m.TweakKey)
}

func TestUnwrappedFVEKRejectsMismatchedDeclaredMethod(t *testing.T) {
	keyBytes := make([]byte, 16)
	plaintext := encodeEntry(0, uint16(types.ValueTypeKey), keyBytes)

	_, err := UnwrappedFVEK(plaintext, types.EncryptionMethodAES256CBC)
	require.Error(t, err)
	bdeErr, ok := err.(*types.BDEError)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindMetadataCorrupt, bdeErr.Kind)
}
