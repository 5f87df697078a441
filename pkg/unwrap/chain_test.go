package unwrap

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"testing"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/metadata"
	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ccmEncryptForTest builds an RFC 3610 CCM ciphertext+tag independently of
// cryptoprovider's internals, so fixtures here don't rely on that
// package's unexported helpers.
func ccmEncryptForTest(t *testing.T, key, nonce, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)

	l := 15 - len(nonce)
	require.True(t, l >= 2 && l <= 8)

	putCounter := func(dst []byte, counter uint64) {
		for i := 0; i < l; i++ {
			dst[l-1-i] = byte(counter >> (8 * i))
		}
	}
	counterBlock := func(counter uint64) []byte {
		a := make([]byte, aes.BlockSize)
		a[0] = byte(l - 1)
		copy(a[1:1+len(nonce)], nonce)
		putCounter(a[1+len(nonce):], counter)
		out := make([]byte, aes.BlockSize)
		block.Encrypt(out, a)
		return out
	}

	a1 := make([]byte, aes.BlockSize)
	a1[0] = byte(l - 1)
	copy(a1[1:1+len(nonce)], nonce)
	putCounter(a1[1+len(nonce):], 1)
	stream := cipher.NewCTR(block, a1)
	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)

	b0 := make([]byte, aes.BlockSize)
	b0[0] = byte(l - 1) | byte((16-2)/2<<3)
	copy(b0[1:1+len(nonce)], nonce)
	putCounter(b0[1+len(nonce):], uint64(len(plaintext)))
	mac := make([]byte, aes.BlockSize)
	block.Encrypt(mac, b0)

	padded := plaintext
	if len(padded)%aes.BlockSize != 0 {
		p := make([]byte, (len(padded)/aes.BlockSize+1)*aes.BlockSize)
		copy(p, padded)
		padded = p
	}
	for off := 0; off < len(padded); off += aes.BlockSize {
		for i := 0; i < aes.BlockSize; i++ {
			mac[i] ^= padded[off+i]
		}
		block.Encrypt(mac, mac)
	}

	s0 := counterBlock(0)
	tag := make([]byte, 16)
	for i := range tag {
		tag[i] = mac[i] ^ s0[i]
	}
	return append(ciphertext, tag...)
}

func TestUnwrapClearKeyEndToEnd(t *testing.T) {
	provider := cryptoprovider.NewDefault()

	vmkKeyBytes := make([]byte, 32)
	for i := range vmkKeyBytes {
		vmkKeyBytes[i] = byte(100 + i)
	}
	vmkPlaintext := encodeKeyEntry(vmkKeyBytes)

	var zeroKey [32]byte
	var vmkNonce [12]byte
	for i := range vmkNonce {
		vmkNonce[i] = byte(i + 1)
	}
	vmkWrapped := ccmEncryptForTest(t, zeroKey[:], vmkNonce[:], vmkPlaintext)

	vmk := &metadata.VMK{
		Identifier:     types.NewRandomGUID(),
		ProtectionType: types.ProtectionTypeClearKey,
		WrappedKey: &metadata.WrappedKey{
			Nonce:      vmkNonce,
			Ciphertext: vmkWrapped[:len(vmkWrapped)-16],
		},
	}
	copy(vmk.WrappedKey.MAC[:], vmkWrapped[len(vmkWrapped)-16:])

	fvekKeyBytes := make([]byte, 16)
	for i := range fvekKeyBytes {
		fvekKeyBytes[i] = byte(200 + i)
	}
	fvekPlaintext := encodeKeyEntry(fvekKeyBytes)
	var fvekNonce [12]byte
	for i := range fvekNonce {
		fvekNonce[i] = byte(0xa0 + i)
	}
	fvekWrapped := ccmEncryptForTest(t, vmkKeyBytes, fvekNonce[:], fvekPlaintext)
	fvek := &metadata.FVEK{
		WrappedKey: &metadata.WrappedKey{
			Nonce:      fvekNonce,
			Ciphertext: fvekWrapped[:len(fvekWrapped)-16],
		},
	}
	copy(fvek.WrappedKey.MAC[:], fvekWrapped[len(fvekWrapped)-16:])

	cred := Credential{Kind: CredentialClearKey}
	result, err := Unwrap(provider, []*metadata.VMK{vmk}, fvek, types.EncryptionMethodAES128CBC, cred, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, fvekKeyBytes, result.FVEK.Key)
	assert.Equal(t, types.EncryptionMethodAES128CBC, result.FVEK.InferredMethod)
	assert.Equal(t, vmkKeyBytes, result.VMKBytes)
}

func TestUnwrapNoMatchingProtectorFails(t *testing.T) {
	provider := cryptoprovider.NewDefault()
	vmk := &metadata.VMK{ProtectionType: types.ProtectionTypeStartupKey, WrappedKey: &metadata.WrappedKey{}}
	cred := Credential{Kind: CredentialClearKey}
	_, err := Unwrap(provider, []*metadata.VMK{vmk}, &metadata.FVEK{}, types.EncryptionMethodAES128CBC, cred, nil, nil)
	require.Error(t, err)
	bdeErr, ok := err.(*types.BDEError)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindUnlockFailed, bdeErr.Kind)
}

func TestUnwrapTPMBackedProtectorRefusedUpFront(t *testing.T) {
	provider := cryptoprovider.NewDefault()
	vmk := &metadata.VMK{ProtectionType: types.ProtectionTypeTPM, WrappedKey: &metadata.WrappedKey{}}
	cred := Credential{Kind: CredentialClearKey}
	_, err := Unwrap(provider, []*metadata.VMK{vmk}, &metadata.FVEK{}, types.EncryptionMethodAES128CBC, cred, nil, nil)
	require.Error(t, err)
	bdeErr, ok := err.(*types.BDEError)
	require.True(t, ok)
	assert.Equal(t, types.ErrKindInvalidCredential, bdeErr.Kind)
}

func TestUnwrapRawKeysBypassesChain(t *testing.T) {
	provider := cryptoprovider.NewDefault()
	cred := Credential{Kind: CredentialRawKeys, RawFVEK: []byte("0123456789abcdef"), RawTweakKey: []byte("fedcba9876543210")}
	result, err := Unwrap(provider, nil, nil, types.EncryptionMethodAES128CBCDiffuser, cred, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, cred.RawFVEK, result.FVEK.Key)
	assert.Equal(t, cred.RawTweakKey, result.FVEK.TweakKey)
}

// spyLogger records every Warnf call for assertion; Debugf is ignored.
type spyLogger struct {
	warnings []string
}

func (s *spyLogger) Debugf(string, ...any) {}
func (s *spyLogger) Warnf(format string, args ...any) {
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

func TestUnwrapLogsAndSkipsUnrecognizedProtectionType(t *testing.T) {
	provider := cryptoprovider.NewDefault()
	unrecognized := &metadata.VMK{ProtectionType: types.ProtectionType(0x9999), WrappedKey: &metadata.WrappedKey{}}
	cred := Credential{Kind: CredentialClearKey}
	logger := &spyLogger{}
	_, err := Unwrap(provider, []*metadata.VMK{unrecognized}, &metadata.FVEK{}, types.EncryptionMethodAES128CBC, cred, nil, logger)
	require.Error(t, err)
	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "unrecognized protection type")
}

func encodeKeyEntry(payload []byte) []byte {
	size := 8 + len(payload)
	buf := make([]byte, size)
	buf[0] = byte(size)
	buf[1] = byte(size >> 8)
	buf[4] = byte(types.ValueTypeKey)
	copy(buf[8:], payload)
	return buf
}
