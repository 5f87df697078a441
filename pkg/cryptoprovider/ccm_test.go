package cryptoprovider

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ccmEncryptForTest builds a CCM ciphertext+tag the same way the real FVE
// key-wrap format does, so AESCCMDecryptAndVerify can be exercised without
// a captured on-disk fixture. It deliberately duplicates none of
// AESCCMDecryptAndVerify's control flow, only the shared block-level
// helpers (CTR is its own inverse; the MAC is computed over the plaintext
// either direction).
func ccmEncryptForTest(t *testing.T, key, nonce, associatedData, plaintext []byte) []byte {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	l, err := ccmLengthFieldSize(len(nonce))
	require.NoError(t, err)

	ciphertext, err := ccmCTRCrypt(block, nonce, l, plaintext)
	require.NoError(t, err)

	mac := ccmComputeMAC(block, nonce, l, associatedData, plaintext)
	s0 := ccmCounterBlock(block, nonce, l, 0)
	tag := make([]byte, ccmTagSize)
	for i := range tag {
		tag[i] = mac[i] ^ s0[i]
	}
	return append(ciphertext, tag...)
}

func TestAESCCMRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	nonce := make([]byte, 12)
	for i := range nonce {
		nonce[i] = byte(0xa0 + i)
	}
	aad := []byte{0x02, 0x00, 0x01, 0x00}
	plaintext := []byte("the full volume encryption key material, 32 b.")

	ciphertextAndTag := ccmEncryptForTest(t, key, nonce, aad, plaintext)

	p := Default{}
	got, err := p.AESCCMDecryptAndVerify(key, nonce, aad, ciphertextAndTag)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestAESCCMTamperedTagFails(t *testing.T) {
	key := make([]byte, 32)
	nonce := make([]byte, 12)
	aad := []byte{0x01}
	plaintext := []byte("0123456789abcdef")

	ciphertextAndTag := ccmEncryptForTest(t, key, nonce, aad, plaintext)
	ciphertextAndTag[len(ciphertextAndTag)-1] ^= 0xff

	p := Default{}
	_, err := p.AESCCMDecryptAndVerify(key, nonce, aad, ciphertextAndTag)
	assert.Error(t, err)
}

func TestAESCCMTamperedAssociatedDataFails(t *testing.T) {
	key := make([]byte, 16)
	nonce := make([]byte, 12)
	aad := []byte{0x01, 0x02}
	plaintext := []byte("sixteen byte msg")

	ciphertextAndTag := ccmEncryptForTest(t, key, nonce, aad, plaintext)

	p := Default{}
	_, err := p.AESCCMDecryptAndVerify(key, nonce, []byte{0x09, 0x09}, ciphertextAndTag)
	assert.Error(t, err)
}

func TestAESCCMShortCiphertextRejected(t *testing.T) {
	p := Default{}
	_, err := p.AESCCMDecryptAndVerify(make([]byte, 16), make([]byte, 12), nil, make([]byte, 4))
	assert.Error(t, err)
}
