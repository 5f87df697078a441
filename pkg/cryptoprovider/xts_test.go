package cryptoprovider

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/xts"
)

func TestAESXTSDecryptMatchesXCrypto(t *testing.T) {
	key := make([]byte, 32) // AES-128-XTS: 16-byte data key + 16-byte tweak key
	for i := range key {
		key[i] = byte(i)
	}
	c, err := xts.NewCipher(aes.NewCipher, key)
	require.NoError(t, err)

	plain := make([]byte, 512)
	for i := range plain {
		plain[i] = byte(i % 251)
	}
	ciphertext := make([]byte, len(plain))
	c.Encrypt(ciphertext, plain, 7)

	p := Default{}
	got, err := p.AESXTSDecrypt(key, 7, ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestAESXTSDecryptDifferentSectorDiffers(t *testing.T) {
	key := make([]byte, 64) // AES-256-XTS
	for i := range key {
		key[i] = byte(255 - i)
	}
	c, err := xts.NewCipher(aes.NewCipher, key)
	require.NoError(t, err)

	plain := make([]byte, 512)
	ciphertext := make([]byte, len(plain))
	c.Encrypt(ciphertext, plain, 1)

	p := Default{}
	got, err := p.AESXTSDecrypt(key, 2, ciphertext)
	require.NoError(t, err)
	assert.NotEqual(t, plain, got, "decrypting under the wrong sector tweak must not recover the plaintext")
}

func TestAESXTSDecryptRejectsUnalignedInput(t *testing.T) {
	p := Default{}
	_, err := p.AESXTSDecrypt(make([]byte, 32), 0, make([]byte, 5))
	assert.Error(t, err)
}
