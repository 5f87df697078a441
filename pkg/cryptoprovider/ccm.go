package cryptoprovider

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"fmt"
)

// ccmTagSize is the authentication tag length FVE's key-wrap format uses:
// a full 16-byte (128-bit) MAC, the maximum RFC 3610 permits.
const ccmTagSize = 16

// No ecosystem AES-CCM package was found anywhere in the retrieved example
// corpus (see DESIGN.md), so this builds CCM (RFC 3610 / NIST SP 800-38C)
// directly from crypto/aes + crypto/cipher.NewCTR plus a hand-written
// CBC-MAC, the standard construction for layering CCM over a block cipher
// that only exposes CTR and raw-block primitives.

// AESCCMDecryptAndVerify decrypts ciphertextAndTag (ciphertext with the
// 16-byte authentication tag appended; FVE's aes_ccm_encrypted_key entries
// store the tag before the ciphertext, and metadata.WrappedKey's
// CiphertextAndTag reorders them into this form) and verifies the tag
// against associatedData, returning
// the plaintext only if authentication succeeds.
func (Default) AESCCMDecryptAndVerify(key, nonce, associatedData, ciphertextAndTag []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("ccm decrypt: new cipher: %w", err)
	}
	if len(ciphertextAndTag) < ccmTagSize {
		return nil, fmt.Errorf("ccm decrypt: ciphertext too short to contain a tag")
	}
	l, err := ccmLengthFieldSize(len(nonce))
	if err != nil {
		return nil, fmt.Errorf("ccm decrypt: %w", err)
	}

	ciphertext := ciphertextAndTag[:len(ciphertextAndTag)-ccmTagSize]
	receivedTag := ciphertextAndTag[len(ciphertextAndTag)-ccmTagSize:]

	plaintext, err := ccmCTRCrypt(block, nonce, l, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("ccm decrypt: %w", err)
	}

	mac := ccmComputeMAC(block, nonce, l, associatedData, plaintext)
	s0 := ccmCounterBlock(block, nonce, l, 0)
	expectedTag := make([]byte, ccmTagSize)
	for i := range expectedTag {
		expectedTag[i] = mac[i] ^ s0[i]
	}

	if subtle.ConstantTimeCompare(expectedTag, receivedTag) != 1 {
		return nil, fmt.Errorf("ccm decrypt: authentication tag mismatch")
	}
	return plaintext, nil
}

// ccmLengthFieldSize returns L, the byte length of the message-length field
// in the counter block (RFC 3610 §2.2), derived from the nonce length: the
// 16-byte block is always 1 flags byte + nonce + L-byte counter/length.
func ccmLengthFieldSize(nonceLen int) (int, error) {
	l := 15 - nonceLen
	if l < 2 || l > 8 {
		return 0, fmt.Errorf("unsupported nonce length %d", nonceLen)
	}
	return l, nil
}

// ccmCounterBlock builds the counter-mode input block A_i (RFC 3610 §2.3):
// flags byte (L-1 in the low 3 bits), the nonce, then counter in L bytes.
func ccmCounterBlock(block cipher.Block, nonce []byte, l int, counter uint64) []byte {
	a := make([]byte, aes.BlockSize)
	a[0] = byte(l - 1)
	copy(a[1:1+len(nonce)], nonce)
	putCounter(a[1+len(nonce):], l, counter)
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, a)
	return out
}

func putCounter(dst []byte, l int, counter uint64) {
	for i := 0; i < l; i++ {
		dst[l-1-i] = byte(counter >> (8 * i))
	}
}

// ccmCTRCrypt encrypts or decrypts data under CCM's counter mode, where
// block counting starts at 1 (counter 0 is reserved for masking the tag).
func ccmCTRCrypt(block cipher.Block, nonce []byte, l int, data []byte) ([]byte, error) {
	a1 := make([]byte, aes.BlockSize)
	a1[0] = byte(l - 1)
	copy(a1[1:1+len(nonce)], nonce)
	putCounter(a1[1+len(nonce):], l, 1)

	stream := cipher.NewCTR(block, a1)
	out := make([]byte, len(data))
	stream.XORKeyStream(out, data)
	return out, nil
}

// ccmComputeMAC computes the raw CBC-MAC over the formatted associated-data
// and plaintext blocks (RFC 3610 §2.2), returning the first ccmTagSize
// bytes of the final MAC block (the full block; the caller XORs it with S0
// and truncates to the configured tag size, here the full 16 bytes).
func ccmComputeMAC(block cipher.Block, nonce []byte, l int, associatedData, plaintext []byte) []byte {
	b0 := make([]byte, aes.BlockSize)
	flags := byte(l - 1)
	if len(associatedData) > 0 {
		flags |= 1 << 6
	}
	flags |= byte((ccmTagSize - 2) / 2 << 3)
	b0[0] = flags
	copy(b0[1:1+len(nonce)], nonce)
	putCounter(b0[1+len(nonce):], l, uint64(len(plaintext)))

	mac := make([]byte, aes.BlockSize)
	block.Encrypt(mac, b0)

	blocks := ccmFormatAssociatedData(associatedData)
	blocks = append(blocks, padToBlock(plaintext)...)

	for off := 0; off < len(blocks); off += aes.BlockSize {
		xorInPlace(mac, blocks[off:off+aes.BlockSize])
		block.Encrypt(mac, mac)
	}
	return mac
}

// ccmFormatAssociatedData formats associated data per RFC 3610 §2.2: a
// length prefix (2, 6, or 10 bytes depending on magnitude) followed by the
// data itself, zero-padded to a block boundary. The 2-byte form (length
// below 0xff00) and the 6-byte form are implemented; the 10-byte form is
// not.
func ccmFormatAssociatedData(associatedData []byte) []byte {
	if len(associatedData) == 0 {
		return nil
	}
	var prefix []byte
	if len(associatedData) < 0xff00 {
		prefix = []byte{byte(len(associatedData) >> 8), byte(len(associatedData))}
	} else {
		prefix = []byte{0xff, 0xfe, 0, 0, 0, 0}
		putCounter(prefix[2:], 4, uint64(len(associatedData)))
	}
	combined := append(append([]byte{}, prefix...), associatedData...)
	return padToBlock(combined)
}

func padToBlock(data []byte) []byte {
	if len(data)%aes.BlockSize == 0 {
		return data
	}
	padded := make([]byte, (len(data)/aes.BlockSize+1)*aes.BlockSize)
	copy(padded, data)
	return padded
}

func xorInPlace(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}
