package cryptoprovider

import (
	"crypto/aes"
	"fmt"

	"golang.org/x/crypto/xts"
)

// AESXTSDecrypt decrypts a single sector under AES-XTS (IEEE P1619), used
// for aes_128_xts/aes_256_xts volumes (Windows 10+, spec.md §4.F). key is
// the concatenation of the data-unit key and the tweak key, as FVE's FVEK
// entry stores it; sectorNumber is used directly as the XTS tweak/sector
// index.
func (Default) AESXTSDecrypt(key []byte, sectorNumber uint64, data []byte) ([]byte, error) {
	c, err := xts.NewCipher(aes.NewCipher, key)
	if err != nil {
		return nil, fmt.Errorf("xts decrypt: new cipher: %w", err)
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("xts decrypt: data length %d not a multiple of block size", len(data))
	}
	out := make([]byte, len(data))
	c.Decrypt(out, data, sectorNumber)
	return out, nil
}
