package sector

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
)

// DecryptSector decrypts a single SectorSize-byte ciphertext sector at the
// given byte offset, dispatching across the five cipher modes spec.md §4.F
// names. offset is the on-disk byte offset of the sector, used for IV/tweak
// derivation; it need not equal the logical offset the caller sees (the
// relocation cases in pkg/volume pass the on-disk offset here).
func DecryptSector(provider cryptoprovider.CryptoProvider, key Key, offset uint64, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != SectorSize {
		return nil, fmt.Errorf("decrypt sector: ciphertext must be %d bytes, got %d", SectorSize, len(ciphertext))
	}
	if err := key.validate(); err != nil {
		return nil, fmt.Errorf("decrypt sector: %w", err)
	}

	if key.Method.IsXTS() {
		plaintext, err := provider.AESXTSDecrypt(key.Cipher, offset/SectorSize, ciphertext)
		if err != nil {
			return nil, fmt.Errorf("decrypt sector: xts: %w", err)
		}
		return plaintext, nil
	}

	iv, err := cbcIV(provider, key.Cipher, offset)
	if err != nil {
		return nil, fmt.Errorf("decrypt sector: %w", err)
	}
	plaintext, err := provider.AESCBCDecrypt(key.Cipher, iv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt sector: cbc: %w", err)
	}

	if key.Method.HasDiffuser() {
		if err := applyDiffuser(provider, key.TweakKey, offset, plaintext); err != nil {
			return nil, fmt.Errorf("decrypt sector: diffuser: %w", err)
		}
	}

	return plaintext, nil
}
