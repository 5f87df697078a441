package sector

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// cbcIV derives the per-sector CBC initialization vector (spec.md §4.F):
// AES-ECB(FVEK, le_u64(offset) || 0^8).
func cbcIV(provider cryptoprovider.CryptoProvider, cipherKey []byte, offset uint64) ([]byte, error) {
	block := make([]byte, 16)
	types.PutUint64(block[:8], offset)
	iv, err := provider.AESECBDecrypt(cipherKey, block)
	if err != nil {
		return nil, fmt.Errorf("sector iv: %w", err)
	}
	return iv, nil
}
