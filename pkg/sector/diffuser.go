package sector

import (
	"encoding/binary"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// diffuserARotations and diffuserBRotations are the rotation schedules
// spec.md §4.F specifies for the Elephant diffuser's two passes, indexed
// by i mod 4.
var (
	diffuserARotations = [4]uint{9, 0, 13, 0}
	diffuserBRotations = [4]uint{0, 10, 0, 25}
)

// sectorKeyStream derives the sector-sized key stream XORed into the
// AES-CBC plaintext before the diffuser runs (spec.md §4.F): successive
// 16-byte blocks are AES-ECB(tweakKey, le_u64(offset) || 0x80 || 0^7),
// each incrementing the last byte of the block-to-encrypt from the
// previous one.
func sectorKeyStream(provider cryptoprovider.CryptoProvider, tweakKey []byte, offset uint64) ([]byte, error) {
	stream := make([]byte, SectorSize)
	block := make([]byte, 16)
	types.PutUint64(block[:8], offset)
	block[8] = 0x80

	for pos := 0; pos < SectorSize; pos += 16 {
		enc, err := provider.AESECBDecrypt(tweakKey, block)
		if err != nil {
			return nil, err
		}
		copy(stream[pos:pos+16], enc)
		block[15]++
	}
	return stream, nil
}

// diffuserARound applies one round of Diffuser A in place, operating on
// the sector as little-endian uint32 words: P[i] += P[(i+2)%n] ^
// rotl(P[(i+5)%n], R_A[i mod 4]).
func diffuserARound(words []uint32) {
	n := len(words)
	for i := 0; i < n; i++ {
		r := diffuserARotations[i%4]
		words[i] += words[(i+2)%n] ^ rotl32(words[(i+5)%n], r)
	}
}

// diffuserBRound applies one round of Diffuser B in place, applied in
// reverse index order per spec.md §4.F: P[i] += P[(i+2)%n] ^
// rotl(P[(i+5)%n], R_B[i mod 4]).
func diffuserBRound(words []uint32) {
	n := len(words)
	for i := n - 1; i >= 0; i-- {
		r := diffuserBRotations[i%4]
		words[i] += words[(i+2)%n] ^ rotl32(words[(i+5)%n], r)
	}
}

func rotl32(v uint32, n uint) uint32 {
	n %= 32
	return (v << n) | (v >> (32 - n))
}

// applyDiffuser runs the Elephant diffuser decryption stack on a 512-byte
// sector buffer in place: sector-key XOR, then Diffuser B (5 rounds),
// then Diffuser A (5 rounds) — the mirror of the encryption stack
// (spec.md §4.F).
func applyDiffuser(provider cryptoprovider.CryptoProvider, tweakKey []byte, offset uint64, sector []byte) error {
	keyStream, err := sectorKeyStream(provider, tweakKey, offset)
	if err != nil {
		return err
	}
	for i := range sector {
		sector[i] ^= keyStream[i]
	}

	words := bytesToWords(sector)
	for round := 0; round < 5; round++ {
		diffuserBRound(words)
	}
	for round := 0; round < 5; round++ {
		diffuserARound(words)
	}
	wordsToBytes(words, sector)
	return nil
}

func bytesToWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words
}

func wordsToBytes(words []uint32, dst []byte) {
	for i, w := range words {
		binary.LittleEndian.PutUint32(dst[i*4:], w)
	}
}
