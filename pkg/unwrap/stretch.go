package unwrap

import (
	"sync/atomic"
	"unicode/utf16"

	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// stretchIterations is the 2^20 round count spec.md §4.E/§5 specifies.
const stretchIterations = 1 << 20

// stretchAbortCheckPeriod bounds cancellation latency to "tens of
// milliseconds" (spec.md §5) by checking the abort flag every 4096 rounds
// rather than on every round.
const stretchAbortCheckPeriod = 4096

// stretchState is the 88-byte structure hashed every round of the
// stretch-key KDF (spec.md §4.E): the previous round's digest, the fixed
// initial digest, the fixed salt, and a round counter.
type stretchState struct {
	lastSHA256    [32]byte
	initialSHA256 [32]byte
	salt          [16]byte
	counter       uint64
}

func (s *stretchState) bytes() []byte {
	buf := make([]byte, 88)
	copy(buf[0:32], s.lastSHA256[:])
	copy(buf[32:64], s.initialSHA256[:])
	copy(buf[64:80], s.salt[:])
	types.PutUint64(buf[80:88], s.counter)
	return buf
}

// InitialDigestFromPassword computes K0 = SHA-256(SHA-256(utf16le(input)))
// for a UTF-8 user password (spec.md §4.E).
func InitialDigestFromPassword(provider cryptoprovider.CryptoProvider, password string) [32]byte {
	utf16le := encodeUTF16LE(password)
	first := provider.SHA256(utf16le)
	return provider.SHA256(first[:])
}

// InitialDigestFromRecoveryKey computes K0 = SHA-256(SHA-256(key)) for the
// 16-byte decoded recovery-password key (spec.md §4.E: "for recovery
// passwords, the input is the binary-decoded 16-byte value").
func InitialDigestFromRecoveryKey(provider cryptoprovider.CryptoProvider, key []byte) [32]byte {
	first := provider.SHA256(key)
	return provider.SHA256(first[:])
}

func encodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[i*2] = byte(u)
		out[i*2+1] = byte(u >> 8)
	}
	return out
}

// Stretch runs the 2^20-round stretch-key KDF, returning the final
// last_sha256 as the intermediate key that unwraps the protector's
// aes_ccm_encrypted_key (spec.md §4.E). abort, if non-nil, is polled every
// stretchAbortCheckPeriod rounds; when it reads true, Stretch returns
// ErrAborted immediately.
func Stretch(provider cryptoprovider.CryptoProvider, initialDigest [32]byte, salt []byte, abort *atomic.Bool) ([32]byte, error) {
	if len(salt) != 16 {
		return [32]byte{}, types.NewError(types.ErrKindInvalidCredential, "unwrap.Stretch", "salt must be 16 bytes")
	}
	state := &stretchState{initialSHA256: initialDigest}
	copy(state.salt[:], salt)

	for i := 0; i < stretchIterations; i++ {
		state.lastSHA256 = provider.SHA256(state.bytes())
		state.counter++

		if abort != nil && i%stretchAbortCheckPeriod == 0 && abort.Load() {
			return [32]byte{}, types.NewError(types.ErrKindAborted, "unwrap.Stretch", "aborted during key stretch")
		}
	}
	return state.lastSHA256, nil
}
