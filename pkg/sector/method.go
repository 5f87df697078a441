// Package sector implements per-sector decryption for the five historical
// BDE cipher modes, including the Elephant diffuser layer used on
// Vista/Windows 7 (spec.md §4.F).
package sector

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// SectorSize is the fixed sector size this engine operates on. BitLocker
// volumes observed in the wild use 512-byte sectors; larger physical
// sectors are handled by the NTFS/virtual-volume layer presenting 512-byte
// logical sectors to this package (spec.md §4.F operates purely in terms
// of byte offset, not physical geometry).
const SectorSize = 512

// Key is the FVEK key material needed to decrypt sectors under a given
// encryption method: the primary cipher key, and for diffuser modes, the
// separate tweak key used to derive the diffuser's sector-key stream.
type Key struct {
	Method   types.EncryptionMethod
	Cipher   []byte
	TweakKey []byte
}

// HasZeroTweakKey reports whether this key's diffuser tweak key is present
// but all-zero (spec.md §9 Open Question: observed libbde behavior accepts
// this and produces a zero sector-key stream rather than rejecting it).
// Methods without a diffuser never carry a tweak key and always report false.
func (k Key) HasZeroTweakKey() bool {
	if !k.Method.HasDiffuser() || len(k.TweakKey) == 0 {
		return false
	}
	for _, b := range k.TweakKey {
		if b != 0 {
			return false
		}
	}
	return true
}

func (k Key) validate() error {
	want := k.Method.KeyLenBytes()
	if want == 0 {
		return fmt.Errorf("sector key: unsupported encryption method %s", k.Method)
	}
	if k.Method.HasDiffuser() {
		if len(k.Cipher) != 16 && len(k.Cipher) != 32 {
			return fmt.Errorf("sector key: diffuser cipher key must be 16 or 32 bytes, got %d", len(k.Cipher))
		}
		if len(k.TweakKey) != len(k.Cipher) {
			return fmt.Errorf("sector key: tweak key length %d does not match cipher key length %d", len(k.TweakKey), len(k.Cipher))
		}
		return nil
	}
	if k.Method.IsXTS() {
		if len(k.Cipher) != want {
			return fmt.Errorf("sector key: xts key must be %d bytes, got %d", want, len(k.Cipher))
		}
		return nil
	}
	if len(k.Cipher) != want {
		return fmt.Errorf("sector key: cbc key must be %d bytes, got %d", want, len(k.Cipher))
	}
	return nil
}
