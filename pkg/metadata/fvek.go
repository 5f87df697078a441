package metadata

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// FVEK is the top-level full_volume_encryption_key entry's wrap material
// (spec.md §3/§4.E): always a direct aes_ccm_encrypted_key, never nested
// behind a stretch_key the way password-protected VMKs are.
type FVEK struct {
	WrappedKey *WrappedKey
}

// ParseFVEKEntry decodes a full_volume_encryption_key entry.
func ParseFVEKEntry(e Entry) (*FVEK, error) {
	if e.ValueType != types.ValueTypeAESCCMEncryptedKey {
		return nil, fmt.Errorf("fvek entry: unexpected value type %d, want aes_ccm_encrypted_key", e.ValueType)
	}
	wrapped, err := parseAESCCMEncryptedKeyEntry(e)
	if err != nil {
		return nil, fmt.Errorf("fvek entry: %w", err)
	}
	return &FVEK{WrappedKey: wrapped}, nil
}

// UnwrappedVMK is the raw VMK bytes recovered from decrypting a VMK's
// wrapped key and walking the resulting plaintext's single key entry.
func UnwrappedVMK(plaintext []byte) ([]byte, error) {
	entries, err := ReadEntries(plaintext)
	if err != nil {
		return nil, fmt.Errorf("unwrapped vmk: %w", err)
	}
	for _, e := range entries {
		if e.ValueType == types.ValueTypeKey {
			return append([]byte{}, e.Payload...), nil
		}
	}
	return nil, fmt.Errorf("unwrapped vmk: no key entry found in plaintext")
}

// FVEKKeyMaterial is the decoded result of an unwrapped FVEK plaintext's
// key entry: the sector-cipher key, and for diffuser modes, the separate
// tweak key (spec.md §4.E point 4).
type FVEKKeyMaterial struct {
	Key       []byte
	TweakKey  []byte
	InferredMethod types.EncryptionMethod
}

// UnwrappedFVEK decodes the raw FVEK plaintext into its key material,
// inferring the cipher from the payload length as spec.md §4.E describes,
// then cross-checking against the encryption method declared in the
// metadata block header (spec.md §4.D expanded) — a mismatch is
// MetadataCorrupt, not silently resolved in either source's favor.
func UnwrappedFVEK(plaintext []byte, declaredMethod types.EncryptionMethod) (*FVEKKeyMaterial, error) {
	entries, err := ReadEntries(plaintext)
	if err != nil {
		return nil, fmt.Errorf("unwrapped fvek: %w", err)
	}
	var keyPayload []byte
	for _, e := range entries {
		if e.ValueType == types.ValueTypeKey {
			keyPayload = e.Payload
			break
		}
	}
	if keyPayload == nil {
		return nil, fmt.Errorf("unwrapped fvek: no key entry found in plaintext")
	}

	m := &FVEKKeyMaterial{}
	switch len(keyPayload) {
	case 16:
		m.Key = keyPayload
		m.InferredMethod = types.EncryptionMethodAES128CBC
	case 32:
		if declaredMethod.HasDiffuser() {
			m.Key = keyPayload[:16]
			m.TweakKey = keyPayload[16:32]
			m.InferredMethod = types.EncryptionMethodAES128CBCDiffuser
		} else {
			m.Key = keyPayload
			m.InferredMethod = types.EncryptionMethodAES256CBC
			if declaredMethod.IsXTS() {
				m.InferredMethod = types.EncryptionMethodAES128XTS
			}
		}
	case 64:
		m.Key = keyPayload[:32]
		m.TweakKey = keyPayload[32:64]
		m.InferredMethod = types.EncryptionMethodAES256CBCDiffuser
		if declaredMethod.IsXTS() {
			m.InferredMethod = types.EncryptionMethodAES256XTS
			m.Key = keyPayload // XTS key material is the full concatenation
			m.TweakKey = nil
		}
	default:
		return nil, fmt.Errorf("unwrapped fvek: unexpected key length %d", len(keyPayload))
	}

	if declaredMethod != types.EncryptionMethodNone && declaredMethod != m.InferredMethod {
		return nil, types.NewError(types.ErrKindMetadataCorrupt, "metadata.UnwrappedFVEK",
			fmt.Sprintf("declared encryption method %s does not match length-inferred method %s", declaredMethod, m.InferredMethod))
	}

	return m, nil
}
