package metadata

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

const vmkFixedFieldsSize = 28

// WrappedKey is the {nonce, mac, ciphertext} triple spec.md §4.E describes
// for every aes_ccm_encrypted_key value: a 12-byte nonce, a 16-byte
// authentication tag, and the wrapped key material.
type WrappedKey struct {
	Nonce      [12]byte
	MAC        [16]byte
	Ciphertext []byte
}

// CiphertextAndTag returns the ciphertext with the tag appended, the form
// cryptoprovider.AESCCMDecryptAndVerify expects.
func (w *WrappedKey) CiphertextAndTag() []byte {
	out := make([]byte, len(w.Ciphertext)+16)
	copy(out, w.Ciphertext)
	copy(out[len(w.Ciphertext):], w.MAC[:])
	return out
}

// VMK is a parsed volume_master_key entry (spec.md §3): an identifier, the
// protector's last-modification time, its protection type, and the wrap
// material — either a direct wrapped key (clear_key/startup_key) or a
// stretch_key-protected one (password/recovery_password), never both.
type VMK struct {
	Identifier     types.GUID
	LastModified   time.Time
	ProtectionType types.ProtectionType

	// StretchSalt is non-nil when this protector's key is wrapped behind
	// the stretch-key KDF (spec.md §4.E), i.e. password-based protectors.
	StretchSalt []byte

	WrappedKey *WrappedKey
}

// ParseVMKEntry decodes a volume_master_key entry's payload into a VMK.
func ParseVMKEntry(e Entry, logger types.Logger) (*VMK, error) {
	if logger == nil {
		logger = types.NoopLogger{}
	}
	if len(e.Payload) < vmkFixedFieldsSize {
		return nil, fmt.Errorf("vmk entry: payload too short (%d bytes, want at least %d)", len(e.Payload), vmkFixedFieldsSize)
	}
	r := types.NewBinaryReader(e.Payload)
	identifier, err := r.ReadGUID()
	if err != nil {
		return nil, fmt.Errorf("vmk entry: read identifier: %w", err)
	}
	lastModFiletime, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("vmk entry: read last modification time: %w", err)
	}
	protectionType, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("vmk entry: read protection type: %w", err)
	}
	if err := r.Skip(2); err != nil { // reserved
		return nil, err
	}

	nested, err := ReadEntries(e.Payload[vmkFixedFieldsSize:])
	if err != nil {
		return nil, fmt.Errorf("vmk entry: nested entries: %w", err)
	}

	vmk := &VMK{
		Identifier:     identifier,
		LastModified:   types.FiletimeToTime(lastModFiletime),
		ProtectionType: types.ProtectionType(protectionType),
	}
	if !vmk.ProtectionType.IsKnown() {
		logger.Warnf("metadata.ParseVMKEntry: vmk %s: unrecognized protection type %#x", identifier, protectionType)
	}

	// VMK sub-entries share the VMK's own entry type tag regardless of
	// whether they carry a stretch_key or a direct aes_ccm_encrypted_key
	// value, so dispatch on ValueType rather than EntryType.
	for _, n := range nested {
		switch n.ValueType {
		case types.ValueTypeStretchKey:
			salt, wrapped, err := parseStretchKeyEntry(n)
			if err != nil {
				return nil, fmt.Errorf("vmk entry: %w", err)
			}
			vmk.StretchSalt = salt
			vmk.WrappedKey = wrapped
			return vmk, nil
		case types.ValueTypeAESCCMEncryptedKey:
			wrapped, err := parseAESCCMEncryptedKeyEntry(n)
			if err != nil {
				return nil, fmt.Errorf("vmk entry: %w", err)
			}
			vmk.WrappedKey = wrapped
			return vmk, nil
		}
	}

	return vmk, nil
}

func parseStretchKeyEntry(e Entry) (salt []byte, wrapped *WrappedKey, err error) {
	const stretchFixedFieldsSize = 20
	if len(e.Payload) < stretchFixedFieldsSize {
		return nil, nil, fmt.Errorf("stretch_key entry: payload too short (%d bytes, want at least %d)", len(e.Payload), stretchFixedFieldsSize)
	}
	salt = make([]byte, 16)
	copy(salt, e.Payload[4:20])

	nested, err := ReadEntries(e.Payload[stretchFixedFieldsSize:])
	if err != nil {
		return nil, nil, fmt.Errorf("stretch_key entry: nested entries: %w", err)
	}
	for _, n := range nested {
		if n.ValueType == types.ValueTypeAESCCMEncryptedKey {
			wrapped, err = parseAESCCMEncryptedKeyEntry(n)
			if err != nil {
				return nil, nil, fmt.Errorf("stretch_key entry: %w", err)
			}
			return salt, wrapped, nil
		}
	}
	return nil, nil, fmt.Errorf("stretch_key entry: no aes_ccm_encrypted_key sub-entry found")
}

func parseAESCCMEncryptedKeyEntry(e Entry) (*WrappedKey, error) {
	const fixedFieldsSize = 12 + 16
	if len(e.Payload) < fixedFieldsSize {
		return nil, fmt.Errorf("aes_ccm_encrypted_key entry: payload too short (%d bytes, want at least %d)", len(e.Payload), fixedFieldsSize)
	}
	w := &WrappedKey{}
	copy(w.Nonce[:], e.Payload[0:12])
	copy(w.MAC[:], e.Payload[12:28])
	w.Ciphertext = append([]byte{}, e.Payload[28:]...)
	return w, nil
}
