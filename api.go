package bde

import (
	"time"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// KeyProtectorInfo describes one discovered VMK entry without revealing
// any key material (spec.md §6): its identifier, protection type, and
// last-modification time.
type KeyProtectorInfo struct {
	Identifier     types.GUID
	ProtectionType types.ProtectionType
	LastModified   time.Time
}

// VolumeSize returns the encrypted volume's size in bytes.
func (v *Volume) VolumeSize() uint64 {
	return v.volumeSizeBytes()
}

// EncryptionMethod returns the cipher mode declared in the selected
// metadata block header.
func (v *Volume) EncryptionMethod() types.EncryptionMethod {
	return v.selectedBlock.BlockHeader.EncryptionMethod
}

// VolumeIdentifier returns the volume identifier GUID recorded in the
// selected metadata header.
func (v *Volume) VolumeIdentifier() types.GUID {
	return v.selectedBlock.Header.VolumeIdentifier
}

// CreationTime returns the metadata header's creation timestamp.
func (v *Volume) CreationTime() time.Time {
	return v.selectedBlock.Header.Created
}

// NumberOfKeyProtectors returns how many VMK entries were discovered.
func (v *Volume) NumberOfKeyProtectors() int {
	return len(v.vmks)
}

// KeyProtector returns information about the VMK entry at index, which
// must be in [0, NumberOfKeyProtectors()).
func (v *Volume) KeyProtector(index int) (KeyProtectorInfo, error) {
	if index < 0 || index >= len(v.vmks) {
		return KeyProtectorInfo{}, types.NewError(types.ErrKindOutOfRange, "bde.KeyProtector", "index out of range")
	}
	vmk := v.vmks[index]
	return KeyProtectorInfo{
		Identifier:     vmk.Identifier,
		ProtectionType: vmk.ProtectionType,
		LastModified:   vmk.LastModified,
	}, nil
}

// ReadAt reads decrypted volume content at the given logical offset
// (spec.md §6). It returns NotUnlocked if the volume has not yet been
// unlocked.
func (v *Volume) ReadAt(p []byte, off int64) (int, error) {
	if v.state != types.StateUnlocked {
		return 0, types.NewError(types.ErrKindNotUnlocked, "bde.ReadAt", "volume is not unlocked")
	}
	if len(p) == 0 {
		return 0, nil
	}
	return v.virtual.ReadAt(p, off)
}
