// Package metadata parses the redundant on-disk FVE metadata blocks: the
// block header, the header that follows it, and the tagged entry dataset
// that describes volume geometry and key protectors (spec.md §3/§4.D).
package metadata

import (
	"bytes"
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// Signature is the 8-byte magic every FVE metadata block begins with.
var Signature = []byte("-FVE-FS-")

const blockHeaderSize = 64

// BlockHeader is the fixed-size header at the start of each of the three
// redundant FVE metadata copies (spec.md §3). The three Offset fields are
// the on-disk locations of all three copies (including this one), which
// agree across every non-corrupt block. OffsetsConsistent compares two
// headers' triples; Discover does not compare them.
type BlockHeader struct {
	Version                     uint16
	EncryptionMethod            types.EncryptionMethod
	VolumeSize                  uint64
	NumberOfVolumeHeaderSectors uint32
	Offsets                     [3]uint64
	FirstBackupNTFSSectorOffset uint64
}

// ParseBlockHeader decodes a BlockHeader from the start of buf, validating
// the signature.
func ParseBlockHeader(buf []byte) (*BlockHeader, error) {
	if len(buf) < blockHeaderSize {
		return nil, fmt.Errorf("metadata block header: buffer too short (%d bytes, want %d)", len(buf), blockHeaderSize)
	}
	if !bytes.Equal(buf[:8], Signature) {
		return nil, fmt.Errorf("metadata block header: bad signature %q", buf[:8])
	}

	r := types.NewBinaryReader(buf)
	if err := r.Skip(8); err != nil {
		return nil, err
	}
	if _, err := r.ReadUint16(); err != nil { // on-disk header size, not needed beyond the signature check
		return nil, fmt.Errorf("metadata block header: read header size: %w", err)
	}
	version, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("metadata block header: read version: %w", err)
	}
	encMethod, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("metadata block header: read encryption method: %w", err)
	}
	volumeSize, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("metadata block header: read volume size: %w", err)
	}
	numHeaderSectors, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("metadata block header: read number of volume header sectors: %w", err)
	}
	if err := r.Skip(4); err != nil { // reserved
		return nil, err
	}
	var offsets [3]uint64
	for i := range offsets {
		offsets[i], err = r.ReadUint64()
		if err != nil {
			return nil, fmt.Errorf("metadata block header: read offset %d: %w", i, err)
		}
	}
	backupOffset, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("metadata block header: read backup ntfs offset: %w", err)
	}

	return &BlockHeader{
		Version:                     version,
		EncryptionMethod:            types.EncryptionMethod(encMethod),
		VolumeSize:                  volumeSize,
		NumberOfVolumeHeaderSectors: numHeaderSectors,
		Offsets:                     offsets,
		FirstBackupNTFSSectorOffset: backupOffset,
	}, nil
}

// OffsetsConsistent reports whether h's and other's offset triples agree,
// the cross-block invariant spec.md §3 requires of non-corrupt blocks.
func (h *BlockHeader) OffsetsConsistent(other *BlockHeader) bool {
	return h.Offsets == other.Offsets
}
