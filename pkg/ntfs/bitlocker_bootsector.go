package ntfs

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// Vista BitLocker replaces the NTFS boot sector outright with its own boot
// sector carrying a distinct signature and fixed-position FVE metadata
// offsets (spec.md §4.C, version-1 layout), rather than stamping a GUID
// into an otherwise-intact NTFS header the way Windows 7+ does.
const (
	bitlockerOEMIDOffset = 3
	bitlockerOffsetsOffset = 0x1a8
)

var bitlockerOEMID = "-FVE-FS-"

// BitLockerBootSector holds the fields recovered from the Vista-era
// BitLocker boot sector variant.
type BitLockerBootSector struct {
	BytesPerSector     uint16
	SectorsPerCluster  uint8
	VolumeSizeSectors  uint64
	FVEMetadataOffsets [3]uint64
}

// ParseBitLockerBootSector decodes a Vista BitLocker boot sector: same BPB
// geometry fields as NTFS at the same offsets, but the OEM id reads
// "-FVE-FS-" and the three metadata offsets sit at a fixed position rather
// than behind a GUID marker.
func ParseBitLockerBootSector(data []byte) (*BitLockerBootSector, error) {
	if len(data) < bootSectorSize {
		return nil, fmt.Errorf("bitlocker boot sector: buffer too short (%d bytes, want %d)", len(data), bootSectorSize)
	}
	oem := string(data[bitlockerOEMIDOffset : bitlockerOEMIDOffset+8])
	if oem != bitlockerOEMID {
		return nil, fmt.Errorf("bitlocker boot sector: unexpected OEM id %q, want %q", oem, bitlockerOEMID)
	}

	r := types.NewBinaryReader(data)
	if err := r.Seek(0x0b); err != nil {
		return nil, err
	}
	bytesPerSector, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("bitlocker boot sector: bytes per sector: %w", err)
	}
	sectorsPerCluster, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("bitlocker boot sector: sectors per cluster: %w", err)
	}
	if err := r.Seek(0x28); err != nil {
		return nil, err
	}
	volumeSizeSectors, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("bitlocker boot sector: volume size: %w", err)
	}

	bs := &BitLockerBootSector{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		VolumeSizeSectors: volumeSizeSectors,
	}

	if err := r.Seek(bitlockerOffsetsOffset); err != nil {
		return nil, err
	}
	for i := 0; i < 3; i++ {
		off, err := r.ReadUint64()
		if err != nil {
			return nil, fmt.Errorf("bitlocker boot sector: fve offset %d: %w", i, err)
		}
		bs.FVEMetadataOffsets[i] = off
	}

	return bs, nil
}

// VolumeSizeBytes returns the volume size in bytes.
func (b *BitLockerBootSector) VolumeSizeBytes() uint64 {
	return b.VolumeSizeSectors * uint64(b.BytesPerSector)
}
