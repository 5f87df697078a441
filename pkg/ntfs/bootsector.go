// Package ntfs parses the NTFS boot sector and its Vista-era BitLocker
// variant far enough to recover the geometry (sectors per cluster, volume
// size) and vendor-reserved FVE-metadata-offset fields that pkg/metadata
// and pkg/volume need (spec.md §4.C).
package ntfs

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

const (
	bootSectorSize  = 512
	ntfsOEMID       = "NTFS    "
	oemIDOffset     = 3
	bootSectorSig   = 0xaa55
	bootSectorSigOff = 510
)

// BootSector holds the geometry fields this system needs out of an NTFS
// boot sector (spec.md §4.C): bytes per sector, sectors per cluster, and
// the total volume size.
type BootSector struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	VolumeSizeSectors uint64

	// FVEMetadataOffsets are the three FVE metadata block offsets recorded
	// in the Windows 7+ (version 2) vendor-reserved field at byte 0x1a0,
	// valid only when IsBitLockerVolume is true.
	FVEMetadataOffsets [3]uint64
	IsBitLockerVolume  bool
}

// version2GUIDOffset is where Windows 7+ overwrites the NTFS boot sector's
// normally-unused bytes with the BitLocker identifying GUID, followed
// immediately by the three metadata block offsets.
const (
	version2GUIDOffset    = 0x1a0
	version2OffsetsOffset = 0x1b0
)

// bitlockerGUID is the fixed GUID Windows 7+ stamps into the NTFS boot
// sector to mark a volume as BitLocker-protected:
// 4967d63b-2e29-4ad8-8399-f6a339e3d001.
var bitlockerGUID = types.GUID{
	0x3b, 0xd6, 0x67, 0x49, 0x29, 0x2e, 0xd8, 0x4a,
	0x83, 0x99, 0xf6, 0xa3, 0x39, 0xe3, 0xd0, 0x01,
}

// ParseBootSector decodes a 512-byte NTFS boot sector. It does not require
// the standard end-of-sector 0x55AA signature to be present, since some
// captured images truncate or redact trailing bytes; callers that need the
// stricter check can inspect it themselves via the raw buffer.
func ParseBootSector(data []byte) (*BootSector, error) {
	if len(data) < bootSectorSize {
		return nil, fmt.Errorf("ntfs boot sector: buffer too short (%d bytes, want %d)", len(data), bootSectorSize)
	}
	oem := string(data[oemIDOffset : oemIDOffset+8])
	if oem != ntfsOEMID {
		return nil, fmt.Errorf("ntfs boot sector: unexpected OEM id %q, want %q", oem, ntfsOEMID)
	}

	r := types.NewBinaryReader(data)
	if err := r.Seek(0x0b); err != nil {
		return nil, err
	}
	bytesPerSector, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("ntfs boot sector: bytes per sector: %w", err)
	}
	sectorsPerCluster, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("ntfs boot sector: sectors per cluster: %w", err)
	}
	if err := r.Seek(0x28); err != nil {
		return nil, err
	}
	volumeSizeSectors, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("ntfs boot sector: volume size: %w", err)
	}

	bs := &BootSector{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		VolumeSizeSectors: volumeSizeSectors,
	}

	if len(data) >= version2OffsetsOffset+24 {
		var g types.GUID
		copy(g[:], data[version2GUIDOffset:version2GUIDOffset+16])
		if g.Equal(bitlockerGUID) {
			bs.IsBitLockerVolume = true
			if err := r.Seek(version2OffsetsOffset); err != nil {
				return nil, err
			}
			for i := 0; i < 3; i++ {
				off, err := r.ReadUint64()
				if err != nil {
					return nil, fmt.Errorf("ntfs boot sector: fve offset %d: %w", i, err)
				}
				bs.FVEMetadataOffsets[i] = off
			}
		}
	}

	return bs, nil
}

// VolumeSizeBytes returns the volume size in bytes.
func (b *BootSector) VolumeSizeBytes() uint64 {
	return b.VolumeSizeSectors * uint64(b.BytesPerSector)
}
