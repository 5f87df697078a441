// Package bde provides read-only access to volumes encrypted with
// BitLocker Drive Encryption: locating and parsing the redundant FVE
// metadata, unwrapping the Volume Master Key and Full Volume Encryption
// Key from a supplied credential, and exposing the decrypted volume as a
// seekable byte stream (spec.md §1).
package bde

import (
	"fmt"
	"sync/atomic"

	"github.com/deploymenttheory/go-bde/pkg/bytesource"
	"github.com/deploymenttheory/go-bde/pkg/metadata"
	"github.com/deploymenttheory/go-bde/pkg/ntfs"
	"github.com/deploymenttheory/go-bde/pkg/sector"
	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/deploymenttheory/go-bde/pkg/unwrap"
	"github.com/deploymenttheory/go-bde/pkg/volume"
)

// Volume is the top-level handle this library exposes (spec.md §3): the
// underlying byte source, the selected FVE metadata, the unlock state
// machine, and (once unlocked) the FVEK and virtual volume. A Volume is
// not safe for concurrent read calls (spec.md §5) but distinct Volume
// handles are fully independent.
type Volume struct {
	cfg *config
	src bytesource.ByteSource

	bootSector         *ntfs.BootSector
	bitlockerBootSector *ntfs.BitLockerBootSector
	selectedBlock      *metadata.Block
	vmks               []*metadata.VMK
	fvek               *metadata.FVEK

	state      types.UnlockState
	credential *unwrap.Credential
	abort      atomic.Bool

	virtual *volume.VirtualVolume
}

// Open parses a volume's NTFS/BitLocker boot sector and FVE metadata,
// returning a Volume in the Opened (locked) state (spec.md §4.H). src is
// borrowed for the Volume's lifetime; the caller retains ownership and
// must not close it before calling Close.
func Open(src bytesource.ByteSource, opts ...Option) (*Volume, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	v := &Volume{cfg: cfg, src: src, state: types.StateClosed}

	bootSectorBuf := make([]byte, 512)
	if _, err := src.ReadAt(bootSectorBuf, 0); err != nil {
		return nil, types.WrapError(types.ErrKindIoError, "bde.Open", "read boot sector", err)
	}

	var fveOffsets [3]uint64
	if bs, err := ntfs.ParseBootSector(bootSectorBuf); err == nil && bs.IsBitLockerVolume {
		v.bootSector = bs
		fveOffsets = bs.FVEMetadataOffsets
	} else if bls, err := ntfs.ParseBitLockerBootSector(bootSectorBuf); err == nil {
		v.bitlockerBootSector = bls
		fveOffsets = bls.FVEMetadataOffsets
	} else {
		return nil, types.NewError(types.ErrKindMetadataCorrupt, "bde.Open", "neither NTFS nor BitLocker boot sector signature recognized")
	}

	blocks, err := metadata.Discover(src, fveOffsets, cfg.logger)
	if err != nil {
		return nil, err
	}
	selected := metadata.Select(blocks)
	v.selectedBlock = selected

	vmkEntries := metadata.AllByType(selected.Entries, types.EntryTypeVMK)
	for _, e := range vmkEntries {
		vmk, err := metadata.ParseVMKEntry(e, cfg.logger)
		if err != nil {
			cfg.logger.Warnf("bde.Open: skipping unparseable vmk entry: %v", err)
			continue
		}
		v.vmks = append(v.vmks, vmk)
	}

	if fvekEntry, ok := metadata.FindByType(selected.Entries, types.EntryTypeFVEK); ok {
		fvek, err := metadata.ParseFVEKEntry(fvekEntry)
		if err != nil {
			return nil, fmt.Errorf("bde.Open: parse fvek entry: %w", err)
		}
		v.fvek = fvek
	} else {
		return nil, types.NewError(types.ErrKindMetadataCorrupt, "bde.Open", "no full_volume_encryption_key entry found")
	}

	v.state = types.StateOpened
	return v, nil
}

// volumeSizeBytes returns the encrypted volume size recorded in the
// selected metadata block header.
func (v *Volume) volumeSizeBytes() uint64 {
	return v.selectedBlock.BlockHeader.VolumeSize
}

// metadataRegions returns the on-disk byte ranges occupied by the given
// metadata blocks. Unlock passes only the selected block, so the other
// discovered copies are not carved out of the region map and fall within
// encrypted regions.
func (v *Volume) metadataRegions(blocks []*metadata.Block) []types.Region {
	var regions []types.Region
	for _, b := range blocks {
		size := uint64(metadata.BlockHeaderSize+metadata.HeaderSize) + uint64(b.Header.DatasetSize)
		regions = append(regions, types.Region{
			Start: b.SourceOffset,
			End:   b.SourceOffset + size,
			Tag:   types.RegionMetadataBlock,
		})
	}
	return regions
}

// Close zeroes the wrapped-key ciphertext of the parsed VMK and FVEK
// entries, drops the virtual volume, and returns the Volume to the Closed
// state (spec.md §4.H, §5). The unwrapped FVEK bytes held by the dropped
// virtual volume are not overwritten.
func (v *Volume) Close() error {
	for _, vmk := range v.vmks {
		if vmk.WrappedKey != nil {
			zero(vmk.WrappedKey.Ciphertext)
		}
	}
	if v.fvek != nil && v.fvek.WrappedKey != nil {
		zero(v.fvek.WrappedKey.Ciphertext)
	}
	v.state = types.StateClosed
	v.virtual = nil
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// sectorKeyFromUnwrap builds a sector.Key from an unwrap.Result's FVEK
// material.
func sectorKeyFromUnwrap(r *unwrap.Result) sector.Key {
	return sector.Key{
		Method:   r.FVEK.InferredMethod,
		Cipher:   r.FVEK.Key,
		TweakKey: r.FVEK.TweakKey,
	}
}
