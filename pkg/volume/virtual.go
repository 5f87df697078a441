package volume

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/bytesource"
	"github.com/deploymenttheory/go-bde/pkg/cryptoprovider"
	"github.com/deploymenttheory/go-bde/pkg/sector"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// VirtualVolume presents the decrypted volume as a seekable byte stream
// (spec.md §4.G): it clips reads to the volume bounds, walks the region
// map, decrypts encrypted sectors on demand, and serves plaintext-shadow
// and metadata-block regions straight from their backing bytes.
type VirtualVolume struct {
	src        bytesource.ByteSource
	provider   cryptoprovider.CryptoProvider
	regionMap  *types.RegionMap
	key        sector.Key
	volumeSize uint64
	cache      *sectorCache
}

// NewVirtualVolume builds a VirtualVolume. cacheSize <= 0 disables the
// sector cache (spec.md §8's cache-equivalence property test relies on
// this).
func NewVirtualVolume(src bytesource.ByteSource, provider cryptoprovider.CryptoProvider, regionMap *types.RegionMap, key sector.Key, volumeSize uint64, cacheSize int, logger types.Logger) (*VirtualVolume, error) {
	if logger == nil {
		logger = types.NoopLogger{}
	}
	if key.HasZeroTweakKey() {
		logger.Warnf("volume.NewVirtualVolume: diffuser tweak key is all-zero; reproducing observed decrypt-with-zero-stream behavior rather than rejecting")
	}
	cache, err := newSectorCache(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("virtual volume: %w", err)
	}
	return &VirtualVolume{
		src:        src,
		provider:   provider,
		regionMap:  regionMap,
		key:        key,
		volumeSize: volumeSize,
		cache:      cache,
	}, nil
}

// ReadAt reads len(p) bytes of decrypted volume content starting at
// logical offset off, clipping to [0, volumeSize) (spec.md §4.G point 1,
// §8 boundary behaviours). A read that runs past the end of the volume
// returns the bytes up to volumeSize with a nil error; a read starting at
// or past volumeSize returns an OutOfRange error.
func (v *VirtualVolume) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("virtual volume: negative offset %d", off)
	}
	start := uint64(off)
	if start >= v.volumeSize {
		return 0, fmt.Errorf("virtual volume: offset %d at or past volume size %d: %w", off, v.volumeSize, types.ErrOutOfRange)
	}
	end := start + uint64(len(p))
	if end > v.volumeSize {
		end = v.volumeSize
	}

	total := 0
	cur := start
	for cur < end {
		n, err := v.readWithinOneRegion(p[total:total+int(end-cur)], cur)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		total += n
		cur += uint64(n)
	}
	return total, nil
}

// readWithinOneRegion reads as many bytes as possible starting at offset
// without crossing a region-map boundary, since regions (spec.md §4.F) are
// sector-aligned but may differ in tag/backing across a boundary.
func (v *VirtualVolume) readWithinOneRegion(p []byte, offset uint64) (int, error) {
	region, ok := v.regionMap.Lookup(offset)
	if !ok {
		return 0, fmt.Errorf("virtual volume: offset %d not covered by region map", offset)
	}
	regionRemaining := region.End - offset
	want := uint64(len(p))
	if want > regionRemaining {
		want = regionRemaining
	}

	switch region.Tag {
	case types.RegionPlaintextShadow:
		srcOffset := region.ShadowSourceOffset + (offset - region.Start)
		return v.src.ReadAt(p[:want], int64(srcOffset))

	case types.RegionMetadataBlock, types.RegionUnencryptedTail:
		return v.src.ReadAt(p[:want], int64(offset))

	case types.RegionEncrypted:
		return v.readEncrypted(p[:want], offset)

	default:
		return 0, fmt.Errorf("virtual volume: unrecognized region tag %v", region.Tag)
	}
}

// readEncrypted serves bytes out of the encrypted region, decrypting one
// sector.SectorSize-sized sector at a time and splicing the requested
// slice out of it (spec.md §4.G point 2), consulting/populating the
// sector cache (point 3).
func (v *VirtualVolume) readEncrypted(p []byte, offset uint64) (int, error) {
	sectorOffset := offset - (offset % sector.SectorSize)
	inSectorPos := int(offset - sectorOffset)

	plaintext, ok := v.cache.Get(sectorOffset)
	if !ok {
		ciphertext := make([]byte, sector.SectorSize)
		if _, err := v.src.ReadAt(ciphertext, int64(sectorOffset)); err != nil {
			return 0, fmt.Errorf("virtual volume: read ciphertext at %d: %w", sectorOffset, err)
		}
		var err error
		plaintext, err = sector.DecryptSector(v.provider, v.key, sectorOffset, ciphertext)
		if err != nil {
			return 0, fmt.Errorf("virtual volume: decrypt sector at %d: %w", sectorOffset, err)
		}
		v.cache.Put(sectorOffset, plaintext)
	}

	n := copy(p, plaintext[inSectorPos:])
	return n, nil
}
