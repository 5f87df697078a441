package volume

import (
	"sort"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// unencryptedTailSize is the size of the last-4096-bytes region some
// observed Windows volumes leave out of the encrypted range (spec.md §9
// Open Question; SPEC_FULL.md §4.G). It is applied conditionally, not
// unconditionally, via the NTFSShadow.HasUnencryptedTail flag below.
const unencryptedTailSize = 4096

// NTFSShadow describes how the NTFS boot region relates to the logical
// address space (spec.md §4.G): on Vista, the original boot sectors are
// relocated to a backup location and the logical range they used to
// occupy is served from there unencrypted; on Windows 7+ the boot sector
// stays in place and is encrypted like any other sector, so no shadow
// carve-out is needed beyond the metadata block regions themselves.
type NTFSShadow struct {
	IsVista             bool
	RelocatedOffset     uint64 // logical offset the relocated range occupies (always 0 in practice)
	RelocatedLength     uint64
	BackupSourceOffset  uint64 // on-disk offset of the relocated plaintext bytes
	HasUnencryptedTail  bool
}

// BuildRegionMap partitions [0, volumeSize) into the region kinds spec.md
// §3/§4.G define, from the discovered metadata block locations/sizes and
// the NTFS shadow description.
func BuildRegionMap(volumeSize uint64, metadataBlocks []types.Region, shadow NTFSShadow) (*types.RegionMap, error) {
	type carve struct {
		start, end uint64
		tag        types.RegionTag
		shadowSrc  uint64
	}

	var carves []carve
	for _, b := range metadataBlocks {
		carves = append(carves, carve{start: b.Start, end: b.End, tag: types.RegionMetadataBlock})
	}
	if shadow.IsVista && shadow.RelocatedLength > 0 {
		carves = append(carves, carve{
			start:     shadow.RelocatedOffset,
			end:       shadow.RelocatedOffset + shadow.RelocatedLength,
			tag:       types.RegionPlaintextShadow,
			shadowSrc: shadow.BackupSourceOffset,
		})
	}
	if shadow.HasUnencryptedTail && volumeSize > unencryptedTailSize {
		carves = append(carves, carve{start: volumeSize - unencryptedTailSize, end: volumeSize, tag: types.RegionUnencryptedTail})
	}

	sort.Slice(carves, func(i, j int) bool { return carves[i].start < carves[j].start })

	var regions []types.Region
	cursor := uint64(0)
	for _, c := range carves {
		if c.start < cursor {
			continue // overlapping carve already covered by a prior, earlier-starting region
		}
		if c.start > cursor {
			regions = append(regions, types.Region{Start: cursor, End: c.start, Tag: types.RegionEncrypted})
		}
		regions = append(regions, types.Region{Start: c.start, End: c.end, Tag: c.tag, ShadowSourceOffset: c.shadowSrc})
		cursor = c.end
	}
	if cursor < volumeSize {
		regions = append(regions, types.Region{Start: cursor, End: volumeSize, Tag: types.RegionEncrypted})
	}

	return types.NewRegionMap(regions)
}
