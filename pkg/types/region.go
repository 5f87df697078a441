package types

import "fmt"

// RegionTag classifies a byte range of the underlying volume for the
// virtual-volume read-through layer (spec.md §3/§4.G).
type RegionTag int

const (
	// RegionEncrypted is sector data covered by the FVEK and the active
	// cipher mode; reads are decrypted on demand.
	RegionEncrypted RegionTag = iota
	// RegionPlaintextShadow is the relocated NTFS boot sector/bootstrap
	// area BitLocker copies out before encrypting the first sectors,
	// served directly without decryption.
	RegionPlaintextShadow
	// RegionMetadataBlock is one of the three redundant FVE metadata
	// blocks, never part of the decrypted address space NTFS sees.
	RegionMetadataBlock
	// RegionUnencryptedTail is the last-4096-bytes region some volumes
	// leave out of the encrypted range (spec.md §9 Open Question).
	RegionUnencryptedTail
)

func (t RegionTag) String() string {
	switch t {
	case RegionEncrypted:
		return "encrypted"
	case RegionPlaintextShadow:
		return "plaintext_shadow"
	case RegionMetadataBlock:
		return "metadata_block"
	case RegionUnencryptedTail:
		return "unencrypted_tail"
	default:
		return "unknown"
	}
}

// Region is a half-open byte range [Start, End) of the volume tagged with
// how the virtual-volume layer must serve reads from it.
type Region struct {
	Start uint64
	End   uint64
	Tag   RegionTag

	// ShadowSourceOffset is meaningful only when Tag is
	// RegionPlaintextShadow: the on-disk offset the relocated plaintext
	// bytes actually live at (spec.md §4.G NTFS shadow handling), read
	// directly with no decryption.
	ShadowSourceOffset uint64
}

func (r Region) Len() uint64 {
	return r.End - r.Start
}

func (r Region) Contains(offset uint64) bool {
	return offset >= r.Start && offset < r.End
}

// RegionMap is an ordered, non-overlapping, gapless partition of
// [0, volume size) built by pkg/volume from metadata and NTFS boot-sector
// information.
type RegionMap struct {
	regions []Region
}

// NewRegionMap builds a RegionMap from regions already sorted by Start,
// validating that they are contiguous and non-overlapping.
func NewRegionMap(regions []Region) (*RegionMap, error) {
	for i := 1; i < len(regions); i++ {
		if regions[i].Start != regions[i-1].End {
			return nil, fmt.Errorf("region map gap/overlap between [%d,%d) and [%d,%d)",
				regions[i-1].Start, regions[i-1].End, regions[i].Start, regions[i].End)
		}
	}
	return &RegionMap{regions: regions}, nil
}

// Lookup returns the region containing offset, if any.
func (m *RegionMap) Lookup(offset uint64) (Region, bool) {
	// Linear scan: region counts are small (a handful of metadata blocks
	// plus the shadow/tail regions), a binary search would add complexity
	// for no measurable benefit.
	for _, r := range m.regions {
		if r.Contains(offset) {
			return r, true
		}
	}
	return Region{}, false
}

// Regions returns the ordered region list.
func (m *RegionMap) Regions() []Region {
	return m.regions
}
