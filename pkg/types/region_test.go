package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionMapLookup(t *testing.T) {
	regions := []Region{
		{Start: 0, End: 4096, Tag: RegionPlaintextShadow},
		{Start: 4096, End: 1 << 20, Tag: RegionEncrypted},
		{Start: 1 << 20, End: (1 << 20) + 8192, Tag: RegionMetadataBlock},
	}
	m, err := NewRegionMap(regions)
	require.NoError(t, err)

	r, ok := m.Lookup(0)
	require.True(t, ok)
	assert.Equal(t, RegionPlaintextShadow, r.Tag)

	r, ok = m.Lookup(4095)
	require.True(t, ok)
	assert.Equal(t, RegionPlaintextShadow, r.Tag)

	r, ok = m.Lookup(4096)
	require.True(t, ok)
	assert.Equal(t, RegionEncrypted, r.Tag)

	_, ok = m.Lookup((1 << 20) + 8192)
	assert.False(t, ok, "end offset is exclusive")
}

func TestRegionMapRejectsGap(t *testing.T) {
	_, err := NewRegionMap([]Region{
		{Start: 0, End: 100, Tag: RegionEncrypted},
		{Start: 200, End: 300, Tag: RegionEncrypted},
	})
	assert.Error(t, err)
}

func TestRegionMapRejectsOverlap(t *testing.T) {
	_, err := NewRegionMap([]Region{
		{Start: 0, End: 100, Tag: RegionEncrypted},
		{Start: 50, End: 150, Tag: RegionEncrypted},
	})
	assert.Error(t, err)
}

func TestRegionLenAndContains(t *testing.T) {
	r := Region{Start: 10, End: 20, Tag: RegionEncrypted}
	assert.Equal(t, uint64(10), r.Len())
	assert.True(t, r.Contains(10))
	assert.True(t, r.Contains(19))
	assert.False(t, r.Contains(20))
	assert.False(t, r.Contains(9))
}
