package metadata

import (
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-bde/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeEntry(entryType, valueType uint16, payload []byte) []byte {
	size := entryHeaderSize + len(payload)
	buf := make([]byte, size)
	binary.LittleEndian.PutUint16(buf[0:], uint16(size))
	binary.LittleEndian.PutUint16(buf[2:], entryType)
	binary.LittleEndian.PutUint16(buf[4:], valueType)
	binary.LittleEndian.PutUint16(buf[6:], 1) // version
	copy(buf[8:], payload)
	return buf
}

func TestReadEntriesWalksSequence(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeEntry(0x0002, 0x0008, []byte("first"))...)
	buf = append(buf, encodeEntry(0x0003, 0x0005, []byte("second-payload"))...)

	entries, err := ReadEntries(buf)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, types.EntryType(0x0002), entries[0].Type)
	assert.Equal(t, []byte("first"), entries[0].Payload)
	assert.Equal(t, types.EntryType(0x0003), entries[1].Type)
	assert.Equal(t, []byte("second-payload"), entries[1].Payload)
}

func TestReadEntriesStopsAtZeroSize(t *testing.T) {
	buf := encodeEntry(0x0002, 0x0008, []byte("x"))
	buf = append(buf, make([]byte, 16)...) // trailing zero padding

	entries, err := ReadEntries(buf)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadEntriesRejectsTruncatedHeader(t *testing.T) {
	_, err := ReadEntries([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestReadEntriesRejectsOversizedEntry(t *testing.T) {
	buf := encodeEntry(0x0002, 0x0008, []byte("short"))
	binary.LittleEndian.PutUint16(buf[0:], 0xffff)
	_, err := ReadEntries(buf)
	assert.Error(t, err)
}

func TestFindByTypeAndAllByType(t *testing.T) {
	var buf []byte
	buf = append(buf, encodeEntry(0x0002, 0x0008, []byte("vmk1"))...)
	buf = append(buf, encodeEntry(0x0002, 0x0008, []byte("vmk2"))...)
	buf = append(buf, encodeEntry(0x0003, 0x0005, []byte("fvek"))...)

	entries, err := ReadEntries(buf)
	require.NoError(t, err)

	fvek, ok := FindByType(entries, types.EntryTypeFVEK)
	require.True(t, ok)
	assert.Equal(t, []byte("fvek"), fvek.Payload)

	vmks := AllByType(entries, types.EntryTypeVMK)
	assert.Len(t, vmks, 2)

	_, ok = FindByType(entries, types.EntryTypeDescription)
	assert.False(t, ok)
}
