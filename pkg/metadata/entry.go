package metadata

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

// entryHeaderSize is the fixed 8-byte {size, type, value_type, version}
// header every metadata entry carries (spec.md §3/§4.D), regardless of
// nesting depth.
const entryHeaderSize = 8

// Entry is a single tagged, variable-length metadata dataset record.
// Unrecognized Type/ValueType values are preserved with their raw Payload
// rather than rejected, per the forward-compatibility goal in spec.md §7.
type Entry struct {
	Size      uint16
	Type      types.EntryType
	ValueType types.ValueType
	Version   uint16
	Payload   []byte
}

// ReadEntries walks a flat sequence of entries out of buf, stopping when
// every byte has been consumed or a zero-size entry is encountered (which
// spec.md §4.D treats as the malformed end-of-dataset marker, not an
// error: some real datasets pad their last entry's trailing region with
// zeros). It is used both for the top-level metadata dataset and for any
// entry's nested payload (VMK sub-entries, unwrapped VMK/FVEK plaintext).
func ReadEntries(buf []byte) ([]Entry, error) {
	var entries []Entry
	off := 0
	for off < len(buf) {
		if len(buf)-off < entryHeaderSize {
			return nil, fmt.Errorf("metadata entry: truncated header at offset %d (%d bytes remain)", off, len(buf)-off)
		}
		r := types.NewBinaryReader(buf[off:])
		size, err := r.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("metadata entry: read size: %w", err)
		}
		if size == 0 {
			break
		}
		if size < entryHeaderSize {
			return nil, fmt.Errorf("metadata entry: size %d smaller than header at offset %d", size, off)
		}
		if int(size) > len(buf)-off {
			return nil, fmt.Errorf("metadata entry: size %d exceeds remaining %d bytes at offset %d", size, len(buf)-off, off)
		}
		entryType, err := r.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("metadata entry: read type: %w", err)
		}
		valueType, err := r.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("metadata entry: read value type: %w", err)
		}
		version, err := r.ReadUint16()
		if err != nil {
			return nil, fmt.Errorf("metadata entry: read version: %w", err)
		}
		payload, err := r.ReadBytes(int(size) - entryHeaderSize)
		if err != nil {
			return nil, fmt.Errorf("metadata entry: read payload: %w", err)
		}
		entries = append(entries, Entry{
			Size:      size,
			Type:      types.EntryType(entryType),
			ValueType: types.ValueType(valueType),
			Version:   version,
			Payload:   payload,
		})
		off += int(size)
	}
	return entries, nil
}

// FindByType returns the first entry of the given type, if any.
func FindByType(entries []Entry, t types.EntryType) (Entry, bool) {
	for _, e := range entries {
		if e.Type == t {
			return e, true
		}
	}
	return Entry{}, false
}

// AllByType returns every entry of the given type, in dataset order.
func AllByType(entries []Entry, t types.EntryType) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
