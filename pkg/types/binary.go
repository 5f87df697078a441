// Package types holds the on-disk structure definitions and small binary
// decoding helpers shared by every other bde package.
package types

import (
	"encoding/binary"
	"fmt"
)

// BinaryReader decodes little-endian primitives out of an in-memory buffer.
// Every FVE structure this system parses (metadata blocks, boot sectors,
// dataset entries) is read into memory whole before decoding, so unlike the
// teacher's io.Reader-backed reader this one is backed directly by a slice
// and supports cheap relative seeking for entry-by-entry dataset walks.
type BinaryReader struct {
	buf []byte
	pos int
}

// NewBinaryReader wraps buf for little-endian decoding starting at offset 0.
func NewBinaryReader(buf []byte) *BinaryReader {
	return &BinaryReader{buf: buf}
}

// Len returns the number of unread bytes remaining.
func (r *BinaryReader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the current read offset.
func (r *BinaryReader) Pos() int {
	return r.pos
}

// Seek sets the absolute read offset.
func (r *BinaryReader) Seek(pos int) error {
	if pos < 0 || pos > len(r.buf) {
		return fmt.Errorf("seek offset %d out of range [0,%d]", pos, len(r.buf))
	}
	r.pos = pos
	return nil
}

// Skip advances the read offset by n bytes.
func (r *BinaryReader) Skip(n int) error {
	return r.Seek(r.pos + n)
}

func (r *BinaryReader) need(n int) error {
	if n < 0 || r.pos+n > len(r.buf) {
		return fmt.Errorf("short read: need %d bytes at offset %d, have %d", n, r.pos, r.Len())
	}
	return nil
}

// ReadUint8 reads a single byte.
func (r *BinaryReader) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads a little-endian uint16.
func (r *BinaryReader) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *BinaryReader) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (r *BinaryReader) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads n raw bytes, copied out of the underlying buffer so callers
// may mutate the result without corrupting subsequent reads.
func (r *BinaryReader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// PeekBytes returns the next n bytes without advancing the read offset.
func (r *BinaryReader) PeekBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	return out, nil
}

// ReadGUID reads a 16-byte Microsoft-encoded GUID.
func (r *BinaryReader) ReadGUID() (GUID, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return GUID{}, err
	}
	var g GUID
	copy(g[:], b)
	return g, nil
}

// PutUint64 writes a little-endian uint64 into dst at offset 0. Used by
// components (stretch-key state, sector IV derivation) that build small
// fixed-size blocks rather than streaming output.
func PutUint64(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// PutUint32 writes a little-endian uint32 into dst at offset 0.
func PutUint32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}
