package types

import (
	"fmt"

	"github.com/google/uuid"
)

// GUID is a 16-byte Microsoft GUID as stored on disk: the first three fields
// (a uint32, two uint16s) are little-endian, the remaining 8 bytes are an
// opaque big-endian byte string. This differs from github.com/google/uuid's
// own RFC 4122 big-endian-throughout layout, so GUID converts through it
// rather than embedding it directly.
type GUID [16]byte

// String formats the GUID in the usual 8-4-4-4-12 hyphenated form.
func (g GUID) String() string {
	return g.toUUID().String()
}

// IsZero reports whether every byte of the GUID is zero.
func (g GUID) IsZero() bool {
	return g == GUID{}
}

// Equal reports whether two GUIDs hold the same value.
func (g GUID) Equal(other GUID) bool {
	return g == other
}

func (g GUID) toUUID() uuid.UUID {
	var u uuid.UUID
	// Swap the little-endian leading fields into RFC 4122 big-endian order.
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:16])
	return u
}

func guidFromUUID(u uuid.UUID) GUID {
	var g GUID
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:16], u[8:])
	return g
}

// ParseGUID parses a hyphenated GUID string such as
// "3f34a2b1-7c9d-4e11-9a3c-0123456789ab" into its on-disk byte layout.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("parse guid %q: %w", s, err)
	}
	return guidFromUUID(u), nil
}

// NewRandomGUID generates a random (v4) GUID, useful for tests needing a
// plausible volume/protector identifier without a real disk image.
func NewRandomGUID() GUID {
	return guidFromUUID(uuid.New())
}
