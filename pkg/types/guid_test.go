package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGUIDRoundTrip(t *testing.T) {
	g, err := ParseGUID("3f34a2b1-7c9d-4e11-9a3c-0123456789ab")
	require.NoError(t, err)
	assert.Equal(t, "3f34a2b1-7c9d-4e11-9a3c-0123456789ab", g.String())
}

func TestGUIDIsZero(t *testing.T) {
	var g GUID
	assert.True(t, g.IsZero())

	g2, err := ParseGUID("3f34a2b1-7c9d-4e11-9a3c-0123456789ab")
	require.NoError(t, err)
	assert.False(t, g2.IsZero())
}

func TestGUIDEqual(t *testing.T) {
	a, err := ParseGUID("3f34a2b1-7c9d-4e11-9a3c-0123456789ab")
	require.NoError(t, err)
	b, err := ParseGUID("3f34a2b1-7c9d-4e11-9a3c-0123456789ab")
	require.NoError(t, err)
	c := NewRandomGUID()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestParseGUIDInvalid(t *testing.T) {
	_, err := ParseGUID("not-a-guid")
	assert.Error(t, err)
}
