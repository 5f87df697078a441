package bytesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileReadAtAndSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.img")
	content := []byte("0123456789abcdef")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, int64(len(content)), src.Size())

	buf := make([]byte, 4)
	n, err := src.ReadAt(buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "6789", string(buf))
}

func TestOpenFileMissingReturnsError(t *testing.T) {
	_, err := OpenFile("/nonexistent/path/does/not/exist.img")
	assert.Error(t, err)
}

func TestNewFileWrapsOpenHandle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "volume.img")
	content := []byte("hello world")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src := NewFile(f, int64(len(content)))
	buf := make([]byte, 5)
	n, err := src.ReadAt(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}
