package bytesource

import (
	"fmt"
	"os"
)

// File is a ByteSource backed directly by an *os.File, for callers who
// don't already have a split-image or raw-device abstraction to plug in.
type File struct {
	f     *os.File
	size  int64
	owned bool
}

// OpenFile opens path read-only and wraps it as a ByteSource.
func OpenFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &File{f: f, size: info.Size(), owned: true}, nil
}

// NewFile wraps an already-open file. The caller retains ownership of f
// and must Close it; File.Close is a no-op in this case.
func NewFile(f *os.File, size int64) *File {
	return &File{f: f, size: size}
}

func (s *File) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}

func (s *File) Size() int64 {
	return s.size
}

// Close closes the underlying file if it was opened by OpenFile.
func (s *File) Close() error {
	if !s.owned {
		return nil
	}
	return s.f.Close()
}
