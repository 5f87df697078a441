// Package bytesource defines the minimal random-access byte source this
// system reads volumes through, and a convenience implementation over a
// plain file. Split-image and raw-device backed sources are external
// collaborators (spec.md §1) that satisfy the same interface.
package bytesource

// ByteSource is the consumed-collaborator interface every component in this
// module reads volume bytes through (spec.md §6): a random-access range
// read plus a total size, deliberately narrower than io.ReaderAt so a
// caller backing onto a split VHD/E01 image set need not expose anything
// else.
type ByteSource interface {
	// ReadAt reads len(p) bytes starting at offset off into p, returning
	// the number of bytes read. It follows io.ReaderAt's contract: a short
	// read is always accompanied by a non-nil error.
	ReadAt(p []byte, off int64) (int, error)

	// Size returns the total addressable size of the source in bytes.
	Size() int64
}
