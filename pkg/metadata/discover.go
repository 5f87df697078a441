package metadata

import (
	"fmt"

	"github.com/deploymenttheory/go-bde/pkg/bytesource"
	"github.com/deploymenttheory/go-bde/pkg/types"
)

// probeSize is how many bytes are read speculatively at a candidate
// metadata offset before the signature is confirmed and the full
// declared size is read. 64KiB comfortably covers every observed FVE
// metadata block.
const probeSize = 64 * 1024

// Block is one successfully parsed copy of the FVE metadata.
type Block struct {
	BlockHeader *BlockHeader
	Header      *Header
	Entries     []Entry
	SourceOffset uint64
}

// Discover locates and parses the FVE metadata copies reachable from the
// three candidate offsets, following spec.md §4.D: each offset is probed,
// a block with a bad signature is skipped (not fatal), and discovery
// succeeds as long as at least one valid block is found. The offsets
// recorded inside each block are not compared with the candidate offsets
// or with each other.
func Discover(src bytesource.ByteSource, offsets [3]uint64, logger types.Logger) ([]*Block, error) {
	if logger == nil {
		logger = types.NoopLogger{}
	}
	var blocks []*Block
	var lastErr error
	for _, off := range offsets {
		b, err := readBlockAt(src, off, logger)
		if err != nil {
			lastErr = err
			continue
		}
		blocks = append(blocks, b)
	}
	if len(blocks) == 0 {
		if lastErr != nil {
			return nil, types.WrapError(types.ErrKindMetadataCorrupt, "metadata.Discover", "no valid FVE metadata block found", lastErr)
		}
		return nil, types.NewError(types.ErrKindMetadataCorrupt, "metadata.Discover", "no valid FVE metadata block found")
	}
	return blocks, nil
}

func readBlockAt(src bytesource.ByteSource, offset uint64, logger types.Logger) (*Block, error) {
	probe := make([]byte, probeSize)
	n, err := src.ReadAt(probe, int64(offset))
	if err != nil && n == 0 {
		return nil, fmt.Errorf("read probe at offset %d: %w", offset, err)
	}
	probe = probe[:n]

	bh, err := ParseBlockHeader(probe)
	if err != nil {
		return nil, fmt.Errorf("offset %d: %w", offset, err)
	}

	hdr, err := ParseHeader(probe[BlockHeaderSize:])
	if err != nil {
		return nil, fmt.Errorf("offset %d: %w", offset, err)
	}

	datasetStart := BlockHeaderSize + HeaderSize
	datasetEnd := datasetStart + int(hdr.DatasetSize)
	if datasetEnd > len(probe) {
		// Re-read with a buffer sized to the declared dataset.
		full := make([]byte, datasetEnd)
		if _, err := src.ReadAt(full, int64(offset)); err != nil {
			return nil, fmt.Errorf("offset %d: read full block: %w", offset, err)
		}
		probe = full
	}

	entries, err := ReadEntries(probe[datasetStart:datasetEnd])
	if err != nil {
		return nil, fmt.Errorf("offset %d: dataset: %w", offset, err)
	}
	for _, e := range entries {
		if !e.Type.IsKnown() {
			logger.Warnf("metadata.readBlockAt: offset %d: unrecognized entry type %#x, preserving raw payload", offset, uint16(e.Type))
		}
	}

	return &Block{
		BlockHeader:  bh,
		Header:       hdr,
		Entries:      entries,
		SourceOffset: offset,
	}, nil
}

// Select applies the tie-break rule from spec.md §4.D: prefer the block
// whose metadata header carries the highest nonce counter; on ties,
// prefer the block at the earliest source offset.
func Select(blocks []*Block) *Block {
	best := blocks[0]
	for _, b := range blocks[1:] {
		if b.Header.NextNonceCounter > best.Header.NextNonceCounter {
			best = b
			continue
		}
		if b.Header.NextNonceCounter == best.Header.NextNonceCounter && b.SourceOffset < best.SourceOffset {
			best = b
		}
	}
	return best
}
