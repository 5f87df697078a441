package metadata

import (
	"fmt"
	"time"

	"github.com/deploymenttheory/go-bde/pkg/types"
)

const headerSize = 48

// Header is the FVE metadata header that immediately follows the
// BlockHeader within each metadata block (spec.md §3): overall metadata
// size, version, the volume identifier GUID, the creation timestamp, the
// nonce counter consumed by AES-CCM wrap operations, and the size of the
// entry dataset that follows.
type Header struct {
	MetadataSize     uint32
	Version          uint16
	VolumeIdentifier types.GUID
	NextNonceCounter uint64
	Created          time.Time
	DatasetSize      uint32
}

// ParseHeader decodes a Header from the start of buf (immediately after
// the BlockHeader).
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < headerSize {
		return nil, fmt.Errorf("metadata header: buffer too short (%d bytes, want %d)", len(buf), headerSize)
	}
	r := types.NewBinaryReader(buf)
	metadataSize, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read size: %w", err)
	}
	version, err := r.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read version: %w", err)
	}
	if err := r.Skip(2); err != nil { // reserved
		return nil, err
	}
	volumeID, err := r.ReadGUID()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read volume identifier: %w", err)
	}
	nonceCounter, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read nonce counter: %w", err)
	}
	createdFiletime, err := r.ReadUint64()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read creation time: %w", err)
	}
	datasetSize, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("metadata header: read dataset size: %w", err)
	}
	if err := r.Skip(4); err != nil { // reserved
		return nil, err
	}

	if version != 1 && version != 2 {
		return nil, types.NewError(types.ErrKindUnsupportedVersion, "metadata.ParseHeader", fmt.Sprintf("version %d", version))
	}

	return &Header{
		MetadataSize:     metadataSize,
		Version:          version,
		VolumeIdentifier: volumeID,
		NextNonceCounter: nonceCounter,
		Created:          types.FiletimeToTime(createdFiletime),
		DatasetSize:      datasetSize,
	}, nil
}

// HeaderSize is the fixed on-disk size of a Header.
const HeaderSize = headerSize

// BlockHeaderSize is the fixed on-disk size of a BlockHeader.
const BlockHeaderSize = blockHeaderSize
