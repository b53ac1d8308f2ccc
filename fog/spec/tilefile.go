package spec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/eak1mov/go-fogmap/geo"
)

const (
	// BitmapLength is the number of bitmap bytes per block record.
	BitmapLength = geo.BlockWidth * geo.BlockWidth / 8 // 512
	// BlockRecordLength is bitmap plus metadata.
	BlockRecordLength = BitmapLength + MetaLength // 515

	// HeaderSlots is the number of uint16 slots in the tile file header,
	// one per block position, indexed blockX + blockY*128.
	HeaderSlots = geo.TileWidth * geo.TileWidth // 16384
	// HeaderLength is the byte length of the header area.
	HeaderLength = HeaderSlots * 2
)

var ErrInvalidTileFile = errors.New("invalid tile file")

// SerializeTileFile builds a compressed tile file from block records keyed
// by grid index (blockX + blockY*128). A zero header slot means "no block";
// a nonzero slot N points at the (N-1)-th record in the payload, records
// ordered by ascending grid index.
func SerializeTileFile(records map[int][]byte) ([]byte, error) {
	indexes := make([]int, 0, len(records))
	for index := range records {
		if index < 0 || index >= HeaderSlots {
			return nil, fmt.Errorf("%w: block index %d out of range", ErrInvalidTileFile, index)
		}
		indexes = append(indexes, index)
	}
	slices.Sort(indexes)

	buffer := make([]byte, HeaderLength, HeaderLength+len(indexes)*BlockRecordLength)
	for ordinal, index := range indexes {
		record := records[index]
		if len(record) != BlockRecordLength {
			return nil, fmt.Errorf("%w: block record length %d", ErrInvalidTileFile, len(record))
		}
		binary.LittleEndian.PutUint16(buffer[index*2:], uint16(ordinal+1))
		buffer = append(buffer, record...)
	}

	return Compress(buffer)
}

// DeserializeTileFile is the exact inverse of SerializeTileFile, returning
// block records keyed by grid index.
func DeserializeTileFile(data []byte) (map[int][]byte, error) {
	buffer, err := Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTileFile, err)
	}
	if len(buffer) < HeaderLength {
		return nil, fmt.Errorf("%w: truncated header (%d bytes)", ErrInvalidTileFile, len(buffer))
	}

	records := make(map[int][]byte)
	for index := range HeaderSlots {
		slot := binary.LittleEndian.Uint16(buffer[index*2:])
		if slot == 0 {
			continue
		}
		start := HeaderLength + int(slot-1)*BlockRecordLength
		end := start + BlockRecordLength
		if end > len(buffer) {
			return nil, fmt.Errorf("%w: block record %d out of bounds", ErrInvalidTileFile, slot-1)
		}
		records[index] = buffer[start:end]
	}

	return records, nil
}
