package fog

import (
	"math/bits"

	"github.com/eak1mov/go-fogmap/fog/spec"
	"github.com/eak1mov/go-fogmap/geo"
)

// BlockKey addresses a block inside a tile, in block units (0..127).
type BlockKey struct {
	X int
	Y int
}

// Block is a 64x64 one-bit visitation bitmap plus 3 bytes of packed
// metadata (region code and cached visited-pixel count). Blocks are
// immutable values; every mutating operation returns a new Block or nil.
// The bitmap is packed 8 pixels per byte, most significant bit first,
// row-major with 8 bytes per row.
type Block struct {
	x      int
	y      int
	bitmap [spec.BitmapLength]byte
	meta   [spec.MetaLength]byte
}

// NewBlock creates a block at the given local coordinates. A nil record
// zero-fills the bitmap; otherwise record must hold a full 515-byte block
// record (512 bitmap bytes + 3 metadata bytes).
func NewBlock(x, y int, record []byte) *Block {
	b := &Block{x: x, y: y}
	if record != nil {
		if len(record) < spec.BlockRecordLength {
			panic("fogmap: short block record")
		}
		copy(b.bitmap[:], record[:spec.BitmapLength])
		copy(b.meta[:], record[spec.BitmapLength:spec.BlockRecordLength])
	}
	return b
}

func (b *Block) X() int { return b.x }
func (b *Block) Y() int { return b.y }

// IsVisited reports whether the pixel at block-local (x, y) is set.
func (b *Block) IsVisited(x, y int) bool {
	return b.bitmap[y<<3|x>>3]&(0x80>>(x&7)) != 0
}

// Count returns the visited pixel count cached in the metadata field.
// It is not recomputed; see Dump and Check.
func (b *Block) Count() int {
	return spec.DecodeVisitedCount(b.meta)
}

// Region returns the two-letter region code stored in the metadata.
func (b *Block) Region() string {
	return spec.DecodeRegion(b.meta)
}

// Check recomputes the true popcount of the bitmap and compares it against
// the stored count. A mismatch is a non-fatal integrity diagnostic.
func (b *Block) Check() bool {
	return b.Count() == b.popcount()
}

// Dump recomputes the checksum field and returns the raw 515-byte block
// record. It must be used when persisting, since edits do not keep the
// stored count in sync.
func (b *Block) Dump() []byte {
	meta := spec.WithVisitedCount(b.meta, b.popcount())
	record := make([]byte, spec.BlockRecordLength)
	copy(record, b.bitmap[:])
	copy(record[spec.BitmapLength:], meta[:])
	return record
}

// ClearRect clears the w*h pixel rectangle at block-local (x, y). It
// returns the receiver unchanged if no pixel was set there, a new Block
// otherwise, or nil if the result has no set bits.
func (b *Block) ClearRect(x, y, w, h int) *Block {
	result := b
	for py := max(0, y); py < min(geo.BlockWidth, y+h); py++ {
		for px := max(0, x); px < min(geo.BlockWidth, x+w); px++ {
			index := py<<3 | px>>3
			mask := byte(0x80) >> (px & 7)
			if result.bitmap[index]&mask == 0 {
				continue
			}
			if result == b {
				clone := *b
				result = &clone
			}
			result.bitmap[index] &^= mask
		}
	}
	if result == b {
		return b
	}
	if result.popcount() == 0 {
		return nil
	}
	return result
}

func (b *Block) popcount() int {
	count := 0
	for _, v := range b.bitmap {
		count += bits.OnesCount8(v)
	}
	return count
}

// union returns a block whose bitmap is the bitwise OR of both bitmaps,
// keeping the receiver's metadata. Returns the receiver if other adds
// no pixels.
func (b *Block) union(other *Block) *Block {
	result := b
	for i, v := range other.bitmap {
		if b.bitmap[i]|v == b.bitmap[i] {
			continue
		}
		if result == b {
			clone := *b
			result = &clone
		}
		result.bitmap[i] |= v
	}
	return result
}

// sameBits reports whether both blocks hold identical bitmap and metadata.
func (b *Block) sameBits(other *Block) bool {
	return b.bitmap == other.bitmap && b.meta == other.meta
}

// addLine runs the Bresenham stepper inside this block starting at
// block-local (x, y), drawing or erasing pixels until the line ends
// (dominant axis passes e, in block-local coordinates) or the cursor
// leaves the block. It returns the updated block (nil if erasing emptied
// it), the exit coordinates and the error term, so the caller can resume
// the identical algorithm state in the neighboring block.
func (b *Block) addLine(x, y, e, p, dx0, dy0 int, xAxis, quadrant13, value bool) (*Block, int, int, int) {
	result := b
	plot := func(px, py int) {
		index := py<<3 | px>>3
		mask := byte(0x80) >> (px & 7)
		if (result.bitmap[index]&mask != 0) == value {
			return
		}
		if result == b {
			clone := *b
			result = &clone
		}
		if value {
			result.bitmap[index] |= mask
		} else {
			result.bitmap[index] &^= mask
		}
	}
	nx, ny, np := stepLine(geo.BlockWidth, x, y, e, p, dx0, dy0, xAxis, quadrant13, plot)
	if result != b && !value && result.popcount() == 0 {
		return nil, nx, ny, np
	}
	return result, nx, ny, np
}
