package fog

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/eak1mov/go-fogmap/fog/spec"
	"github.com/eak1mov/go-fogmap/geo"
)

// TileKey addresses a tile on the 512x512 world grid.
type TileKey struct {
	X int
	Y int
}

// ID returns the integer tile id used by the filename codec.
func (k TileKey) ID() int {
	return k.Y*geo.MapWidth + k.X
}

// Tile is a sparse 128x128 grid of blocks with a derived obfuscated
// filename. Tiles are immutable; mutating operations return a new Tile,
// the receiver when nothing changed, or nil when every block was removed.
type Tile struct {
	x        int
	y        int
	filename string
	blocks   map[BlockKey]*Block
}

func newTile(x, y int) *Tile {
	return &Tile{
		x:        x,
		y:        y,
		filename: spec.EncodeTileFilename(TileKey{X: x, Y: y}.ID()),
		blocks:   make(map[BlockKey]*Block),
	}
}

// CreateTile parses a serialized tile file, recovering the tile position
// from its filename. Blocks that decode to zero set pixels are dropped, so
// a freshly imported tile contains only blocks with at least one set bit.
func CreateTile(filename string, data []byte) (*Tile, error) {
	id, err := spec.DecodeTileFilename(filename)
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= geo.MapWidth*geo.MapWidth {
		return nil, fmt.Errorf("%w: tile id %d out of range", spec.ErrInvalidFilename, id)
	}

	records, err := spec.DeserializeTileFile(data)
	if err != nil {
		return nil, err
	}

	t := &Tile{
		x:        id % geo.MapWidth,
		y:        id / geo.MapWidth,
		filename: filename,
		blocks:   make(map[BlockKey]*Block, len(records)),
	}
	for index, record := range records {
		bx, by := index%geo.TileWidth, index/geo.TileWidth
		b := NewBlock(bx, by, record)
		if b.popcount() == 0 {
			continue
		}
		t.blocks[BlockKey{X: bx, Y: by}] = b
	}
	return t, nil
}

// Dump serializes the tile into the compressed on-disk tile file format.
func (t *Tile) Dump() ([]byte, error) {
	records := make(map[int][]byte, len(t.blocks))
	for key, b := range t.blocks {
		records[key.Y*geo.TileWidth+key.X] = b.Dump()
	}
	return spec.SerializeTileFile(records)
}

func (t *Tile) Filename() string { return t.filename }

func (t *Tile) Key() TileKey { return TileKey{X: t.x, Y: t.y} }

func (t *Tile) BlockCount() int { return len(t.blocks) }

// Block returns the block at key, or nil.
func (t *Tile) Block(key BlockKey) *Block { return t.blocks[key] }

// Blocks iterates the tile's blocks in ascending grid index order.
func (t *Tile) Blocks() iter.Seq2[BlockKey, *Block] {
	return func(yield func(BlockKey, *Block) bool) {
		keys := slices.SortedFunc(maps.Keys(t.blocks), compareBlockKeys)
		for _, key := range keys {
			if !yield(key, t.blocks[key]) {
				return
			}
		}
	}
}

func compareBlockKeys(a, b BlockKey) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}

// intersectingBlocks returns keys of existing blocks overlapping a
// rectangle given in tile-local fractional block units (0..128).
func (t *Tile) intersectingBlocks(xMin, yMin, xMax, yMax float64) []BlockKey {
	bx0 := max(0, int(xMin))
	by0 := max(0, int(yMin))
	bx1 := min(geo.TileWidth-1, int(xMax))
	by1 := min(geo.TileWidth-1, int(yMax))

	var keys []BlockKey
	for by := by0; by <= by1; by++ {
		for bx := bx0; bx <= bx1; bx++ {
			key := BlockKey{X: bx, Y: by}
			if _, ok := t.blocks[key]; ok {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// RemoveBlocks removes the listed blocks. It returns the receiver when no
// listed block exists, nil when the tile is emptied, a new Tile otherwise.
func (t *Tile) RemoveBlocks(keys []BlockKey) *Tile {
	var blocks map[BlockKey]*Block
	for _, key := range keys {
		if _, ok := t.blocks[key]; !ok {
			continue
		}
		if blocks == nil {
			blocks = maps.Clone(t.blocks)
		}
		delete(blocks, key)
	}
	if blocks == nil {
		return t
	}
	if len(blocks) == 0 {
		return nil
	}
	return &Tile{x: t.x, y: t.y, filename: t.filename, blocks: blocks}
}

// ClearRect clears the inclusive pixel rectangle [x0,x1]x[y0,y1] given in
// tile-local pixel coordinates (0..8191), mirroring Block.ClearRect's
// nil-when-emptied convention one level up.
func (t *Tile) ClearRect(x0, y0, x1, y1 int) *Tile {
	var blocks map[BlockKey]*Block
	for by := max(0, y0>>geo.BlockWidthOffset); by <= min(geo.TileWidth-1, y1>>geo.BlockWidthOffset); by++ {
		for bx := max(0, x0>>geo.BlockWidthOffset); bx <= min(geo.TileWidth-1, x1>>geo.BlockWidthOffset); bx++ {
			key := BlockKey{X: bx, Y: by}
			b := t.blocks[key]
			if b == nil {
				continue
			}
			lx0 := max(0, x0-bx<<geo.BlockWidthOffset)
			ly0 := max(0, y0-by<<geo.BlockWidthOffset)
			lx1 := min(geo.BlockWidth-1, x1-bx<<geo.BlockWidthOffset)
			ly1 := min(geo.BlockWidth-1, y1-by<<geo.BlockWidthOffset)
			nb := b.ClearRect(lx0, ly0, lx1-lx0+1, ly1-ly0+1)
			if nb == b {
				continue
			}
			if blocks == nil {
				blocks = maps.Clone(t.blocks)
			}
			if nb == nil {
				delete(blocks, key)
			} else {
				blocks[key] = nb
			}
		}
	}
	if blocks == nil {
		return t
	}
	if len(blocks) == 0 {
		return nil
	}
	return &Tile{x: t.x, y: t.y, filename: t.filename, blocks: blocks}
}

// merge returns the union of both tiles' blocks, keeping the receiver's
// metadata where blocks overlap. Returns the receiver if other adds nothing.
func (t *Tile) merge(other *Tile) *Tile {
	var blocks map[BlockKey]*Block
	for key, ob := range other.blocks {
		b := t.blocks[key]
		nb := ob
		if b != nil {
			nb = b.union(ob)
			if nb == b {
				continue
			}
		}
		if blocks == nil {
			blocks = maps.Clone(t.blocks)
		}
		blocks[key] = nb
	}
	if blocks == nil {
		return t
	}
	return &Tile{x: t.x, y: t.y, filename: t.filename, blocks: blocks}
}

// tombstone returns an empty-but-present copy of the tile, the "became
// empty" marker observed by dirty tracking and differential export.
func (t *Tile) tombstone() *Tile {
	return &Tile{x: t.x, y: t.y, filename: t.filename, blocks: make(map[BlockKey]*Block)}
}

// addLine repeats the block-level cascading pattern one level up: it walks
// Bresenham steps in tile-local pixels (0..8191), dispatches contiguous
// runs to whichever block owns the cursor, and returns the updated tile,
// cursor and error state for the caller to continue into the next tile.
func (t *Tile) addLine(x, y, e, p, dx0, dy0 int, xAxis, quadrant13, value bool) (*Tile, int, int, int) {
	blocks := t.blocks
	cloned := false
	ensure := func() {
		if !cloned {
			blocks = maps.Clone(t.blocks)
			if blocks == nil {
				blocks = make(map[BlockKey]*Block)
			}
			cloned = true
		}
	}

	for x >= 0 && x < geo.TileExtent && y >= 0 && y < geo.TileExtent {
		if xAxis && x > e || !xAxis && y > e {
			break
		}
		bx, by := x>>geo.BlockWidthOffset, y>>geo.BlockWidthOffset
		key := BlockKey{X: bx, Y: by}
		localX, localY := x&(geo.BlockWidth-1), y&(geo.BlockWidth-1)
		localE := e - bx<<geo.BlockWidthOffset
		if !xAxis {
			localE = e - by<<geo.BlockWidthOffset
		}

		b := blocks[key]
		var nx, ny int
		if b == nil && !value {
			// Nothing to erase here; walk the geometry through the
			// missing block to keep the stepper state exact.
			nx, ny, p = stepLine(geo.BlockWidth, localX, localY, localE, p, dx0, dy0, xAxis, quadrant13, nil)
		} else {
			created := b == nil
			if created {
				b = NewBlock(bx, by, nil)
			}
			var nb *Block
			nb, nx, ny, p = b.addLine(localX, localY, localE, p, dx0, dy0, xAxis, quadrant13, value)
			if created {
				if nb != nil && nb.popcount() > 0 {
					ensure()
					blocks[key] = nb
				}
			} else if nb != b {
				ensure()
				if nb == nil {
					delete(blocks, key)
				} else {
					blocks[key] = nb
				}
			}
		}
		x = bx<<geo.BlockWidthOffset + nx
		y = by<<geo.BlockWidthOffset + ny
	}

	if !cloned {
		return t, x, y, p
	}
	return &Tile{x: t.x, y: t.y, filename: t.filename, blocks: blocks}, x, y, p
}
