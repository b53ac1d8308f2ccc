// Package fog implements the worldwide visitation mask: a sparse two-level
// grid (512x512 tiles of 128x128 blocks of 64x64 one-bit pixels) with pure
// map-level operations, dirty-tile tracking and archive import/export in
// the originating application's format.
//
// FogMap, Tile and Block are immutable values. Every mutation either
// returns the exact same reference (no effective change) or a new value
// sharing all untouched children with its predecessor, which makes
// history snapshots O(1) to capture.
package fog

import (
	"log/slog"
	"maps"
	"math"
	"path"

	"github.com/eak1mov/go-fogmap/geo"
)

// FogMap is a sparse grid of tiles plus the set of tiles mutated since the
// last export checkpoint. The zero value is not used directly; Empty is
// the canonical "nothing revealed" value.
type FogMap struct {
	tiles map[TileKey]*Tile
	dirty map[TileKey]struct{}
}

// Empty is the sole initial state; every other FogMap derives from an
// existing one through a pure operation.
var Empty = &FogMap{}

// TileFile is one named tile blob handed to CreateFromFiles, typically
// produced by the archive package.
type TileFile struct {
	Name string
	Data []byte
}

type config struct {
	logger *slog.Logger
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// CreateFromFiles builds a map from tile files. Files that fail to parse
// are logged and skipped, so a batch import tolerates partial failure;
// tiles that decode to zero blocks are discarded. Duplicate tile names
// merge as a union. The result has an empty dirty set: freshly imported
// data is not "dirty".
func CreateFromFiles(files []TileFile, opts ...Option) *FogMap {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}

	tiles := make(map[TileKey]*Tile)
	for _, file := range files {
		name := path.Base(file.Name)
		t, err := CreateTile(name, file.Data)
		if err != nil {
			c.logger.Warn("fogmap: skipping unparseable tile file", "name", name, "error", err)
			continue
		}
		if t.BlockCount() == 0 {
			continue
		}
		for key, b := range t.blocks {
			if !b.Check() {
				c.logger.Warn("fogmap: visited count mismatch",
					"tile", name, "block", key, "stored", b.Count(), "actual", b.popcount())
			}
		}
		key := t.Key()
		if prev, ok := tiles[key]; ok {
			tiles[key] = prev.merge(t)
		} else {
			tiles[key] = t
		}
	}
	if len(tiles) == 0 {
		return Empty
	}
	return &FogMap{tiles: tiles}
}

func (m *FogMap) TileCount() int { return len(m.tiles) }

// BlockCount returns the total number of blocks across all tiles.
func (m *FogMap) BlockCount() int {
	count := 0
	for _, t := range m.tiles {
		count += len(t.blocks)
	}
	return count
}

// Tile returns the tile at key, or nil. Empty-but-present tiles (tombstones
// left behind by erasing) are returned as-is.
func (m *FogMap) Tile(key TileKey) *Tile { return m.tiles[key] }

func (m *FogMap) DirtyTileCount() int { return len(m.dirty) }

// ClearDirtyTiles returns a map with an empty dirty set, for use after a
// successful export commit. Returns the receiver if nothing is dirty.
func (m *FogMap) ClearDirtyTiles() *FogMap {
	if len(m.dirty) == 0 {
		return m
	}
	return &FogMap{tiles: m.tiles}
}

// mutation is the copy-on-write bookkeeping shared by all map-level writes.
type mutation struct {
	base   *FogMap
	tiles  map[TileKey]*Tile
	dirty  map[TileKey]struct{}
	cloned bool
}

func (m *FogMap) beginMutation() *mutation {
	return &mutation{base: m, tiles: m.tiles, dirty: m.dirty}
}

func (mu *mutation) ensure() {
	if mu.cloned {
		return
	}
	mu.tiles = maps.Clone(mu.base.tiles)
	if mu.tiles == nil {
		mu.tiles = make(map[TileKey]*Tile)
	}
	mu.dirty = maps.Clone(mu.base.dirty)
	if mu.dirty == nil {
		mu.dirty = make(map[TileKey]struct{})
	}
	mu.cloned = true
}

func (mu *mutation) put(key TileKey, t *Tile) {
	mu.ensure()
	mu.tiles[key] = t
	mu.dirty[key] = struct{}{}
}

// commit returns the base map untouched when nothing changed, otherwise a
// new FogMap sharing every unchanged tile by reference.
func (mu *mutation) commit() *FogMap {
	if !mu.cloned {
		return mu.base
	}
	return &FogMap{tiles: mu.tiles, dirty: mu.dirty}
}

// AddLine draws (value true) or erases (value false) pixels along the
// projected segment between two geographic points. Rasterization is
// pixel-identical to a single unbroken bitmap covering the whole line even
// though it proceeds independently per tile and block: the Bresenham error
// state crosses every boundary intact. Tiles and blocks are created on
// demand when revealing; erasing keeps emptied tiles as zero-block
// tombstones so their removal stays observable.
func (m *FogMap) AddLine(startLng, startLat, endLng, endLat float64, value bool) *FogMap {
	x0, y0 := geo.LngLatToGlobalPixel(startLng, startLat)
	x1, y1 := geo.LngLatToGlobalPixel(endLng, endLat)

	dx, dy := x1-x0, y1-y0
	dx0, dy0 := absInt(dx), absInt(dy)
	xAxis := dy0 <= dx0
	quadrant13 := (dx < 0 && dy < 0) || (dx > 0 && dy > 0)

	// Normalize so the dominant axis increases.
	var x, y, e, p int
	if xAxis {
		p = 2*dy0 - dx0
		if dx >= 0 {
			x, y, e = x0, y0, x1
		} else {
			x, y, e = x1, y1, x0
		}
	} else {
		p = 2*dx0 - dy0
		if dy >= 0 {
			x, y, e = x0, y0, y1
		} else {
			x, y, e = x1, y1, y0
		}
	}

	mu := m.beginMutation()
	const worldExtent = geo.MapWidth * geo.TileExtent
	for x >= 0 && x < worldExtent && y >= 0 && y < worldExtent {
		if xAxis && x > e || !xAxis && y > e {
			break
		}
		tx, ty := x>>geo.TileExtentOffset, y>>geo.TileExtentOffset
		key := TileKey{X: tx, Y: ty}
		localX, localY := x&(geo.TileExtent-1), y&(geo.TileExtent-1)
		localE := e - tx<<geo.TileExtentOffset
		if !xAxis {
			localE = e - ty<<geo.TileExtentOffset
		}

		t := mu.tiles[key]
		var nx, ny int
		if t == nil && !value {
			// Walk through the absent tile without materializing it.
			nx, ny, p = stepLine(geo.TileExtent, localX, localY, localE, p, dx0, dy0, xAxis, quadrant13, nil)
		} else {
			created := t == nil
			if created {
				t = newTile(tx, ty)
			}
			var nt *Tile
			nt, nx, ny, p = t.addLine(localX, localY, localE, p, dx0, dy0, xAxis, quadrant13, value)
			if created {
				if nt != t && nt.BlockCount() > 0 {
					mu.put(key, nt)
				}
			} else if nt != t {
				mu.put(key, nt)
			}
		}
		x = tx<<geo.TileExtentOffset + nx
		y = ty<<geo.TileExtentOffset + ny
	}
	return mu.commit()
}

// UpdateBlocks is the single generic merge primitive behind every
// higher-level write: a patch of tile key to block key to block, where a
// nil block deletes. Creating blocks in a not-yet-present tile materializes
// the tile first; deleting the last block leaves a tombstone. Touched tiles
// are marked dirty. Returns the receiver unchanged when the patch produces
// no effective difference.
func (m *FogMap) UpdateBlocks(patch map[TileKey]map[BlockKey]*Block) *FogMap {
	mu := m.beginMutation()
	for tileKey, blockPatch := range patch {
		if tileKey.X < 0 || tileKey.X >= geo.MapWidth || tileKey.Y < 0 || tileKey.Y >= geo.MapWidth {
			continue
		}
		cur := mu.tiles[tileKey]

		var blocks map[BlockKey]*Block
		ensureTile := func() {
			if blocks != nil {
				return
			}
			if cur != nil {
				blocks = maps.Clone(cur.blocks)
			}
			if blocks == nil {
				blocks = make(map[BlockKey]*Block)
			}
		}

		for blockKey, nb := range blockPatch {
			var old *Block
			if cur != nil {
				old = cur.blocks[blockKey]
			}
			if nb == nil {
				if old == nil {
					continue
				}
				ensureTile()
				delete(blocks, blockKey)
			} else {
				if old != nil && old.sameBits(nb) {
					continue
				}
				ensureTile()
				blocks[blockKey] = nb
			}
		}
		if blocks == nil {
			continue
		}

		nt := &Tile{x: tileKey.X, y: tileKey.Y, blocks: blocks}
		if cur != nil {
			nt.filename = cur.filename
		} else {
			nt.filename = newTile(tileKey.X, tileKey.Y).filename
		}
		mu.put(tileKey, nt)
	}
	return mu.commit()
}

// BlockRef addresses one block of one tile, as returned by GetBlocks.
type BlockRef struct {
	Tile  TileKey
	Block BlockKey
}

// GetBlocks returns every existing block intersecting a lng/lat rectangle,
// in deterministic row-major order.
func (m *FogMap) GetBlocks(bbox geo.Bbox) []BlockRef {
	if len(m.tiles) == 0 {
		return nil
	}
	xMin, yMin := geo.LngLatToTileUnit(bbox.West, bbox.North)
	xMax, yMax := geo.LngLatToTileUnit(bbox.East, bbox.South)

	var refs []BlockRef
	for ty := max(0, floorInt(yMin)); ty <= min(geo.MapWidth-1, floorInt(yMax)); ty++ {
		for tx := max(0, floorInt(xMin)); tx <= min(geo.MapWidth-1, floorInt(xMax)); tx++ {
			key := TileKey{X: tx, Y: ty}
			t := m.tiles[key]
			if t == nil {
				continue
			}
			lx0 := (math.Max(xMin, float64(tx)) - float64(tx)) * geo.TileWidth
			ly0 := (math.Max(yMin, float64(ty)) - float64(ty)) * geo.TileWidth
			lx1 := (math.Min(xMax, float64(tx+1)) - float64(tx)) * geo.TileWidth
			ly1 := (math.Min(yMax, float64(ty+1)) - float64(ty)) * geo.TileWidth
			for _, blockKey := range t.intersectingBlocks(lx0, ly0, lx1, ly1) {
				refs = append(refs, BlockRef{Tile: key, Block: blockKey})
			}
		}
	}
	return refs
}

// RemoveBlocks removes the selected blocks, keeping emptied tiles as
// tombstones. Returns the receiver unchanged when nothing overlaps.
func (m *FogMap) RemoveBlocks(selection map[TileKey][]BlockKey) *FogMap {
	mu := m.beginMutation()
	for tileKey, blockKeys := range selection {
		t := mu.tiles[tileKey]
		if t == nil {
			continue
		}
		nt := t.RemoveBlocks(blockKeys)
		if nt == t {
			continue
		}
		if nt == nil {
			nt = t.tombstone()
		}
		mu.put(tileKey, nt)
	}
	return mu.commit()
}

// ClearBbox erases every pixel inside a lng/lat rectangle. Returns the
// receiver unchanged when nothing overlaps.
func (m *FogMap) ClearBbox(bbox geo.Bbox) *FogMap {
	if len(m.tiles) == 0 {
		return m
	}
	x0, y0 := geo.LngLatToGlobalPixel(bbox.West, bbox.North)
	x1, y1 := geo.LngLatToGlobalPixel(bbox.East, bbox.South)
	if x1 < x0 || y1 < y0 {
		return m
	}

	mu := m.beginMutation()
	for ty := max(0, y0>>geo.TileExtentOffset); ty <= min(geo.MapWidth-1, y1>>geo.TileExtentOffset); ty++ {
		for tx := max(0, x0>>geo.TileExtentOffset); tx <= min(geo.MapWidth-1, x1>>geo.TileExtentOffset); tx++ {
			key := TileKey{X: tx, Y: ty}
			t := mu.tiles[key]
			if t == nil {
				continue
			}
			lx0 := max(0, x0-tx<<geo.TileExtentOffset)
			ly0 := max(0, y0-ty<<geo.TileExtentOffset)
			lx1 := min(geo.TileExtent-1, x1-tx<<geo.TileExtentOffset)
			ly1 := min(geo.TileExtent-1, y1-ty<<geo.TileExtentOffset)
			nt := t.ClearRect(lx0, ly0, lx1, ly1)
			if nt == t {
				continue
			}
			if nt == nil {
				nt = t.tombstone()
			}
			mu.put(key, nt)
		}
	}
	return mu.commit()
}

// Merge returns the union of both maps: no pixel revealed by either side is
// un-revealed by merging. Tiles that change are marked dirty; tiles adopted
// or kept by reference stay shared.
func (m *FogMap) Merge(other *FogMap) *FogMap {
	if other == nil || len(other.tiles) == 0 {
		return m
	}
	mu := m.beginMutation()
	for key, ot := range other.tiles {
		if len(ot.blocks) == 0 {
			continue
		}
		cur := mu.tiles[key]
		if cur == nil {
			mu.put(key, ot)
			continue
		}
		nt := cur.merge(ot)
		if nt != cur {
			mu.put(key, nt)
		}
	}
	return mu.commit()
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func floorInt(v float64) int {
	return int(math.Floor(v))
}
