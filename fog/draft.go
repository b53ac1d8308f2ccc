package fog

import (
	"github.com/eak1mov/go-fogmap/geo"
)

// Draft is the mutable escape hatch for one continuous pointer-drag erase
// gesture: blocks are cloned once per gesture and their bitmaps mutated in
// place across many input events, then published into the immutable FogMap
// via UpdateBlocks once per rendered frame instead of once per event. The
// base map is never touched, and Publish hands out frozen copies, so a
// draft can keep mutating after a publish without leaking into shared
// structure.
type Draft struct {
	base  *FogMap
	cells map[TileKey]map[BlockKey]draftCell
}

// draftCell is an explicit tri-state: absent from the map means untouched
// (fall through to the base), deleted means the block was erased to zero,
// otherwise block holds the draft's private mutable clone.
type draftCell struct {
	deleted bool
	block   *Block
}

// NewDraft starts an erase session over the receiver.
func (m *FogMap) NewDraft() *Draft {
	return &Draft{base: m, cells: make(map[TileKey]map[BlockKey]draftCell)}
}

// Erase clears every pixel inside the rectangle, mutating draft-owned
// block clones in place. Blocks erased to zero become deletions.
func (d *Draft) Erase(bbox geo.Bbox) {
	x0, y0 := geo.LngLatToGlobalPixel(bbox.West, bbox.North)
	x1, y1 := geo.LngLatToGlobalPixel(bbox.East, bbox.South)
	if x1 < x0 || y1 < y0 {
		return
	}

	for _, ref := range d.base.GetBlocks(bbox) {
		cells := d.cells[ref.Tile]
		cell, touched := cells[ref.Block]
		if touched && cell.deleted {
			continue
		}
		if !touched {
			clone := *d.base.tiles[ref.Tile].blocks[ref.Block]
			cell = draftCell{block: &clone}
		}

		gx := ref.Tile.X<<geo.TileExtentOffset + ref.Block.X<<geo.BlockWidthOffset
		gy := ref.Tile.Y<<geo.TileExtentOffset + ref.Block.Y<<geo.BlockWidthOffset
		lx0 := max(0, x0-gx)
		ly0 := max(0, y0-gy)
		lx1 := min(geo.BlockWidth-1, x1-gx)
		ly1 := min(geo.BlockWidth-1, y1-gy)
		if lx1 < lx0 || ly1 < ly0 {
			continue
		}

		for py := ly0; py <= ly1; py++ {
			for px := lx0; px <= lx1; px++ {
				cell.block.bitmap[py<<3|px>>3] &^= 0x80 >> (px & 7)
			}
		}
		if cell.block.popcount() == 0 {
			cell = draftCell{deleted: true}
		}

		if cells == nil {
			cells = make(map[BlockKey]draftCell)
			d.cells[ref.Tile] = cells
		}
		cells[ref.Block] = cell
	}
}

// Publish freezes the accumulated edits into an immutable map derived from
// the base. Intermediate publishes during a gesture feed the renderer;
// only the final one belongs in undo history.
func (d *Draft) Publish() *FogMap {
	if len(d.cells) == 0 {
		return d.base
	}
	patch := make(map[TileKey]map[BlockKey]*Block, len(d.cells))
	for tileKey, cells := range d.cells {
		blockPatch := make(map[BlockKey]*Block, len(cells))
		for blockKey, cell := range cells {
			if cell.deleted {
				blockPatch[blockKey] = nil
			} else {
				frozen := *cell.block
				blockPatch[blockKey] = &frozen
			}
		}
		patch[tileKey] = blockPatch
	}
	return d.base.UpdateBlocks(patch)
}
