package fog

import (
	"errors"
	"iter"
	"maps"
	"slices"
)

var errVisitCancelled = errors.New("visit cancelled")

// VisitTiles visits all tiles (tombstones included) in row-major key order.
func (m *FogMap) VisitTiles(visitor func(TileKey, *Tile) error) error {
	keys := slices.SortedFunc(maps.Keys(m.tiles), compareTileKeys)
	for _, key := range keys {
		if err := visitor(key, m.tiles[key]); err != nil {
			return err
		}
	}
	return nil
}

// Tiles returns an iterator over all tiles in row-major key order.
func (m *FogMap) Tiles() iter.Seq2[TileKey, *Tile] {
	return func(yield func(TileKey, *Tile) bool) {
		err := m.VisitTiles(func(key TileKey, t *Tile) error {
			if !yield(key, t) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

func compareTileKeys(a, b TileKey) int {
	if a.Y != b.Y {
		return a.Y - b.Y
	}
	return a.X - b.X
}
