package fog_test

import (
	"testing"

	"github.com/eak1mov/go-fogmap/fog"
	"github.com/eak1mov/go-fogmap/geo"
)

func TestAddLineDeterministicCounts(t *testing.T) {
	for _, tc := range []struct {
		Name                   string
		Lng1, Lat1, Lng2, Lat2 float64
		Tiles, Blocks          int
	}{
		{Name: "SingleTile", Lng1: 121.5, Lat1: 25.0, Lng2: 121.6, Lat2: 25.1, Tiles: 1, Blocks: 39},
		{Name: "FourTiles", Lng1: 121.0, Lat1: 25.0, Lng2: 122.0, Lat2: 26.0, Tiles: 4, Blocks: 382},
	} {
		t.Run(tc.Name, func(t *testing.T) {
			m := fog.Empty.AddLine(tc.Lng1, tc.Lat1, tc.Lng2, tc.Lat2, true)
			if got := m.TileCount(); got != tc.Tiles {
				t.Errorf("TileCount = %d, want %d", got, tc.Tiles)
			}
			if got := m.BlockCount(); got != tc.Blocks {
				t.Errorf("BlockCount = %d, want %d", got, tc.Blocks)
			}
		})
	}
}

func TestAddLineDirectionIndependent(t *testing.T) {
	forward := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true)
	backward := fog.Empty.AddLine(122.0, 26.0, 121.0, 25.0, true)

	if forward.TileCount() != backward.TileCount() || forward.BlockCount() != backward.BlockCount() {
		t.Errorf("reversed line differs: (%d tiles, %d blocks) vs (%d tiles, %d blocks)",
			forward.TileCount(), forward.BlockCount(), backward.TileCount(), backward.BlockCount())
	}
}

func TestMutationNoOpReturnsSameReference(t *testing.T) {
	bbox := geo.Bbox{West: 121.4, South: 24.9, East: 121.7, North: 25.2}

	if got := fog.Empty.ClearBbox(bbox); got != fog.Empty {
		t.Error("ClearBbox on Empty returned a new map")
	}
	if got := fog.Empty.RemoveBlocks(map[fog.TileKey][]fog.BlockKey{{X: 1, Y: 1}: {{X: 2, Y: 2}}}); got != fog.Empty {
		t.Error("RemoveBlocks on Empty returned a new map")
	}
	if got := fog.Empty.UpdateBlocks(nil); got != fog.Empty {
		t.Error("UpdateBlocks(nil) returned a new map")
	}

	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	if got := m.AddLine(121.5, 25.0, 121.6, 25.1, true); got != m {
		t.Error("redrawing an identical line returned a new map")
	}
	if got := m.AddLine(121.5, 25.0, 121.6, 25.1, false); got == m {
		t.Error("erasing a drawn line returned the same map")
	}
	if got := m.Merge(fog.Empty); got != m {
		t.Error("Merge(Empty) returned a new map")
	}
}

func TestDirtyLifecycle(t *testing.T) {
	if got := fog.Empty.DirtyTileCount(); got != 0 {
		t.Fatalf("Empty.DirtyTileCount = %d, want 0", got)
	}

	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	if got := m.DirtyTileCount(); got == 0 {
		t.Error("DirtyTileCount = 0 after drawing, want > 0")
	}

	cleaned := m.ClearDirtyTiles()
	if got := cleaned.DirtyTileCount(); got != 0 {
		t.Errorf("DirtyTileCount = %d after ClearDirtyTiles, want 0", got)
	}
	if cleaned.BlockCount() != m.BlockCount() {
		t.Error("ClearDirtyTiles changed map contents")
	}
	if got := cleaned.ClearDirtyTiles(); got != cleaned {
		t.Error("ClearDirtyTiles on a clean map returned a new map")
	}

	erased := cleaned.AddLine(121.5, 25.0, 121.6, 25.1, false)
	if got := erased.DirtyTileCount(); got == 0 {
		t.Error("DirtyTileCount = 0 after erasing, want > 0")
	}
}

func TestEraseKeepsTombstoneTile(t *testing.T) {
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true).ClearDirtyTiles()
	erased := m.AddLine(121.5, 25.0, 121.6, 25.1, false)

	if got := erased.BlockCount(); got != 0 {
		t.Fatalf("BlockCount after erasing the only line = %d, want 0", got)
	}
	// The emptied tile stays present so dirty tracking and differential
	// export can observe the removal.
	if got := erased.TileCount(); got != 1 {
		t.Errorf("TileCount after erase = %d, want 1 tombstone", got)
	}
	if got := erased.DirtyTileCount(); got != 1 {
		t.Errorf("DirtyTileCount after erase = %d, want 1", got)
	}
}

func TestEraseAcrossMissingTiles(t *testing.T) {
	// Line spans four tiles but only part of the area is revealed first;
	// erasing the full span must not materialize the untouched tiles.
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	tiles := m.TileCount()

	erased := m.AddLine(121.0, 25.0, 122.0, 26.0, false)
	if got := erased.TileCount(); got != tiles {
		t.Errorf("TileCount after erasing across empty space = %d, want %d", got, tiles)
	}
}

func TestGetBlocksAndExhaustiveRemoval(t *testing.T) {
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	bbox := geo.Bbox{West: 121.4, South: 24.9, East: 121.7, North: 25.2}

	refs := m.GetBlocks(bbox)
	if got, want := len(refs), m.BlockCount(); got != want {
		t.Fatalf("GetBlocks found %d blocks, want all %d", got, want)
	}

	selection := make(map[fog.TileKey][]fog.BlockKey)
	for _, ref := range refs {
		selection[ref.Tile] = append(selection[ref.Tile], ref.Block)
	}
	removed := m.RemoveBlocks(selection)
	if got := removed.BlockCount(); got != 0 {
		t.Errorf("BlockCount after exhaustive removal = %d, want 0", got)
	}
	if got := len(removed.GetBlocks(bbox)); got != 0 {
		t.Errorf("GetBlocks after exhaustive removal = %d refs, want 0", got)
	}
}

func TestClearBboxPartial(t *testing.T) {
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)

	// Clear only the lower-left part of the line's extent.
	cleared := m.ClearBbox(geo.Bbox{West: 121.4, South: 24.9, East: 121.55, North: 25.05})
	if cleared == m {
		t.Fatal("ClearBbox over drawn area returned the same map")
	}
	if got := cleared.BlockCount(); got == 0 || got >= m.BlockCount() {
		t.Errorf("BlockCount after partial clear = %d, want in (0, %d)", got, m.BlockCount())
	}

	// Clearing the full extent afterwards empties the map.
	all := cleared.ClearBbox(geo.Bbox{West: 121.4, South: 24.9, East: 121.7, North: 25.2})
	if got := all.BlockCount(); got != 0 {
		t.Errorf("BlockCount after full clear = %d, want 0", got)
	}
}

func TestMergeUnionSemantics(t *testing.T) {
	a := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	b := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true)

	merged := a.Merge(b)

	// No pixel is un-revealed by merging: every block either side revealed
	// must survive with at least the same bits. Both lines overlap in the
	// shared tile, so the union has at most a.BlockCount+b.BlockCount.
	for _, src := range []*fog.FogMap{a, b} {
		for key, tile := range src.Tiles() {
			mergedTile := merged.Tile(key)
			if mergedTile == nil {
				t.Fatalf("merged map lost tile %+v", key)
			}
			for blockKey, block := range tile.Blocks() {
				mergedBlock := mergedTile.Block(blockKey)
				if mergedBlock == nil {
					t.Fatalf("merged map lost block %+v/%+v", key, blockKey)
				}
				for y := 0; y < geo.BlockWidth; y++ {
					for x := 0; x < geo.BlockWidth; x++ {
						if block.IsVisited(x, y) && !mergedBlock.IsVisited(x, y) {
							t.Fatalf("merge un-revealed pixel (%d, %d) in %+v/%+v", x, y, key, blockKey)
						}
					}
				}
			}
		}
	}

	// Merging a subset back in is a no-op by reference.
	if got := merged.Merge(a); got != merged {
		t.Error("merging an already-contained map returned a new map")
	}
}

func TestUpdateBlocksSemantics(t *testing.T) {
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)

	var tileKey fog.TileKey
	var blockKey fog.BlockKey
	var block *fog.Block
	for key, tile := range m.Tiles() {
		tileKey = key
		for bk, b := range tile.Blocks() {
			blockKey, block = bk, b
			break
		}
		break
	}

	// Re-submitting an identical block is a no-op by reference.
	same := m.UpdateBlocks(map[fog.TileKey]map[fog.BlockKey]*fog.Block{
		tileKey: {blockKey: block},
	})
	if same != m {
		t.Error("UpdateBlocks with identical block returned a new map")
	}

	// Deleting a block removes exactly that block.
	deleted := m.UpdateBlocks(map[fog.TileKey]map[fog.BlockKey]*fog.Block{
		tileKey: {blockKey: nil},
	})
	if got, want := deleted.BlockCount(), m.BlockCount()-1; got != want {
		t.Errorf("BlockCount after deleting one block = %d, want %d", got, want)
	}
	if deleted.Tile(tileKey).Block(blockKey) != nil {
		t.Error("deleted block still present")
	}

	// Creating a block in a not-yet-present tile materializes the tile.
	farKey := fog.TileKey{X: 100, Y: 100}
	created := fog.Empty.UpdateBlocks(map[fog.TileKey]map[fog.BlockKey]*fog.Block{
		farKey: {blockKey: block},
	})
	if got := created.TileCount(); got != 1 {
		t.Errorf("TileCount after patching empty map = %d, want 1", got)
	}
	if got := created.DirtyTileCount(); got != 1 {
		t.Errorf("DirtyTileCount after patching empty map = %d, want 1", got)
	}

	// Deleting from an absent tile is a no-op by reference.
	if got := fog.Empty.UpdateBlocks(map[fog.TileKey]map[fog.BlockKey]*fog.Block{
		farKey: {blockKey: nil},
	}); got != fog.Empty {
		t.Error("deleting from an absent tile returned a new map")
	}
}

func TestStructuralSharing(t *testing.T) {
	a := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)
	b := a.AddLine(122.5, 25.0, 122.6, 25.1, true) // a different tile

	var aKey fog.TileKey
	for key := range a.Tiles() {
		aKey = key
	}
	// The untouched tile is shared by reference between both maps.
	if a.Tile(aKey) != b.Tile(aKey) {
		t.Error("untouched tile not shared by reference after mutation")
	}
}
