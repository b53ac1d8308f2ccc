package fog

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/hilbert"

	"github.com/eak1mov/go-fogmap/geo"
)

// TileWriter receives serialized tile files during archive export. The
// archive package provides the ZIP-backed implementation.
type TileWriter interface {
	WriteTile(name string, data []byte) error
}

// ProgressFunc reports export progress. done counts serialized tiles.
type ProgressFunc func(done, total int)

// Export yields to the context (cancellation check + progress callback)
// every this many tiles so a long export stays responsive.
const exportYieldInterval = 50

// ExportArchive serializes every non-empty tile into w. Tile files are
// written in Hilbert-curve order over the 512x512 grid so spatially close
// tiles stay adjacent in the archive.
func (m *FogMap) ExportArchive(ctx context.Context, w TileWriter, progress ProgressFunc) error {
	var keys []TileKey
	for key, t := range m.tiles {
		if len(t.blocks) > 0 {
			keys = append(keys, key)
		}
	}
	return m.exportTiles(ctx, w, progress, keys)
}

// ExportDirtyArchive serializes only tiles mutated since the last export
// checkpoint, including now-empty ones: an all-zero tile file is the
// deletion signal for differential sync. Call ClearDirtyTiles after the
// export commits.
func (m *FogMap) ExportDirtyArchive(ctx context.Context, w TileWriter, progress ProgressFunc) error {
	var keys []TileKey
	for key := range m.dirty {
		if _, ok := m.tiles[key]; ok {
			keys = append(keys, key)
		}
	}
	return m.exportTiles(ctx, w, progress, keys)
}

func (m *FogMap) exportTiles(ctx context.Context, w TileWriter, progress ProgressFunc, keys []TileKey) error {
	h, err := hilbert.NewHilbert(geo.MapWidth)
	if err != nil {
		return err
	}
	order := make(map[TileKey]int, len(keys))
	for _, key := range keys {
		d, err := h.MapInverse(key.X, key.Y)
		if err != nil {
			return err
		}
		order[key] = d
	}
	slices.SortFunc(keys, func(a, b TileKey) int {
		return cmp.Compare(order[a], order[b])
	})

	total := len(keys)
	for i, key := range keys {
		if i%exportYieldInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if progress != nil {
				progress(i, total)
			}
		}
		t := m.tiles[key]
		data, err := t.Dump()
		if err != nil {
			return fmt.Errorf("failed to serialize tile %v: %w", t.filename, err)
		}
		if err := w.WriteTile(t.filename, data); err != nil {
			return err
		}
	}
	if progress != nil {
		progress(total, total)
	}
	return nil
}
