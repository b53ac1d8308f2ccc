// Package internal provides shared test fixtures: deterministic sample
// maps and temporary archives built from them.
package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/eak1mov/go-fogmap/archive"
	"github.com/eak1mov/go-fogmap/fog"
)

// SampleMap returns a small deterministic map: a short GPS-track-like
// polyline around Taipei covering a handful of blocks in one tile.
func SampleMap() *fog.FogMap {
	m := fog.Empty
	m = m.AddLine(121.50, 25.00, 121.53, 25.02, true)
	m = m.AddLine(121.53, 25.02, 121.56, 25.01, true)
	m = m.AddLine(121.56, 25.01, 121.58, 25.04, true)
	return m
}

// WriteArchive exports m as a full ZIP archive into a temp file and
// returns its path.
func WriteArchive(t *testing.T, m *fog.FogMap) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "export.zip")
	file, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	w := archive.NewWriter(file)
	if err := m.ExportArchive(context.Background(), w, nil); err != nil {
		t.Fatal(err)
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}
	return archivePath
}

// WriteTileDir exports m as a plain directory of tile files and returns
// the directory path.
func WriteTileDir(t *testing.T, m *fog.FogMap) string {
	t.Helper()

	dirPath := t.TempDir()
	err := m.VisitTiles(func(_ fog.TileKey, tile *fog.Tile) error {
		if tile.BlockCount() == 0 {
			return nil
		}
		data, err := tile.Dump()
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dirPath, tile.Filename()), data, 0644)
	})
	if err != nil {
		t.Fatal(err)
	}
	return dirPath
}
