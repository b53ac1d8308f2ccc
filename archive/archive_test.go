package archive_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-fogmap/archive"
	"github.com/eak1mov/go-fogmap/fog"
	"github.com/eak1mov/go-fogmap/geo"
	"github.com/eak1mov/go-fogmap/internal"
)

// sampleBbox covers the full extent of internal.SampleMap.
func sampleBbox() geo.Bbox {
	return geo.Bbox{West: 121.49, South: 24.99, East: 121.59, North: 25.05}
}

func requireSameMask(t *testing.T, want, got *fog.FogMap) {
	t.Helper()
	require.Equal(t, want.TileCount(), got.TileCount())
	require.Equal(t, want.BlockCount(), got.BlockCount())
	err := want.VisitTiles(func(key fog.TileKey, tile *fog.Tile) error {
		loaded := got.Tile(key)
		require.NotNil(t, loaded, "tile %+v missing after round trip", key)
		wantData, err := tile.Dump()
		require.NoError(t, err)
		gotData, err := loaded.Dump()
		require.NoError(t, err)
		require.Equal(t, wantData, gotData, "tile %+v differs after round trip", key)
		return nil
	})
	require.NoError(t, err)
}

func TestZipRoundTrip(t *testing.T) {
	m := internal.SampleMap()
	archivePath := internal.WriteArchive(t, m)

	files, err := archive.ReadArchive(archivePath)
	require.NoError(t, err)
	require.Len(t, files, m.TileCount())

	requireSameMask(t, m, fog.CreateFromFiles(files))
}

func TestDirRoundTrip(t *testing.T) {
	m := internal.SampleMap()
	dirPath := internal.WriteTileDir(t, m)

	files, err := archive.ReadArchive(dirPath)
	require.NoError(t, err)

	requireSameMask(t, m, fog.CreateFromFiles(files))
}

func TestWriterPlacesTilesUnderSyncFolder(t *testing.T) {
	archivePath := internal.WriteArchive(t, internal.SampleMap())

	r, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer r.Close()

	require.NotEmpty(t, r.File)
	for _, entry := range r.File {
		require.True(t, strings.HasPrefix(entry.Name, archive.SyncFolder+"/"),
			"entry %q outside %v/", entry.Name, archive.SyncFolder)
		// Tile data is already deflated; entries must be stored as-is.
		require.Equal(t, zip.Store, entry.Method, "entry %q recompressed", entry.Name)
	}
}

func TestReadArchiveStripsDirectoryPrefixes(t *testing.T) {
	files, err := archive.ReadArchive(internal.WriteArchive(t, internal.SampleMap()))
	require.NoError(t, err)
	for _, file := range files {
		require.NotContains(t, file.Name, "/", "name %q kept its directory prefix", file.Name)
	}
}

func TestReadArchiveEmptyDir(t *testing.T) {
	_, err := archive.ReadArchive(t.TempDir())
	require.ErrorIs(t, err, archive.ErrEmptyArchive)
}

func TestReadArchiveSkipsDotfiles(t *testing.T) {
	m := internal.SampleMap()
	dirPath := internal.WriteTileDir(t, m)
	require.NoError(t, os.WriteFile(filepath.Join(dirPath, ".DS_Store"), []byte("junk"), 0644))

	files, err := archive.ReadArchive(dirPath)
	require.NoError(t, err)
	require.Len(t, files, m.TileCount())
}

func TestReadArchiveMissingPath(t *testing.T) {
	_, err := archive.ReadArchive(filepath.Join(t.TempDir(), "nope.zip"))
	require.Error(t, err)
}

func TestDirtyExportCarriesDeletions(t *testing.T) {
	m := internal.SampleMap().ClearDirtyTiles()
	// Erase everything: the emptied tile stays dirty as a tombstone.
	erased := m.NewDraft()
	erased.Erase(sampleBbox())
	dirty := erased.Publish()
	require.Zero(t, dirty.BlockCount())
	require.NotZero(t, dirty.DirtyTileCount())

	archivePath := filepath.Join(t.TempDir(), "diff.zip")
	file, err := os.Create(archivePath)
	require.NoError(t, err)
	defer file.Close()

	w := archive.NewWriter(file)
	require.NoError(t, dirty.ExportDirtyArchive(context.Background(), w, nil))
	require.NoError(t, w.Finalize())

	// The differential archive holds one all-zero tile file per tombstone,
	// which loads back as an empty map.
	files, err := archive.ReadArchive(archivePath)
	require.NoError(t, err)
	require.Len(t, files, dirty.DirtyTileCount())
	require.Zero(t, fog.CreateFromFiles(files).TileCount())
}
