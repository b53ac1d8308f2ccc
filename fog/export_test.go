package fog_test

import (
	"context"
	"slices"
	"testing"

	"github.com/eak1mov/go-fogmap/fog"
)

// recordingWriter collects tile names in write order.
type recordingWriter struct {
	names []string
}

func (w *recordingWriter) WriteTile(name string, data []byte) error {
	w.names = append(w.names, name)
	return nil
}

func TestExportArchiveWritesEveryTile(t *testing.T) {
	m := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true)

	var w recordingWriter
	if err := m.ExportArchive(context.Background(), &w, nil); err != nil {
		t.Fatalf("ExportArchive failed: %v", err)
	}
	if got, want := len(w.names), m.TileCount(); got != want {
		t.Errorf("exported %d tiles, want %d", got, want)
	}

	want := make([]string, 0, m.TileCount())
	for _, tile := range m.Tiles() {
		want = append(want, tile.Filename())
	}
	got := slices.Clone(w.names)
	slices.Sort(got)
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("exported names = %v, want %v", got, want)
	}
}

func TestExportArchiveOrderDeterministic(t *testing.T) {
	m := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true)

	var first, second recordingWriter
	if err := m.ExportArchive(context.Background(), &first, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ExportArchive(context.Background(), &second, nil); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(first.names, second.names) {
		t.Errorf("export order unstable: %v vs %v", first.names, second.names)
	}
}

func TestExportArchiveCancellation(t *testing.T) {
	m := fog.Empty.AddLine(121.5, 25.0, 121.6, 25.1, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var w recordingWriter
	if err := m.ExportArchive(ctx, &w, nil); err == nil {
		t.Error("ExportArchive with cancelled context = nil error")
	}
	if len(w.names) != 0 {
		t.Errorf("wrote %d tiles after cancellation, want 0", len(w.names))
	}
}

func TestExportArchiveProgress(t *testing.T) {
	m := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true)

	var w recordingWriter
	var calls [][2]int
	err := m.ExportArchive(context.Background(), &w, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) == 0 {
		t.Fatal("progress callback never called")
	}
	last := calls[len(calls)-1]
	if last[0] != m.TileCount() || last[1] != m.TileCount() {
		t.Errorf("final progress = %v, want [%d %d]", last, m.TileCount(), m.TileCount())
	}
}

func TestExportDirtyArchiveOnlyDirtyTiles(t *testing.T) {
	m := fog.Empty.AddLine(121.0, 25.0, 122.0, 26.0, true).ClearDirtyTiles()
	touched := m.AddLine(121.5, 25.0, 121.6, 25.1, true)

	var full, dirty recordingWriter
	if err := touched.ExportArchive(context.Background(), &full, nil); err != nil {
		t.Fatal(err)
	}
	if err := touched.ExportDirtyArchive(context.Background(), &dirty, nil); err != nil {
		t.Fatal(err)
	}
	if got, want := len(dirty.names), touched.DirtyTileCount(); got != want {
		t.Errorf("dirty export wrote %d tiles, want %d", got, want)
	}
	if len(dirty.names) >= len(full.names) {
		t.Errorf("dirty export (%d) not smaller than full export (%d)", len(dirty.names), len(full.names))
	}
}
