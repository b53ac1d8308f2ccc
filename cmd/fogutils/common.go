package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/eak1mov/go-fogmap/archive"
	"github.com/eak1mov/go-fogmap/fog"
	"github.com/eak1mov/go-fogmap/geo"
)

// pathList is a repeatable -i flag.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(value string) error {
	*p = append(*p, value)
	return nil
}

func loadMaps(paths []string) (*fog.FogMap, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	result := fog.Empty
	for _, archivePath := range paths {
		files, err := archive.ReadArchive(archivePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %v: %w", archivePath, err)
		}
		m := fog.CreateFromFiles(files, fog.WithLogger(logger))
		result = result.Merge(m)
	}
	return result, nil
}

func saveArchive(ctx context.Context, outputPath string, m *fog.FogMap, dirtyOnly bool) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	progress := func(done, total int) {
		bar.ChangeMax(total)
		bar.Set(done)
	}

	w := archive.NewWriter(file)
	if dirtyOnly {
		err = m.ExportDirtyArchive(ctx, w, progress)
	} else {
		err = m.ExportArchive(ctx, w, progress)
	}
	bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	return w.Finalize()
}

func parseBbox(value string) (geo.Bbox, error) {
	var b geo.Bbox
	_, err := fmt.Sscanf(value, "%f,%f,%f,%f", &b.West, &b.South, &b.East, &b.North)
	if err != nil {
		return geo.Bbox{}, fmt.Errorf("invalid bbox %q (want west,south,east,north): %w", value, err)
	}
	return b, nil
}
